package entities

// RankedResult is one search hit: the full entity payload plus its BM25
// score. Facts and their source citations are carried verbatim in their
// original order; the engine never truncates or rewrites them.
type RankedResult struct {
	ID              string     `json:"id"`
	Type            EntityType `json:"type"`
	Description     string     `json:"description"`
	Facts           []Fact     `json:"facts"`
	RelatedEntities []string   `json:"related_entities"`
	Score           float64    `json:"score"`
}
