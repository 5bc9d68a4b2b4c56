package entities

// Indexable fields of a document. Each field carries its own term
// statistics and scoring weight.
const (
	FieldDescription     = "description"
	FieldFacts           = "facts"
	FieldKeywords        = "keywords"
	FieldRelatedEntities = "related_entities"
	FieldType            = "type"
)

// Fields lists all indexable field names in a fixed order.
func Fields() []string {
	return []string{
		FieldDescription,
		FieldFacts,
		FieldKeywords,
		FieldRelatedEntities,
		FieldType,
	}
}

// Document is the indexable unit derived from an Entity: per field, the
// normalized term sequence produced by the tokenizer. Related-entity ids
// are stored as literal tokens so id lookups stay exact-match.
type Document struct {
	ID    string
	Type  EntityType
	Terms map[string][]string
}

// FieldLength returns the number of terms in the given field.
func (d Document) FieldLength(field string) int {
	return len(d.Terms[field])
}
