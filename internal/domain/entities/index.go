package entities

// Posting records that a document contains a term in one of its fields,
// together with the in-field term frequency.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

// Snapshot is a fully built, immutable index: postings, per-document field
// lengths, corpus statistics, and the source entities needed to assemble
// result payloads. A snapshot is never mutated after Build returns; the
// engine swaps whole snapshots atomically on reload.
type Snapshot struct {
	// Documents maps entity id to its source record, used for result
	// assembly and type filtering.
	Documents map[string]Entity

	// Postings maps field -> term -> postings list sorted by ascending
	// document id with no duplicate ids. Document frequency for a
	// (field, term) pair is the length of its postings list.
	Postings map[string]map[string][]Posting

	// FieldLengths maps field -> document id -> term count.
	FieldLengths map[string]map[string]int

	// AvgFieldLength maps field -> total field length / document count.
	AvgFieldLength map[string]float64

	// DocCount is the number of indexed documents.
	DocCount int
}

// PostingsFor returns the postings list for a (field, term) pair, or nil
// when the term was never indexed in that field.
func (s *Snapshot) PostingsFor(field, term string) []Posting {
	terms, ok := s.Postings[field]
	if !ok {
		return nil
	}
	return terms[term]
}

// DocFrequency returns the number of documents containing term in field.
func (s *Snapshot) DocFrequency(field, term string) int {
	return len(s.PostingsFor(field, term))
}
