// Package entities contains core domain data structures.
package entities

import "strings"

// EntityType categorizes a knowledge record. The set is open: the wiki
// corpus grows new categories over time, so unknown values are preserved
// as-is rather than rejected.
type EntityType string

// Types observed in the wiki corpus.
const (
	TypePlace     EntityType = "place"
	TypeCharacter EntityType = "character"
	TypeGroup     EntityType = "group"
	TypeEvent     EntityType = "event"
	TypeConcept   EntityType = "concept"
	TypeRule      EntityType = "rule"
	TypeUnknown   EntityType = "unknown"
)

// NormalizeType converts a raw type string to its canonical lowercase form.
// Empty input maps to TypeUnknown.
func NormalizeType(raw string) EntityType {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return TypeUnknown
	}
	return EntityType(t)
}

// Fact is a single atomic statement about an entity. Source is an opaque
// citation string carried verbatim from the corpus; the engine never
// parses it.
type Fact struct {
	Statement string `json:"statement"`
	Source    string `json:"source"`
}

// Entity is one knowledge record extracted from the wiki corpus. Entities
// are immutable inputs to an index build; fact order is presentation order
// and is preserved through to search results.
type Entity struct {
	ID              string     `json:"id"`
	Type            EntityType `json:"type"`
	Description     string     `json:"description"`
	Facts           []Fact     `json:"facts"`
	RelatedEntities []string   `json:"related_entities"`
	Keywords        []string   `json:"keywords"`
}
