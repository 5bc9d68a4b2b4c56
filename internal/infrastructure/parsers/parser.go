// Package parsers provides parsers for importing entity corpora from
// various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

// RawFact is a fact as it appears in an external corpus before cleanup.
// A missing source is tolerated: partial data must not block the rest of
// the corpus.
type RawFact struct {
	Statement string `json:"statement"`
	Source    string `json:"source"`
}

// RawEntity is an entity record as produced by the external extraction
// pipeline. Unknown additional fields are ignored so upstream schema
// evolution does not break imports.
type RawEntity struct {
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	Facts           []RawFact `json:"facts"`
	RelatedEntities []string  `json:"related_entities"`
	Keywords        []string  `json:"keywords"`
}

// Parser defines the interface for parsing entity corpora.
type Parser interface {
	Parse(r io.Reader) ([]entities.Entity, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// toEntity converts a raw record to a domain entity. The id comes from
// the corpus key; the type string is normalized to its canonical form.
func toEntity(id string, raw RawEntity) entities.Entity {
	facts := make([]entities.Fact, len(raw.Facts))
	for i, f := range raw.Facts {
		facts[i] = entities.Fact{Statement: f.Statement, Source: f.Source}
	}

	return entities.Entity{
		ID:              id,
		Type:            entities.NormalizeType(raw.Type),
		Description:     raw.Description,
		Facts:           facts,
		RelatedEntities: raw.RelatedEntities,
		Keywords:        raw.Keywords,
	}
}
