package services

import (
	"strings"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/ports"
)

// BuildDocument derives the indexable document for one entity: each field's
// text is tokenized into its term sequence. The transform is pure and
// total; an entity with no facts or keywords simply gets an empty term
// sequence for that field.
//
// Related-entity ids index twice: as raw literal tokens, so id lookups
// stay exact-match, and as their tokenized forms, so free-text queries
// reach ids like "Gründung_des_Theaterordens" whose raw spelling no
// lowercased query term can equal.
func BuildDocument(entity entities.Entity, tokenizer ports.Tokenizer) entities.Document {
	statements := make([]string, len(entity.Facts))
	for i, fact := range entity.Facts {
		statements[i] = fact.Statement
	}

	terms := map[string][]string{
		entities.FieldDescription:     tokenizer.Tokenize(entity.Description),
		entities.FieldFacts:           tokenizer.Tokenize(strings.Join(statements, " ")),
		entities.FieldKeywords:        tokenizer.Tokenize(strings.Join(entity.Keywords, " ")),
		entities.FieldRelatedEntities: relatedTerms(entity.RelatedEntities, tokenizer),
		entities.FieldType:            tokenizer.Tokenize(string(entity.Type)),
	}

	return entities.Document{
		ID:    entity.ID,
		Type:  entity.Type,
		Terms: terms,
	}
}

func relatedTerms(ids []string, tokenizer ports.Tokenizer) []string {
	var terms []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		terms = append(terms, id)
		for _, term := range tokenizer.Tokenize(id) {
			if term != id {
				terms = append(terms, term)
			}
		}
	}
	return terms
}
