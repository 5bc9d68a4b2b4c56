// Package services implements the indexing and retrieval engine.
package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ersonp/lore-index/internal/domain/ports"
)

// UnicodeTokenizer is the default tokenizer: NFC normalization, Unicode
// lowercasing, and splitting on non-alphanumeric boundaries. Diacritics
// stay part of the letter since proper names in the corpus carry them
// ("Gründung" must not collapse to "grundung").
type UnicodeTokenizer struct{}

// NewUnicodeTokenizer returns the default tokenizer.
func NewUnicodeTokenizer() *UnicodeTokenizer {
	return &UnicodeTokenizer{}
}

var _ ports.Tokenizer = (*UnicodeTokenizer)(nil)

// Tokenize splits text into lowercase terms. The corpus mixes composed and
// decomposed umlaut encodings, so terms are NFC-normalized first to make
// both forms index identically. Empty input yields an empty sequence.
func (t *UnicodeTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = norm.NFC.String(text)

	var (
		terms []string
		b     strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			terms = append(terms, b.String())
			b.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return terms
}
