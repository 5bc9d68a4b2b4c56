package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnicodeTokenizer(t *testing.T) {
	tokenizer := NewUnicodeTokenizer()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain sentence",
			input:    "Arivor ist die Hauptstadt von Almada.",
			expected: []string{"arivor", "ist", "die", "hauptstadt", "von", "almada"},
		},
		{
			name:     "diacritics are kept",
			input:    "Gründung des Theaterordens",
			expected: []string{"gründung", "des", "theaterordens"},
		},
		{
			name:     "underscores split entity ids",
			input:    "Gründung_des_Theaterordens",
			expected: []string{"gründung", "des", "theaterordens"},
		},
		{
			name:     "digits stay in terms",
			input:    "Kapitel 12b",
			expected: []string{"kapitel", "12b"},
		},
		{
			name:     "punctuation only",
			input:    "... --- !!!",
			expected: nil,
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizer.Tokenize(tt.input))
		})
	}
}

// Composed and decomposed umlaut encodings must produce the same term,
// otherwise the same name indexed from two corpus exports would stop
// matching.
func TestUnicodeTokenizer_NormalizesEncodings(t *testing.T) {
	tokenizer := NewUnicodeTokenizer()

	composed := tokenizer.Tokenize("Gründung")
	decomposed := tokenizer.Tokenize("Gründung")

	assert.Equal(t, composed, decomposed)
}

func TestUnicodeTokenizer_Deterministic(t *testing.T) {
	tokenizer := NewUnicodeTokenizer()
	input := "Horasischer Adel und Titel"

	first := tokenizer.Tokenize(input)
	second := tokenizer.Tokenize(input)

	assert.Equal(t, first, second)
}
