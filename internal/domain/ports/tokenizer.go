// Package ports defines interfaces between the domain and its adapters.
package ports

// Tokenizer turns raw text into a normalized term sequence. Indexing and
// querying must share one implementation; any divergence silently degrades
// recall. Implementations are pure: deterministic, order-preserving, and
// an empty input yields an empty sequence, never an error.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenizerFunc adapts a plain function to the Tokenizer interface.
type TokenizerFunc func(text string) []string

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) []string {
	return f(text)
}
