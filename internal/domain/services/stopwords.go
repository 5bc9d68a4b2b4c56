package services

import "github.com/ersonp/lore-index/internal/domain/ports"

// StopwordSet holds the terms a filtering tokenizer drops. Members are
// lowercase, matching the tokenizer's output.
type StopwordSet map[string]struct{}

// Contains reports whether term is a stopword.
func (s StopwordSet) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Filter returns terms with stopwords removed, preserving order.
func (s StopwordSet) Filter(terms []string) []string {
	if len(s) == 0 {
		return terms
	}
	filtered := terms[:0:0]
	for _, term := range terms {
		if !s.Contains(term) {
			filtered = append(filtered, term)
		}
	}
	return filtered
}

// StopwordsFor resolves a language code to its stopword set. The empty
// code means no filtering. The second return is false for codes the
// engine does not know.
func StopwordsFor(lang string) (StopwordSet, bool) {
	switch lang {
	case "":
		return nil, true
	case "de":
		return stopwordsDE, true
	case "en":
		return stopwordsEN, true
	default:
		return nil, false
	}
}

// FilteringTokenizer drops stopwords from the wrapped tokenizer's output.
// The corpus is German, so queries like "die Hauptstadt von Almada" carry
// function words that match nearly every document; filtering them keeps
// rankings driven by content terms.
type FilteringTokenizer struct {
	inner ports.Tokenizer
	set   StopwordSet
}

// NewFilteringTokenizer wraps a tokenizer with a stopword filter. An
// empty set returns the inner tokenizer unchanged.
func NewFilteringTokenizer(inner ports.Tokenizer, set StopwordSet) ports.Tokenizer {
	if len(set) == 0 {
		return inner
	}
	return &FilteringTokenizer{inner: inner, set: set}
}

// Tokenize runs the inner tokenizer and removes stopwords.
func (t *FilteringTokenizer) Tokenize(text string) []string {
	return t.set.Filter(t.inner.Tokenize(text))
}

func newStopwordSet(words []string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var stopwordsDE = newStopwordSet([]string{
	"aber", "alle", "allem", "allen", "aller", "alles", "als", "also",
	"am", "an", "ander", "andere", "anderem", "anderen", "anderer",
	"anderes", "anderm", "andern", "anders", "auch", "auf", "aus", "bei",
	"bin", "bis", "bist", "da", "damit", "dann", "das", "dasselbe",
	"dass", "daß", "dazu", "dein", "deine", "deinem", "deinen", "deiner",
	"deines", "dem", "demselben", "den", "denn", "denselben", "der",
	"derer", "derselbe", "derselben", "des", "desselben", "dessen",
	"dich", "die", "dies", "diese", "dieselbe", "dieselben", "diesem",
	"diesen", "dieser", "dieses", "dir", "doch", "dort", "du", "durch",
	"ein", "eine", "einem", "einen", "einer", "eines", "einig", "einige",
	"einigem", "einigen", "einiger", "einiges", "einmal", "er", "es",
	"etwas", "euch", "euer", "eure", "eurem", "euren", "eurer", "eures",
	"für", "gegen", "gewesen", "hab", "habe", "haben", "hat", "hatte",
	"hatten", "hier", "hin", "hinter", "ich", "ihm", "ihn", "ihnen",
	"ihr", "ihre", "ihrem", "ihren", "ihrer", "ihres", "im", "in",
	"indem", "ins", "ist", "jede", "jedem", "jeden", "jeder", "jedes",
	"jene", "jenem", "jenen", "jener", "jenes", "jetzt", "kann", "kein",
	"keine", "keinem", "keinen", "keiner", "keines", "können", "könnte",
	"machen", "man", "manche", "manchem", "manchen", "mancher",
	"manches", "mein", "meine", "meinem", "meinen", "meiner", "meines",
	"mich", "mir", "mit", "muss", "musste", "nach", "nicht", "nichts",
	"noch", "nun", "nur", "ob", "oder", "ohne", "sehr", "sein", "seine",
	"seinem", "seinen", "seiner", "seines", "selbst", "sich", "sie",
	"sind", "so", "solche", "solchem", "solchen", "solcher", "solches",
	"soll", "sollte", "sondern", "sonst", "um", "und", "uns", "unser",
	"unsere", "unserem", "unseren", "unseres", "unter", "viel", "vom",
	"von", "vor", "war", "waren", "warst", "was", "weg", "weil",
	"weiter", "welche", "welchem", "welchen", "welcher", "welches",
	"wenn", "werde", "werden", "wie", "wieder", "will", "wir", "wird",
	"wirst", "wo", "wollen", "wollte", "während", "würde", "würden",
	"zu", "zum", "zur", "zwar", "zwischen", "über",
})

var stopwordsEN = newStopwordSet([]string{
	"a", "about", "above", "after", "again", "against", "all", "am",
	"an", "and", "any", "are", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"did", "do", "does", "doing", "down", "during", "each", "few",
	"for", "from", "further", "had", "has", "have", "having", "he",
	"her", "here", "hers", "herself", "him", "himself", "his", "how",
	"i", "if", "in", "into", "is", "it", "its", "itself", "just", "me",
	"more", "most", "my", "myself", "no", "nor", "not", "now", "of",
	"off", "on", "once", "only", "or", "other", "our", "ours",
	"ourselves", "out", "over", "own", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was",
	"we", "were", "what", "when", "where", "which", "while", "who",
	"whom", "why", "will", "with", "you", "your", "yours", "yourself",
	"yourselves",
})
