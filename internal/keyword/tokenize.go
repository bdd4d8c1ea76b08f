package keyword

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

var wordTokenizer = unicodetok.NewUnicodeTokenizer()

// word is one occurrence of a token: its lowercased form (the candidate
// identity) alongside its original casing (the casing feature input).
type word struct {
	lower    string
	original string
}

// sentence is one sentence's worth of word tokens, in order.
type sentence struct {
	words []word
}

// splitSentences breaks text into naive sentences on '.', '!', '?', and
// newlines, then tokenizes each sentence into alphanumeric words using
// bleve's Unicode word tokenizer — the same segmentation Bleve's own
// index mappings rely on, reused here instead of a hand-rolled rune
// scanner.
func splitSentences(text string) []sentence {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	sentences := make([]sentence, 0, len(raw))
	for _, chunk := range raw {
		tokens := wordTokenizer.Tokenize([]byte(chunk))
		words := wordsFromTokens(tokens)
		if len(words) > 0 {
			sentences = append(sentences, sentence{words: words})
		}
	}
	return sentences
}

func wordsFromTokens(tokens analysis.TokenStream) []word {
	words := make([]word, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type != analysis.AlphaNumeric {
			continue
		}
		term := string(tok.Term)
		words = append(words, word{lower: strings.ToLower(term), original: term})
	}
	return words
}

// isUpperInitial reports whether s starts with an uppercase letter,
// used for the casing feature of the scoring model.
func isUpperInitial(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
