package keyword

import "sync"

// stopwordSets holds a small, hand-maintained corpus of common stopwords
// per ISO 639-1 language code. It is intentionally not exhaustive: a
// language missing here simply extracts keywords without stopword
// filtering, which degrades gracefully rather than failing the request.
var stopwordSets = map[string][]string{
	"en": {
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if",
		"in", "into", "is", "it", "no", "not", "of", "on", "or", "such",
		"that", "the", "their", "then", "there", "these", "they", "this",
		"to", "was", "will", "with", "from", "you", "your", "we", "our",
		"can", "about", "have", "has", "had", "do", "does", "did",
	},
	"fr": {
		"le", "la", "les", "un", "une", "des", "de", "du", "et", "en",
		"est", "que", "qui", "pour", "dans", "sur", "avec", "au", "aux",
		"ce", "ces", "son", "sa", "ses", "il", "elle", "nous", "vous",
	},
	"de": {
		"der", "die", "das", "und", "ist", "ein", "eine", "in", "von",
		"zu", "mit", "auf", "für", "nicht", "den", "dem", "des", "sich",
		"auch", "als", "bei", "wird", "sind", "wie", "aber",
	},
	"es": {
		"el", "la", "los", "las", "un", "una", "y", "en", "es", "de",
		"que", "por", "para", "con", "su", "al", "del", "se", "como",
		"más", "pero", "sus", "le", "ya", "o",
	},
	"it": {
		"il", "lo", "la", "i", "gli", "le", "un", "una", "di", "e", "che",
		"per", "con", "su", "del", "della", "dei", "si", "come", "ma",
		"anche", "sono", "era",
	},
	"pt": {
		"o", "a", "os", "as", "um", "uma", "de", "e", "que", "em", "para",
		"com", "do", "da", "dos", "das", "por", "se", "como", "mas",
		"também", "são", "foi",
	},
	"nl": {
		"de", "het", "een", "en", "van", "in", "is", "dat", "op", "te",
		"met", "voor", "zijn", "aan", "niet", "maar", "ook", "dit", "dan",
	},
}

// stopwordCache lazily loads and caches the stopword set for each
// language code the process has actually seen, regardless of whether a
// built-in set exists for it. A language with no built-in set caches an
// empty set, which is still cheaper than re-deciding "do I know this
// language" on every request.
type stopwordCache struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func newStopwordCache() *stopwordCache {
	return &stopwordCache{sets: make(map[string]map[string]struct{})}
}

// Get returns the stopword set for lang, populating the cache on first
// use for that language.
func (c *stopwordCache) Get(lang string) map[string]struct{} {
	c.mu.RLock()
	set, ok := c.sets[lang]
	c.mu.RUnlock()
	if ok {
		return set
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.sets[lang]; ok {
		return set
	}
	words := stopwordSets[lang]
	set = make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	c.sets[lang] = set
	return set
}
