// Package keyword extracts scored keywords from a document body: language
// detection, per-language stopword lookup, and an unsupervised statistical
// scoring pass modeled on YAKE, dispatched through a small format registry
// (text/json/binary) so the caller doesn't need to pre-process the body.
package keyword

// DefaultNGrams and DefaultMinimumChars match the original's environment
// defaults (YAKE_NGRAMS, YAKE_MINIMUM_CHARS).
const (
	DefaultNGrams       = 3
	DefaultMinimumChars = 2
	TopN                = 50
)

// Config carries the tunables read from the environment in SPEC_FULL.md's
// configuration layer.
type Config struct {
	NGrams       int
	MinimumChars int
}

// Keyword is an extracted (word, score) pair, score already inverted so
// higher means more significant, matching the wire contract documents
// store their keyword list in.
type Keyword struct {
	Word  string
	Score float64
}

// Extractor runs language detection and keyword scoring for one process
// lifetime, caching stopword lookups across calls.
type Extractor struct {
	cfg       Config
	stopwords *stopwordCache
	registry  *stageRegistry
}

// New returns an Extractor configured with cfg, filling in defaults for
// zero-valued fields.
func New(cfg Config) *Extractor {
	if cfg.NGrams <= 0 {
		cfg.NGrams = DefaultNGrams
	}
	if cfg.MinimumChars <= 0 {
		cfg.MinimumChars = DefaultMinimumChars
	}
	return &Extractor{
		cfg:       cfg,
		stopwords: newStopwordCache(),
		registry:  defaultStageRegistry(),
	}
}

// DetectLanguage returns the ISO 639-1 code whatlanggo assigns to text.
func (e *Extractor) DetectLanguage(text string) string {
	return detectLanguage(text)
}

// Extract converts body to plain text per format (defaulting to
// FormatText when format is empty), then scores keywords against lang's
// stopword set. It returns at most TopN keywords, best first, with scores
// already inverted (1 - raw YAKE score, floored at 0) so higher is better
// and every score lies in [0, 1].
func (e *Extractor) Extract(format, lang string, body []byte) ([]Keyword, error) {
	if format == "" {
		format = FormatText
	}
	stage, ok := e.registry.Get(format)
	if !ok {
		stage, _ = e.registry.Get(FormatText)
	}

	text, err := stage.ToText(body)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	stopwords := e.stopwords.Get(lang)
	candidates := extractKeywords(text, stopwords, yakeConfig{
		ngrams:       e.cfg.NGrams,
		minimumChars: e.cfg.MinimumChars,
	})
	if len(candidates) > TopN {
		candidates = candidates[:TopN]
	}

	keywords := make([]Keyword, len(candidates))
	for i, c := range candidates {
		score := 1.0 - c.Score
		if score < 0 {
			score = 0
		}
		keywords[i] = Keyword{Word: c.Word, Score: score}
	}
	return keywords, nil
}
