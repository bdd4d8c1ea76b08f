package keyword

import "github.com/abadojack/whatlanggo"

// DefaultLanguage is used when detection yields no ISO 639-1 code, e.g.
// on empty or symbol-only bodies. Detection confidence is not checked.
const DefaultLanguage = "en"

// detectLanguage returns the ISO 639-1 code of the dominant language in
// text, falling back to DefaultLanguage when whatlanggo can't tell.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return DefaultLanguage
	}
	return code
}
