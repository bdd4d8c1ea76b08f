// Package document implements the document entity: validated identifiers,
// JSON persistence, and the update algorithm that keeps a document's
// keyword postings consistent with its current body.
package document

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	minCustomIDLength = 1
	maxCustomIDLength = 64
)

var validIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsValidID reports whether id is an acceptable caller-supplied document
// identifier: 1 to 64 characters, limited to letters, digits, '-', '_'.
func IsValidID(id string) bool {
	if len(id) < minCustomIDLength || len(id) > maxCustomIDLength {
		return false
	}
	return validIDPattern.MatchString(id)
}

// KeywordPair is a (word, score) entry in a document's keyword list,
// serialized as a two-element JSON array to match the wire contract.
type KeywordPair struct {
	Word  string
	Score float64
}

func (k KeywordPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{k.Word, k.Score})
}

func (k *KeywordPair) UnmarshalJSON(data []byte) error {
	var pair [2]interface{}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("document: decode keyword pair: %w", err)
	}
	word, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("document: keyword pair[0] is not a string")
	}
	score, ok := pair[1].(float64)
	if !ok {
		return fmt.Errorf("document: keyword pair[1] is not a number")
	}
	k.Word, k.Score = word, score
	return nil
}

// Document is the persisted unit of content: a body, its detected
// language, and the keywords extracted from it. Index is a context
// attribute supplied by whatever loaded the document, not serialized.
type Document struct {
	ID       string        `json:"id"`
	Index    string        `json:"-"`
	Revision uint32        `json:"rev"`
	Lang     string        `json:"lang,omitempty"`
	Body     string        `json:"body,omitempty"`
	Keywords []KeywordPair `json:"keywords,omitempty"`
}
