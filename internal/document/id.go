package document

import (
	"crypto/rand"
	"fmt"
)

// idAlphabet mirrors nanoid's default URL-safe alphabet in full; every
// character in it, '-' and '_' included, passes IsValidID.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// generatedIDLength matches the original's nanoid!(16) call.
const generatedIDLength = 16

// NewID returns a random 16-character identifier built from the same
// alphabet nanoid uses, satisfying IsValidID by construction.
func NewID() (string, error) {
	buf := make([]byte, generatedIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("document: generate id: %w", err)
	}
	id := make([]byte, generatedIDLength)
	for i, b := range buf {
		id[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(id), nil
}
