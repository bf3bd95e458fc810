package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a hex string built from n bytes of crypto/rand
// output. Used for share tokens, which are bearer credentials.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
