package app

import (
	"crypto/rand"
	"strings"
)

// randomHex produces n random bytes encoded as lowercase hex.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out), nil
}

// newToken returns a 64-character signature token.
func newToken() (string, error) {
	return randomHex(32)
}

// newReference returns a human-readable reference such as "BAIL-1A2B3C4D".
func newReference(prefix string) (string, error) {
	h, err := randomHex(4)
	if err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToUpper(h), nil
}
