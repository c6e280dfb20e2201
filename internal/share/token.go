// Package share holds the share-link primitives: token generation, the
// password gate, the resolver state machine used by anonymous viewers and the
// HTTP client for the privileged content fetch.
package share

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	TokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// maxUnbiased is the largest multiple of len(tokenAlphabet) that fits in a byte.
const maxUnbiased = 256 - 256%len(tokenAlphabet)

// NewToken returns TokenLength characters drawn uniformly from [A-Za-z0-9].
func NewToken() (string, error) {
	return newToken(rand.Reader)
}

func newToken(src io.Reader) (string, error) {
	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength*2)
	for len(out) < TokenLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}
