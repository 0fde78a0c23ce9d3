package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	orderNumberPrefix   = "BH"
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberSuffix   = 6
)

// NewOrderNumber returns BH + yy + mm + six characters from [0-9A-Z].
// Uniqueness is enforced by the store; callers regenerate on collision.
func NewOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, orderNumberSuffix)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not read random bytes for order number: %w", err)
	}
	// 252 is the largest multiple of 36 below 256; rejecting above it keeps
	// the distribution uniform.
	suffix := make([]byte, 0, orderNumberSuffix)
	for len(suffix) < orderNumberSuffix {
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			suffix = append(suffix, orderNumberAlphabet[int(b)%len(orderNumberAlphabet)])
			if len(suffix) == orderNumberSuffix {
				break
			}
		}
		if len(suffix) < orderNumberSuffix {
			if _, err := rand.Read(buf); err != nil {
				return "", fmt.Errorf("could not read random bytes for order number: %w", err)
			}
		}
	}
	return fmt.Sprintf("%s%02d%02d%s", orderNumberPrefix, now.Year()%100, int(now.Month()), suffix), nil
}
