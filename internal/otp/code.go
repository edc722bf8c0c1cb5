package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const CodeLength = 6

// NewCode returns a zero-padded numeric code from crypto/rand.
func NewCode() (string, error) {
	max := big.NewInt(1_000_000)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
