package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCost = errors.New("bcrypt cost out of range")

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher refuses costs bcrypt would otherwise quietly replace with its default.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}

	return &Hasher{cost: cost}, nil
}

// Hash runs bcrypt on its own goroutine so a cancelled request does not wait on it.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	type result struct {
		hash []byte
		err  error
	}

	done := make(chan result, 1)

	go func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
		done <- result{hash: hash, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return string(r.hash), nil
	}
}

// Verify compares a bcrypt hash with a plaintext password.
func (h *Hasher) Verify(plain, hash string) bool {
	return CheckPassword(hash, plain) == nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
