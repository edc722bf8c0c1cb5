package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', code)
		}
	}
}

func TestMemoryStore_Consume(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "a@example.com", "123456", time.Minute))

	ok, err := s.Consume(ctx, "a@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok, "wrong code")

	ok, err = s.Consume(ctx, "a@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Consume(ctx, "a@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "codes are single use")
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Save(ctx, "a@example.com", "123456", time.Minute))
	clock = clock.Add(2 * time.Minute)

	ok, err := s.Consume(ctx, "a@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}
