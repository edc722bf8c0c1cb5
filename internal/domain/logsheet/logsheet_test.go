package logsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateRequest_AppliesZeroValues(t *testing.T) {
	l := Logsheet{Date: "2024-01-01", KmCovered: 12, Learning: "parking"}

	changed := UpdateRequest{KmCovered: ptr(0.0), Learning: ptr("")}.Apply(&l)

	require.True(t, changed)
	assert.Equal(t, 0.0, l.KmCovered)
	assert.Equal(t, "", l.Learning)
	assert.Equal(t, "2024-01-01", l.Date)
}

func TestUpdateRequest_EmptyIsNoop(t *testing.T) {
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := Logsheet{Date: "2024-01-01", KmCovered: 12, UpdatedAt: before}

	assert.False(t, UpdateRequest{}.Apply(&l))
	assert.Equal(t, before, l.UpdatedAt)

	assert.False(t, UpdateRequest{Date: ptr("  ")}.Apply(&l))
	assert.Equal(t, "2024-01-01", l.Date)
}

func TestNewFromCreateRequest(t *testing.T) {
	from := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	l := NewFromCreateRequest("alice", CreateRequest{
		Date:       " 2024-02-03 ",
		KmCovered:  ptr(4.5),
		Learning:   "parking",
		TimingFrom: &from,
		TimingTo:   &to,
	})

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "alice", l.Username)
	assert.Equal(t, "2024-02-03", l.Date)
	assert.Equal(t, 4.5, l.KmCovered)
	assert.Equal(t, from, l.TimingFrom)
	assert.Equal(t, to, l.TimingTo)
	assert.Equal(t, l.CreatedAt, l.UpdatedAt)
}
