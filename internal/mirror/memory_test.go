package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	cleared, err := m.Cleared(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, cleared)

	require.NoError(t, m.MarkCleared(ctx, "u1"))
	cleared, _ = m.Cleared(ctx, "u1")
	assert.True(t, cleared)

	require.NoError(t, m.Forget(ctx, "u1"))
	cleared, _ = m.Cleared(ctx, "u1")
	assert.False(t, cleared)
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, m.MarkCleared(ctx, "u1"))

	now = now.Add(59 * time.Second)
	cleared, _ := m.Cleared(ctx, "u1")
	assert.True(t, cleared)

	now = now.Add(time.Second)
	cleared, _ = m.Cleared(ctx, "u1")
	assert.False(t, cleared)
}

var (
	_ Mirror = (*Memory)(nil)
	_ Mirror = (*Redis)(nil)
)
