package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestVerifyConsumesCode(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "123456", time.Minute))

	ok, err := store.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	// Single-use: the same code is gone immediately after success.
	ok, err = store.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyExpiredCode(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "123456", time.Minute))
	clock.Advance(61 * time.Second)

	ok, err := store.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "correct code fails after TTL")

	// Lazy cleanup removed the entry.
	entry, err := store.Peek(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestVerifyMismatchKeepsEntry(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "123456", time.Minute))

	ok, err := store.Verify(ctx, "user@example.com", "999999")
	require.NoError(t, err)
	assert.False(t, ok)

	// Retry with the right code within the TTL still succeeds.
	ok, err = store.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyUnknownIdentifier(t *testing.T) {
	store := NewMemoryStore(nil)

	ok, err := store.Verify(context.Background(), "nobody@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutOverwritesPreviousCode(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "111111", time.Minute))
	require.NoError(t, store.Put(ctx, "user@example.com", "222222", time.Minute))

	ok, err := store.Verify(ctx, "user@example.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok, "overwritten code is no longer valid")

	ok, err = store.Verify(ctx, "user@example.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPeekDoesNotConsume(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "123456", time.Minute))

	entry, err := store.Peek(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "user@example.com", entry.Identifier)
	assert.Equal(t, clock.Now().Add(time.Minute), entry.ExpiresAt)

	ok, err := store.Verify(ctx, "user@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailedAttemptsAreCounted(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user@example.com", "123456", time.Minute))
	store.Verify(ctx, "user@example.com", "000000")
	store.Verify(ctx, "user@example.com", "111111")

	entry, err := store.Peek(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.Attempts)
}
