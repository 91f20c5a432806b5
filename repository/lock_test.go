package repository

import (
	"backoffice/pkg/apperr"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "C1", time.Minute, 0)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "C1", time.Minute, 150*time.Millisecond)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	// other keys are independent
	releaseOther, err := locker.Acquire(ctx, "C2", time.Minute, 0)
	require.NoError(t, err)
	require.NoError(t, releaseOther(ctx))

	require.NoError(t, release(ctx))

	release, err = locker.Acquire(ctx, "C1", time.Minute, 0)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestMemoryLockerWaitsForRelease(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "C1", time.Minute, 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(120 * time.Millisecond)
		_ = release(ctx)
	}()

	second, err := locker.Acquire(ctx, "C1", time.Minute, 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, second(ctx))
}

func TestMemoryLockerExpiry(t *testing.T) {
	locker := NewMemoryLocker()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	locker.nowFn = func() time.Time { return now }
	ctx := context.Background()

	staleRelease, err := locker.Acquire(ctx, "C1", time.Second, 0)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	release, err := locker.Acquire(ctx, "C1", time.Second, 0)
	require.NoError(t, err)

	// the expired holder must not remove the new holder's lock
	require.NoError(t, staleRelease(ctx))
	_, err = locker.Acquire(ctx, "C1", time.Second, 0)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	require.NoError(t, release(ctx))
}

func TestIDFilter(t *testing.T) {
	f := idFilter("65a1f0c2e4b0a1b2c3d4e5f6")
	_, isString := f["_id"].(string)
	assert.False(t, isString)

	f = idFilter("plan-42")
	assert.Equal(t, "plan-42", f["_id"])
}
