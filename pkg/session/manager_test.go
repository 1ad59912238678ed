package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/aretw0/digest/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_UpdateSerializesPerRun(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, domain.NewRecord("run-1", "q", domain.StyleAcademic, time.Now())))

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, "run-1", func(_ context.Context, rec *domain.Record) (*domain.Record, error) {
				// Read-modify-write; without the lock increments would be lost.
				time.Sleep(time.Millisecond)
				rec.RetryCount++
				return rec, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := manager.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, writers, rec.RetryCount)
}

func TestManager_UpdateSavesOnError(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, domain.NewRecord("run-1", "q", domain.StyleAcademic, time.Now())))

	boom := errors.New("cancelled midway")
	out, err := manager.Update(ctx, "run-1", func(_ context.Context, rec *domain.Record) (*domain.Record, error) {
		rec.Status = domain.StatusCancelled
		return rec, boom
	})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, out)

	stored, err := manager.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestManager_UpdateMissingRecord(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Update(context.Background(), "ghost", func(_ context.Context, rec *domain.Record) (*domain.Record, error) {
		t.Fatal("fn must not run for a missing record")
		return rec, nil
	})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

type countingLocker struct {
	locks   atomic.Int32
	unlocks atomic.Int32
	ttl     time.Duration
	err     error
}

func (l *countingLocker) Lock(_ context.Context, _ string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locks.Add(1)
	l.ttl = ttl
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, domain.NewRecord("run-1", "q", domain.StyleAcademic, time.Now())))
	_, err := manager.Load(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), locker.locks.Load())
	assert.Equal(t, int32(2), locker.unlocks.Load())
	assert.Equal(t, time.Minute, locker.ttl)

	failing := session.NewManager(memory.NewStore(), session.WithLocker(&countingLocker{err: errors.New("redis down")}))
	err = failing.Save(ctx, domain.NewRecord("run-2", "q", domain.StyleAcademic, time.Now()))
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
