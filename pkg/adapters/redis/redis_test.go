package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/digest/pkg/adapters/redis"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunRecordStoreContract(t, redis.NewStore(client))
}

func TestRedisLog_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunMemoryLogContract(t, redis.NewLog(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewStore(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewRecord("run-ttl", "q", domain.StyleAcademic, time.Now())))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "run-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "run-ttl")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestRedis_Prefix(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	store := redis.NewStore(client, redis.WithPrefix("custom:app:"))
	require.NoError(t, store.Save(ctx, domain.NewRecord("my-run", "q", domain.StyleAcademic, time.Now())))
	assert.True(t, mr.Exists("custom:app:run:my-run"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:run:index"), "Expected index with custom prefix to exist")

	log := redis.NewLog(client, redis.WithPrefix("custom:app:"))
	require.NoError(t, log.Append(ctx, domain.MemoryEntry{Query: "q"}))
	assert.True(t, mr.Exists("custom:app:memory"))
}

func TestRedisLog_CorruptEntry(t *testing.T) {
	mr, client := setup(t)
	_, err := mr.Push(redis.DefaultPrefix+"memory", "{not json")
	require.NoError(t, err)

	_, err = redis.NewLog(client).ReadAll(context.Background())
	assert.ErrorContains(t, err, "corrupt history entry 0")
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "run-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:run-1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:run-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := setup(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(300*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "run-1", time.Second)
	require.NoError(t, err)

	// Our lease expired and another holder took over.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:run-1", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:run-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
