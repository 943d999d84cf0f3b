package redis_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/switchboard/pkg/adapters/redis"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisTranscript_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunTranscriptStoreContract(t, store)
}

func TestRedisTranscript_MaxLen(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithMaxLen(2))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, domain.UserEntry("wf", fmt.Sprintf("task-%d", i))))
	}

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "task-2", entries[0].Content)
	assert.Equal(t, "task-3", entries[1].Content)
}

func TestRedisTranscript_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second), redis.WithPrefix("test:"), redis.WithName("ops"))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.UserEntry("wf", "run the audit")))
	assert.True(t, mr.Exists("test:ops"))

	mr.FastForward(2 * time.Second)

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "transcript should expire after the TTL")
}

func TestRedisTranscript_NamesAreIsolated(t *testing.T) {
	_, client := newClient(t)
	a := redis.NewFromClient(client, redis.WithName("a"))
	b := redis.NewFromClient(client, redis.WithName("b"))
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, domain.UserEntry("wf", "only in a")))

	entries, err := b.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRedisQueue_PublishConsume(t *testing.T) {
	_, client := newClient(t)
	q := redis.NewQueue(client, "test:jobs", 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, domain.Job{ID: "1", Task: "run the audit", Context: domain.Context{"team": "legal"}}))
	require.NoError(t, q.Publish(ctx, domain.Job{ID: "2", Task: "fix payroll"}))

	var mu sync.Mutex
	var got []domain.Job
	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(consumeCtx, 1, func(ctx context.Context, job domain.Job) error {
			mu.Lock()
			got = append(got, job)
			n := len(got)
			mu.Unlock()
			if n == 2 {
				stop()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-ctx.Done():
		t.Fatal("consumer did not finish")
	}

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID, "LPUSH/BRPOP must deliver in publish order")
	assert.Equal(t, "legal", got[0].Context["team"])
	assert.Equal(t, "2", got[1].ID)
}

func TestRedisQueue_InterruptedJobIsRequeued(t *testing.T) {
	mr, client := newClient(t)
	q := redis.NewQueue(client, "test:jobs", 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, q.Publish(ctx, domain.Job{ID: "1", Task: "run the audit"}))

	started := make(chan struct{})
	var finished atomic.Bool
	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(consumeCtx, 2, func(ctx context.Context, job domain.Job) error {
			close(started)
			<-ctx.Done()
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			return ctx.Err()
		})
	}()

	select {
	case <-started:
	case <-ctx.Done():
		t.Fatal("job not consumed")
	}
	stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-ctx.Done():
		t.Fatal("consumer did not finish")
	}
	assert.True(t, finished.Load(), "Consume must wait for in-flight handlers")
	require.NoError(t, q.Close())

	pending, err := mr.List("test:jobs")
	require.NoError(t, err)
	require.Len(t, pending, 1, "interrupted job should be pushed back")
	assert.Contains(t, pending[0], `"run the audit"`)
}
