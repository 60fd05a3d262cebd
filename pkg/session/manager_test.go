package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/session"
)

// slowChat simulates dispatch latency to provoke race conditions if the
// per-session locking is missing.
type slowChat struct {
	mu       sync.Mutex
	inflight int32
	maxSeen  int32
	turns    []domain.Turn
	closed   bool
}

func (c *slowChat) Send(ctx context.Context, input string) (string, error) {
	cur := atomic.AddInt32(&c.inflight, 1)
	defer atomic.AddInt32(&c.inflight, -1)
	for {
		max := atomic.LoadInt32(&c.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&c.maxSeen, max, cur) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond) // Simulate IO

	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns,
		domain.Turn{Role: domain.RoleUser, Content: input},
		domain.Turn{Role: domain.RoleAssistant, Content: "ok"},
	)
	return "ok", nil
}

func (c *slowChat) Transcript() []domain.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *slowChat) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestManagerSerializesDispatchesPerSession(t *testing.T) {
	chat := &slowChat{}
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		return chat, nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithSession(ctx, "race-test", func(ctx context.Context, c session.Chat) error {
				_, err := c.Send(ctx, "hello")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), chat.maxSeen, "dispatches on one session must not overlap")
	assert.Len(t, chat.Transcript(), 16)
}

func TestManagerCreatesLazilyAndOnce(t *testing.T) {
	var created int32
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		atomic.AddInt32(&created, 1)
		return &slowChat{}, nil
	})
	ctx := context.Background()

	assert.Equal(t, 0, manager.Len())

	for i := 0; i < 3; i++ {
		err := manager.WithSession(ctx, "a", func(ctx context.Context, c session.Chat) error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), created)
	assert.Equal(t, 1, manager.Len())
}

func TestManagerFactoryFailureIsRetried(t *testing.T) {
	var calls int32
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("provider not configured")
		}
		return &slowChat{}, nil
	})
	ctx := context.Background()

	err := manager.WithSession(ctx, "a", func(ctx context.Context, c session.Chat) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, manager.Len(), "failed creation must not leave a dead entry")

	err = manager.WithSession(ctx, "a", func(ctx context.Context, c session.Chat) error { return nil })
	assert.NoError(t, err)
}

func TestManagerLookup(t *testing.T) {
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		return &slowChat{}, nil
	})
	ctx := context.Background()

	err := manager.Lookup(ctx, "ghost", func(ctx context.Context, c session.Chat) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrNotFound))

	require.NoError(t, manager.WithSession(ctx, "a", func(ctx context.Context, c session.Chat) error { return nil }))

	var visited bool
	err = manager.Lookup(ctx, "a", func(ctx context.Context, c session.Chat) error {
		visited = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, visited)
}

func TestManagerDeleteClosesChat(t *testing.T) {
	chat := &slowChat{}
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		return chat, nil
	})
	ctx := context.Background()

	require.NoError(t, manager.WithSession(ctx, "a", func(ctx context.Context, c session.Chat) error { return nil }))
	require.NoError(t, manager.Delete(ctx, "a"))

	assert.True(t, chat.closed)
	assert.Equal(t, 0, manager.Len())

	// Deleting an unknown session is a no-op.
	assert.NoError(t, manager.Delete(ctx, "ghost"))
}

func TestManagerShutdown(t *testing.T) {
	chats := map[string]*slowChat{}
	manager := session.NewManager(func(ctx context.Context, id string) (session.Chat, error) {
		c := &slowChat{}
		chats[id] = c
		return c, nil
	})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, manager.WithSession(ctx, id, func(ctx context.Context, c session.Chat) error { return nil }))
	}
	assert.Equal(t, []string{"a", "b", "c"}, manager.List())

	require.NoError(t, manager.Shutdown(ctx))
	assert.Equal(t, 0, manager.Len())
	for id, c := range chats {
		assert.True(t, c.closed, "chat %s should be closed", id)
	}
}
