package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"log/slog"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
)

// ErrNotFound is returned when a session ID has no live conversation.
var ErrNotFound = errors.New("session not found")

// Chat is the live conversation surface the registry manages.
// It is satisfied by parley.Session.
type Chat interface {
	Send(ctx context.Context, input string) (string, error)
	Transcript() []domain.Turn
	Close() error
}

// Factory creates the conversation for a session ID on first use.
type Factory func(ctx context.Context, sessionID string) (Chat, error)

// entry holds the per-session mutex and the conversation it guards.
type entry struct {
	mu   sync.Mutex
	chat Chat
}

// Manager orchestrates session access, ensuring a single outstanding
// dispatch per conversation. Sessions are created lazily through the
// factory and live until deleted or the manager shuts down.
type Manager struct {
	factory Factory

	mu   sync.Mutex // Global lock for the map
	live map[string]*entry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a session Manager around the given factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		live:    make(map[string]*entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// entryFor gets or creates the lock entry for a session ID.
// The conversation itself is created later, under the entry lock, so a slow
// factory never blocks unrelated sessions.
func (m *Manager) entryFor(sessionID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.live[sessionID]
	if !exists {
		e = &entry{}
		m.live[sessionID] = e
	}
	return e
}

// discard removes an entry that never produced a conversation so a later
// attempt can retry the factory.
func (m *Manager) discard(sessionID string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, exists := m.live[sessionID]; exists && cur == e && e.chat == nil {
		delete(m.live, sessionID)
	}
}

// WithSession executes fn while holding the session's lock, creating the
// conversation on first use. Dispatches and transcript reads for the same ID
// are serialized; different IDs proceed independently.
func (m *Manager) WithSession(ctx context.Context, sessionID string, fn func(ctx context.Context, chat Chat) error) error {
	e := m.entryFor(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chat == nil {
		chat, err := m.factory(ctx, sessionID)
		if err != nil {
			m.discard(sessionID, e)
			return fmt.Errorf("start session %q: %w", sessionID, err)
		}
		e.chat = chat
		m.logger.Debug("session started", "session_id", sessionID)
	}

	return fn(ctx, e.chat)
}

// Lookup executes fn under the session's lock only if the conversation
// already exists. Missing sessions return ErrNotFound instead of invoking
// the factory.
func (m *Manager) Lookup(ctx context.Context, sessionID string, fn func(ctx context.Context, chat Chat) error) error {
	m.mu.Lock()
	e, exists := m.live[sessionID]
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, sessionID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chat == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, sessionID)
	}
	return fn(ctx, e.chat)
}

// Delete closes the conversation and removes it from the registry.
// Deleting an unknown session is a no-op.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, exists := m.live[sessionID]
	if exists {
		delete(m.live, sessionID)
	}
	m.mu.Unlock()

	if !exists {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chat == nil {
		return nil
	}
	if err := e.chat.Close(); err != nil {
		m.logger.Warn("session close failed", "session_id", sessionID, "err", err)
		return err
	}
	m.logger.Debug("session deleted", "session_id", sessionID)
	return nil
}

// List returns the IDs of live sessions in sorted order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Shutdown closes every live session. The first close error is returned
// after all sessions have been attempted.
func (m *Manager) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, id := range m.List() {
		if err := m.Delete(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
