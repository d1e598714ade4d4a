package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/internal/logging"
	"github.com/aretw0/tapestry/pkg/idgen"
	"github.com/aretw0/tapestry/pkg/ports"
)

// ErrSessionNotFound is returned when no editor is registered under a session id.
var ErrSessionNotFound = errors.New("session not found")

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// Factory builds the editor backing a new session.
type Factory func(sessionID string) *tapestry.Editor

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	mu      sync.Mutex            // guards locks and editors
	locks   map[string]*lockEntry // active locks
	editors map[string]*tapestry.Editor

	factory Factory
	ids     ports.IDGenerator

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithFactory sets how editors are built for new sessions.
func WithFactory(f Factory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithIDGenerator sets the generator for session ids. Defaults to UUIDs.
func WithIDGenerator(gen ports.IDGenerator) Option {
	return func(m *Manager) {
		m.ids = gen
	}
}

// NewManager creates an empty session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*tapestry.Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ids == nil {
		m.ids = idgen.NewUUID()
	}
	if m.factory == nil {
		m.factory = func(string) *tapestry.Editor { return tapestry.New() }
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) editor(sessionID string) (*tapestry.Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ed, ok := m.editors[sessionID]
	return ed, ok
}

// Create starts a session with a fresh editor and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := m.ids.Next()
	if _, err := m.Open(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Open returns the session's editor, creating it when the id is unknown.
// Concurrent opens of the same id observe a single editor.
func (m *Manager) Open(ctx context.Context, sessionID string) (*tapestry.Editor, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrSessionNotFound)
	}
	var ed *tapestry.Editor
	err := m.withLock(ctx, sessionID, func(context.Context) error {
		if existing, ok := m.editor(sessionID); ok {
			ed = existing
			return nil
		}
		ed = m.factory(sessionID)
		m.mu.Lock()
		m.editors[sessionID] = ed
		m.mu.Unlock()
		m.logger.Info("session created", "session_id", sessionID)
		return nil
	})
	return ed, err
}

// WithEditor runs fn while holding the session's lock. The editor must not
// escape fn.
func (m *Manager) WithEditor(ctx context.Context, sessionID string, fn func(context.Context, *tapestry.Editor) error) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		ed, ok := m.editor(sessionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return fn(ctx, ed)
	})
}

// Delete ends a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.withLock(ctx, sessionID, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.editors[sessionID]; !ok {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		delete(m.editors, sessionID)
		m.logger.Info("session deleted", "session_id", sessionID)
		return nil
	})
}

// List returns the active session ids, sorted.
func (m *Manager) List(_ context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.editors)
}

// withLock executes fn while holding the lock for the session.
func (m *Manager) withLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
