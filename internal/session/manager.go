package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager hands out per-client Stores that share one Storage backend.
type Manager struct {
	storage Storage
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewManager builds a Manager. prefix namespaces every key in storage and
// restoreTimeout bounds how long callers should wait for a store to load.
func NewManager(storage Storage, prefix string, restoreTimeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if restoreTimeout <= 0 {
		restoreTimeout = 3 * time.Second
	}
	return &Manager{storage: storage, prefix: prefix, timeout: restoreTimeout, logger: logger}
}

// NewID returns a fresh opaque session id.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id could have been issued by NewID.
func (m *Manager) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// RestoreTimeout is how long the guard waits for a store to leave loading.
func (m *Manager) RestoreTimeout() time.Duration {
	return m.timeout
}

// Open returns the store for session id sid and starts restoring it in the
// background. The returned store is loading until Ready is closed. A
// successful SignIn moves the store to a fresh id; register OnRotate to hand
// it to the client.
func (m *Manager) Open(ctx context.Context, sid string) *Store {
	store := NewStore(m.scope(sid), m.logger.With(zap.String("session", shortID(sid))))
	store.id = sid
	store.newID = m.NewID
	store.rescope = m.scope
	go store.Restore(ctx)
	return store
}

func (m *Manager) scope(sid string) Storage {
	return Scoped(m.storage, m.prefix, sid)
}

func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
