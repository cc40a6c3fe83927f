package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/simpadu-api/internal/models"
)

const (
	// UserKey holds the JSON identity of the signed in user.
	UserKey = "kampusUser"
	// ErrorKey holds the message of the last failed login attempt.
	ErrorKey = "kampusError"
	// legacyAdminKey was written by older admin screens and is cleared on
	// sign out.
	legacyAdminKey = "kampusAdmin"
)

// Store is one client's session. It starts in the loading state and leaves it
// exactly once, when Restore finishes reading the persisted identity.
type Store struct {
	storage Storage
	logger  *zap.Logger

	// Set by Manager.Open. A store with a rescope func moves to a fresh id on
	// every successful SignIn.
	id       string
	newID    func() string
	rescope  func(id string) Storage
	onRotate func(id string)

	mu        sync.RWMutex
	identity  *models.Identity
	loading   bool
	lastError string
	// written is set once SignIn or SignOut ran, so a late Restore does not
	// clobber a newer decision.
	written bool

	ready    chan struct{}
	restored sync.Once
}

// NewStore returns a loading Store backed by storage.
func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, logger: logger, loading: true, ready: make(chan struct{})}
}

// Restore reads the persisted identity and the last login error. A missing
// or unreadable identity leaves the session signed out; an unreadable one is
// also removed from storage. Only the first call has any effect.
func (s *Store) Restore(ctx context.Context) {
	s.restored.Do(func() {
		identity, lastError, err := s.read(ctx)

		s.mu.Lock()
		if !s.written {
			s.identity = identity
			s.lastError = lastError
		}
		s.loading = false
		if err != nil {
			s.lastError = err.Error()
		}
		s.mu.Unlock()
		close(s.ready)
	})
}

func (s *Store) read(ctx context.Context) (*models.Identity, string, error) {
	storage := s.backend()
	raw, ok, err := storage.Get(ctx, UserKey)
	if err != nil {
		s.logger.Warn("session restore failed", zap.Error(err))
		return nil, "", fmt.Errorf("restore session: %w", err)
	}
	lastError, _, err := storage.Get(ctx, ErrorKey)
	if err != nil {
		s.logger.Warn("session restore failed", zap.Error(err))
		return nil, "", fmt.Errorf("restore session: %w", err)
	}
	if !ok || raw == "" {
		return nil, lastError, nil
	}
	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Warn("discarding unreadable session", zap.Error(err))
		if rmErr := storage.Remove(ctx, UserKey); rmErr != nil {
			s.logger.Warn("remove unreadable session", zap.Error(rmErr))
		}
		return nil, lastError, nil
	}
	return &identity, lastError, nil
}

func (s *Store) backend() Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage
}

// ID is the session id the store is currently bound to. It changes after a
// successful SignIn on stores opened through a Manager.
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// OnRotate registers fn to be called with the new id whenever SignIn moves
// the session to a fresh id.
func (s *Store) OnRotate(fn func(id string)) {
	s.mu.Lock()
	s.onRotate = fn
	s.mu.Unlock()
}

// Ready is closed once the store has left the loading state.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := models.SessionState{
		IsLoading: s.loading,
		LastError: s.lastError,
	}
	if s.identity != nil {
		identity := *s.identity
		state.Identity = &identity
		state.IsAuthenticated = true
	}
	return state
}

// Identity returns the signed in identity, if any.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// SignIn persists identity under UserKey and marks the session
// authenticated. Storage is written before memory so a failed write leaves
// the session unchanged. Stores opened through a Manager write the identity
// under a fresh id and drop the old scope, so an id handed out before login
// never becomes authenticated.
func (s *Store) SignIn(ctx context.Context, identity models.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	current := s.backend()
	target, id := current, ""
	if s.rescope != nil {
		id = s.newID()
		target = s.rescope(id)
	}
	if err := target.Set(ctx, UserKey, string(payload)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	if id != "" {
		s.clear(ctx, current, UserKey, ErrorKey, legacyAdminKey)
	} else {
		s.clear(ctx, current, ErrorKey)
	}

	s.mu.Lock()
	if id != "" {
		s.id = id
		s.storage = target
	}
	s.identity = &identity
	s.lastError = ""
	s.written = true
	onRotate := s.onRotate
	s.mu.Unlock()

	if id != "" && onRotate != nil {
		onRotate(id)
	}
	return nil
}

func (s *Store) clear(ctx context.Context, storage Storage, keys ...string) {
	for _, key := range keys {
		if err := storage.Remove(ctx, key); err != nil {
			s.logger.Warn("clear session key", zap.String("key", key), zap.Error(err))
		}
	}
}

// SignOut removes the persisted identity, the last login error and the
// legacy admin key, then resets the session.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.lastError = ""
	s.written = true
	storage := s.storage
	s.mu.Unlock()

	if err := storage.Remove(ctx, UserKey); err != nil {
		return fmt.Errorf("remove identity: %w", err)
	}
	if err := storage.Remove(ctx, ErrorKey); err != nil {
		return fmt.Errorf("remove login error: %w", err)
	}
	if err := storage.Remove(ctx, legacyAdminKey); err != nil {
		return fmt.Errorf("remove legacy admin key: %w", err)
	}
	return nil
}

// Fail records a failed login attempt under ErrorKey. The persisted identity
// is left alone. A storage error is logged and the message is still kept for
// the current request.
func (s *Store) Fail(ctx context.Context, message string) {
	s.mu.Lock()
	s.lastError = message
	storage := s.storage
	s.mu.Unlock()

	if err := storage.Set(ctx, ErrorKey, message); err != nil {
		s.logger.Warn("persist login error", zap.Error(err))
	}
}
