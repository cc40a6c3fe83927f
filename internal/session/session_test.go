package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/models"
)

type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStorage) Set(context.Context, string, string) error { return f.err }
func (f failingStorage) Remove(context.Context, string) error { return f.err }

// blockingStorage holds Get until release is closed.
type blockingStorage struct {
	Storage
	release chan struct{}
}

func (b blockingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	<-b.release
	return b.Storage.Get(ctx, key)
}

func adminIdentity() models.Identity {
	return models.Identity{ID: "2", Name: "Admin", Email: "admin@admin.com", Role: "admin"}
}

func TestMemoryStorageTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemoryStorage(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(time.Hour)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestScopedStorageIsolatesClients(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	a := Scoped(backend, "simpadu", "a")
	b := Scoped(backend, "simpadu", "b")

	require.NoError(t, a.Set(ctx, UserKey, "alice"))
	_, ok, _ := b.Get(ctx, UserKey)
	assert.False(t, ok)

	raw, ok, _ := backend.Get(ctx, "simpadu:a:kampusUser")
	assert.True(t, ok)
	assert.Equal(t, "alice", raw)
}

func TestStoreStartsLoadingUntilRestored(t *testing.T) {
	store := NewStore(NewMemoryStorage(0), nil)
	state := store.Snapshot()
	assert.True(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)

	select {
	case <-store.Ready():
		t.Fatal("ready before restore")
	default:
	}

	store.Restore(context.Background())
	<-store.Ready()
	state = store.Snapshot()
	assert.False(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.Identity)
}

func TestStoreRestoresPersistedIdentity(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	first := NewStore(backend, nil)
	first.Restore(ctx)
	require.NoError(t, first.SignIn(ctx, adminIdentity()))

	second := NewStore(backend, nil)
	second.Restore(ctx)
	state := second.Snapshot()
	require.True(t, state.IsAuthenticated)
	assert.Equal(t, "admin@admin.com", state.Identity.Email)
}

func TestStoreDiscardsCorruptIdentity(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	require.NoError(t, backend.Set(ctx, UserKey, "{not json"))

	store := NewStore(backend, nil)
	store.Restore(ctx)
	assert.False(t, store.Snapshot().IsAuthenticated)

	_, ok, _ := backend.Get(ctx, UserKey)
	assert.False(t, ok)
}

func TestStoreRestoreErrorSignsOut(t *testing.T) {
	store := NewStore(failingStorage{err: errors.New("redis down")}, nil)
	store.Restore(context.Background())

	state := store.Snapshot()
	assert.False(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)
	assert.Contains(t, state.LastError, "redis down")
}

func TestStoreSignInFailureLeavesSessionEmpty(t *testing.T) {
	store := NewStore(failingStorage{err: errors.New("read only")}, nil)
	store.Restore(context.Background())

	err := store.SignIn(context.Background(), adminIdentity())
	require.Error(t, err)
	assert.False(t, store.Snapshot().IsAuthenticated)
}

func TestStoreSignOutClearsKeys(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	require.NoError(t, backend.Set(ctx, legacyAdminKey, "true"))

	store := NewStore(backend, nil)
	store.Restore(ctx)
	require.NoError(t, store.SignIn(ctx, adminIdentity()))
	require.NoError(t, store.SignOut(ctx))

	assert.Equal(t, 0, backend.Len())
	state := store.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.Identity)
}

func TestLateRestoreDoesNotOverrideSignIn(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	store := NewStore(blockingStorage{Storage: NewMemoryStorage(0), release: release}, nil)

	done := make(chan struct{})
	go func() {
		store.Restore(ctx)
		close(done)
	}()

	require.NoError(t, store.SignIn(ctx, adminIdentity()))
	close(release)
	<-done

	state := store.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
}

func TestStoreFailRecordsError(t *testing.T) {
	store := NewStore(NewMemoryStorage(0), nil)
	store.Restore(context.Background())
	store.Fail(context.Background(), "Email tidak terdaftar.")
	assert.Equal(t, "Email tidak terdaftar.", store.Snapshot().LastError)
}

func TestStoreLoginErrorSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	first := NewStore(backend, nil)
	first.Restore(ctx)
	first.Fail(ctx, "Email tidak terdaftar.")

	second := NewStore(backend, nil)
	second.Restore(ctx)
	state := second.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, "Email tidak terdaftar.", state.LastError)

	require.NoError(t, second.SignIn(ctx, adminIdentity()))
	_, ok, _ := backend.Get(ctx, ErrorKey)
	assert.False(t, ok)

	third := NewStore(backend, nil)
	third.Restore(ctx)
	assert.Empty(t, third.Snapshot().LastError)
}

func TestStoreSignOutClearsLoginError(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	store := NewStore(backend, nil)
	store.Restore(ctx)
	store.Fail(ctx, "Email atau kata sandi tidak valid.")

	require.NoError(t, store.SignOut(ctx))
	assert.Empty(t, store.Snapshot().LastError)
	assert.Equal(t, 0, backend.Len())
}

func TestStoreFailKeepsMessageWhenStorageFails(t *testing.T) {
	store := NewStore(failingStorage{err: errors.New("read only")}, nil)
	store.Fail(context.Background(), "Email tidak terdaftar.")
	assert.Equal(t, "Email tidak terdaftar.", store.Snapshot().LastError)
}

func TestManagerOpenRestoresInBackground(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	m := NewManager(backend, "simpadu:session", time.Second, nil)

	sid := m.NewID()
	assert.True(t, m.ValidID(sid))
	assert.False(t, m.ValidID("../../etc"))

	store := m.Open(ctx, sid)
	<-store.Ready()
	require.NoError(t, store.SignIn(ctx, adminIdentity()))

	reopened := m.Open(ctx, store.ID())
	select {
	case <-reopened.Ready():
	case <-time.After(time.Second):
		t.Fatal("restore did not finish")
	}
	assert.True(t, reopened.Snapshot().IsAuthenticated)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("SIMPADU_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SIMPADU_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStorage(client, time.Minute)
	key := "simpadu:test:" + time.Now().Format(time.RFC3339Nano)
	require.NoError(t, s.Set(ctx, key, "v"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerSignInMovesToFreshID(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage(0)
	m := NewManager(backend, "simpadu:session", time.Second, nil)

	oldID := m.NewID()
	store := m.Open(ctx, oldID)
	<-store.Ready()
	store.Fail(ctx, "Email tidak terdaftar.")

	var rotated string
	store.OnRotate(func(id string) { rotated = id })
	require.NoError(t, store.SignIn(ctx, adminIdentity()))

	require.NotEmpty(t, rotated)
	assert.NotEqual(t, oldID, rotated)
	assert.Equal(t, rotated, store.ID())
	assert.True(t, m.ValidID(rotated))
	assert.Equal(t, 1, backend.Len())

	stale := m.Open(ctx, oldID)
	<-stale.Ready()
	assert.False(t, stale.Snapshot().IsAuthenticated)
	assert.Empty(t, stale.Snapshot().LastError)

	fresh := m.Open(ctx, rotated)
	<-fresh.Ready()
	assert.True(t, fresh.Snapshot().IsAuthenticated)

	require.NoError(t, store.SignOut(ctx))
	assert.Equal(t, 0, backend.Len())
}

func TestManagerSignInFailureKeepsID(t *testing.T) {
	ctx := context.Background()
	m := NewManager(failingStorage{err: errors.New("read only")}, "simpadu:session", time.Second, nil)
	sid := m.NewID()
	store := m.Open(ctx, sid)
	<-store.Ready()

	called := false
	store.OnRotate(func(string) { called = true })
	require.Error(t, store.SignIn(ctx, adminIdentity()))
	assert.False(t, called)
	assert.Equal(t, sid, store.ID())
}
