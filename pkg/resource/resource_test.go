package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSuccessStoresPayload(t *testing.T) {
	r := New[[]string]()
	assert.Equal(t, StatusIdle, r.Snapshot().Status)

	data, err := r.Load(context.Background(), func(context.Context) ([]string, error) {
		return []string{"TI", "SI"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TI", "SI"}, data)

	snap := r.Snapshot()
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.True(t, snap.HasData)
	assert.Empty(t, snap.Error)
}

func TestFailedLoadKeepsLastGoodPayload(t *testing.T) {
	r := New[[]string]()
	_, err := r.Load(context.Background(), func(context.Context) ([]string, error) {
		return []string{"TI"}, nil
	})
	require.NoError(t, err)

	_, err = r.Load(context.Background(), func(context.Context) ([]string, error) {
		return nil, errors.New("upstream down")
	})
	require.Error(t, err)

	snap := r.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, []string{"TI"}, snap.Data)
	assert.Equal(t, "upstream down", snap.Error)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	r := New[string]()
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = r.Load(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()
	<-started

	_, err := r.Load(context.Background(), func(context.Context) (string, error) {
		return "new", nil
	})
	require.NoError(t, err)
	close(release)
	<-done

	assert.Equal(t, "new", r.Snapshot().Data)
}

func TestGetUsesFreshPayload(t *testing.T) {
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	r := New[int]()
	r.now = func() time.Time { return now }

	calls := 0
	loader := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := r.Get(context.Background(), time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	now = now.Add(30 * time.Second)
	v, _ = r.Get(context.Background(), time.Minute, loader)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	v, _ = r.Get(context.Background(), time.Minute, loader)
	assert.Equal(t, 2, v)

	r.Invalidate()
	v, _ = r.Get(context.Background(), time.Minute, loader)
	assert.Equal(t, 3, v)
}
