// Package resource provides a generic holder for remotely loaded data that
// tracks its load status alongside the last good payload.
package resource

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of a Resource.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Snapshot is a point-in-time copy of a Resource.
type Snapshot[T any] struct {
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	HasData   bool      `json:"has_data"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Loader fetches a fresh payload.
type Loader[T any] func(ctx context.Context) (T, error)

// Resource holds a payload loaded asynchronously. A failed load records the
// error but never replaces the last successful payload, and a load that
// finishes after a newer one has started is discarded.
type Resource[T any] struct {
	mu        sync.RWMutex
	status    Status
	data      T
	hasData   bool
	err       error
	updatedAt time.Time
	gen       uint64
	now       func() time.Time
}

// New returns an idle Resource.
func New[T any]() *Resource[T] {
	return &Resource[T]{status: StatusIdle, now: time.Now}
}

// Load runs loader and records its outcome.
func (r *Resource[T]) Load(ctx context.Context, loader Loader[T]) (T, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.status = StatusLoading
	r.mu.Unlock()

	data, err := loader(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return data, err
	}
	if err != nil {
		r.status = StatusError
		r.err = err
		return data, err
	}
	r.status = StatusSuccess
	r.data = data
	r.hasData = true
	r.err = nil
	r.updatedAt = r.now()
	return data, nil
}

// Get returns the current payload when it was loaded successfully within
// maxAge, otherwise it loads a fresh one. A zero maxAge never expires.
func (r *Resource[T]) Get(ctx context.Context, maxAge time.Duration, loader Loader[T]) (T, error) {
	r.mu.RLock()
	fresh := r.status == StatusSuccess && (maxAge <= 0 || r.now().Sub(r.updatedAt) < maxAge)
	data := r.data
	r.mu.RUnlock()
	if fresh {
		return data, nil
	}
	return r.Load(ctx, loader)
}

// Snapshot returns a copy of the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot[T]{
		Status:    r.status,
		Data:      r.data,
		HasData:   r.hasData,
		UpdatedAt: r.updatedAt,
	}
	if r.err != nil {
		snap.Error = r.err.Error()
	}
	return snap
}

// Invalidate marks the payload stale so the next Get reloads it. The payload
// itself is kept.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	r.updatedAt = time.Time{}
	if r.status == StatusSuccess {
		r.status = StatusIdle
	}
	r.mu.Unlock()
}
