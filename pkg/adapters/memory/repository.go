// Package memory provides a volatile core.Repository.
// Records are kept in their encoded form so callers never share mutable state
// with the store.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/lintas/pkg/adapters/broker"
	"github.com/aretw0/lintas/pkg/core"
)

var errClosed = errors.New("memory store closed")

// Repository implements core.Repository, core.Indexed and core.Watchable in memory.
type Repository struct {
	mu      sync.RWMutex
	records map[string][]byte
	closed  bool
	events  *broker.Broker
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		records: make(map[string][]byte),
		events:  broker.New(0, nil),
	}
}

// Initialize is a no-op; the repository is ready on creation.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return core.Unavailable("open", errClosed)
	}
	return nil
}

func (r *Repository) Put(ctx context.Context, d core.Dataset) error {
	if d.ID == "" {
		return core.ErrInvalidDataset
	}
	if err := ctx.Err(); err != nil {
		return core.TransactionFailed("put", d.ID, err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return core.TransactionFailed("put", d.ID, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return core.Unavailable("put", errClosed)
	}
	r.records[d.ID] = data
	r.mu.Unlock()

	r.events.Publish(core.Event{Type: core.EventPut, ID: d.ID, Timestamp: time.Now().Unix()})
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, core.TransactionFailed("get", id, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return core.Dataset{}, core.Unavailable("get", errClosed)
	}
	data, ok := r.records[id]
	if !ok {
		return core.Dataset{}, core.ErrNotFound
	}
	var d core.Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return core.Dataset{}, core.TransactionFailed("get", id, err)
	}
	return d, nil
}

func (r *Repository) List(ctx context.Context) ([]core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.TransactionFailed("list", "", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, core.Unavailable("list", errClosed)
	}
	out := make([]core.Dataset, 0, len(r.records))
	for id, data := range r.records {
		var d core.Dataset
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, core.TransactionFailed("list", id, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return core.TransactionFailed("delete", id, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return core.Unavailable("delete", errClosed)
	}
	_, existed := r.records[id]
	delete(r.records, id)
	r.mu.Unlock()

	if existed {
		r.events.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	}
	return nil
}

// ListByCategory scans; the memory adapter keeps no secondary structures.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]core.Dataset, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(all, func(d core.Dataset) bool { return d.Category == category }), nil
}

func (r *Repository) ListByYear(ctx context.Context, year int) ([]core.Dataset, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(all, func(d core.Dataset) bool { return d.Year == year }), nil
}

func (r *Repository) ListByUploadDate(ctx context.Context, from, to time.Time) ([]core.Dataset, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := core.Filter(all, core.InUploadRange(from, to))
	core.SortByUploadDate(out)
	return out, nil
}

func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	return r.events.Subscribe(ctx, pattern)
}

// Close marks the repository closed. Stored records are discarded.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.records = nil
	r.events.Close()
	return nil
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory-repository"
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Indexed    = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
