package typed

import (
	"context"

	"github.com/aretw0/lintas/pkg/core"
)

// Repository wraps a core.Repository to provide type-safe payload access.
type Repository[T any] struct {
	repo core.Repository
}

// NewRepository creates a new type-safe wrapper around an existing repository.
func NewRepository[T any](repo core.Repository) *Repository[T] {
	return &Repository[T]{repo: repo}
}

// Put persists a typed record and returns its ID.
func (r *Repository[T]) Put(ctx context.Context, rec *Record[T]) (string, error) {
	d, err := toCore(rec)
	if err != nil {
		return "", err
	}
	if rec.Saver == nil {
		rec.Saver = r
	}
	if err := r.repo.Put(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// Get retrieves a record. It returns core.ErrNotFound when absent.
func (r *Repository[T]) Get(ctx context.Context, id string) (*Record[T], error) {
	d, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromCore(d, r)
}

// List returns all records converted to the typed model.
func (r *Repository[T]) List(ctx context.Context) ([]*Record[T], error) {
	ds, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return fromCoreList(ds, r)
}

// Delete removes a record by ID.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.repo.Delete(ctx, id)
}
