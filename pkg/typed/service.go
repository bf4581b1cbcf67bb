package typed

import (
	"context"

	"github.com/aretw0/lintas/pkg/core"
)

// Service wraps a core.Service to provide type-safe access to the derived queries.
type Service[T any] struct {
	svc *core.Service
}

// NewService creates a new typed service wrapper.
func NewService[T any](svc *core.Service) *Service[T] {
	return &Service[T]{svc: svc}
}

// Put persists a typed record through the core Service.
func (s *Service[T]) Put(ctx context.Context, rec *Record[T]) (string, error) {
	d, err := toCore(rec)
	if err != nil {
		return "", err
	}
	if rec.Saver == nil {
		rec.Saver = s
	}
	return s.svc.Put(ctx, d)
}

// Get looks up a record; found is false when the ID is absent.
func (s *Service[T]) Get(ctx context.Context, id string) (*Record[T], bool, error) {
	d, found, err := s.svc.Get(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	rec, err := fromCore(d, s)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetAll returns every record.
func (s *Service[T]) GetAll(ctx context.Context) ([]*Record[T], error) {
	ds, err := s.svc.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return fromCoreList(ds, s)
}

// Search runs core.Service.Search and decodes the results.
func (s *Service[T]) Search(ctx context.Context, query string) ([]*Record[T], error) {
	ds, err := s.svc.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return fromCoreList(ds, s)
}

// GetByCategory runs core.Service.GetByCategory and decodes the results.
func (s *Service[T]) GetByCategory(ctx context.Context, category string) ([]*Record[T], error) {
	ds, err := s.svc.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return fromCoreList(ds, s)
}

// GetByYear runs core.Service.GetByYear and decodes the results.
func (s *Service[T]) GetByYear(ctx context.Context, year int) ([]*Record[T], error) {
	ds, err := s.svc.GetByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return fromCoreList(ds, s)
}

// Delete removes a record by ID.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

// Watch observes changes in the store.
func (s *Service[T]) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	return s.svc.Watch(ctx, pattern)
}
