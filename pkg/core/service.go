package core

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Service is the dataset store used by upload and query workflows.
// It adds policy (ID checks, not-found handling) and the derived queries on top
// of a Repository.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	mu      sync.RWMutex
	closed  bool
	onClose []func()
}

// NewService creates a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// Put inserts or fully replaces a dataset and returns its ID.
// A failed put leaves the prior record unchanged.
func (s *Service) Put(ctx context.Context, d Dataset) (string, error) {
	if d.ID == "" {
		return "", ErrInvalidDataset
	}
	if err := s.repo.Put(ctx, d); err != nil {
		s.logError("put failed", d.ID, err)
		return "", err
	}
	return d.ID, nil
}

// Get looks up a dataset. Absence is reported as found=false with a nil error;
// err is only set when the medium fails.
func (s *Service) Get(ctx context.Context, id string) (Dataset, bool, error) {
	if id == "" {
		return Dataset{}, false, ErrInvalidDataset
	}
	d, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Dataset{}, false, nil
	}
	if err != nil {
		s.logError("get failed", id, err)
		return Dataset{}, false, err
	}
	return d, true, nil
}

// GetAll returns every dataset. Callers that need an order must sort.
func (s *Service) GetAll(ctx context.Context) ([]Dataset, error) {
	return s.repo.List(ctx)
}

// Delete removes a dataset. Deleting a missing ID succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidDataset
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logError("delete failed", id, err)
		return err
	}
	return nil
}

// Search returns the datasets whose title, description or category contains
// query, case-insensitively. It scans the whole collection.
func (s *Service) Search(ctx context.Context, query string) ([]Dataset, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, MatchQuery(query)), nil
}

// GetByCategory returns the datasets whose category equals category exactly.
func (s *Service) GetByCategory(ctx context.Context, category string) ([]Dataset, error) {
	if idx, ok := s.repo.(Indexed); ok {
		return idx.ListByCategory(ctx, category)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, func(d Dataset) bool { return d.Category == category }), nil
}

// GetByYear returns the datasets whose year equals year.
func (s *Service) GetByYear(ctx context.Context, year int) ([]Dataset, error) {
	if idx, ok := s.repo.(Indexed); ok {
		return idx.ListByYear(ctx, year)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, func(d Dataset) bool { return d.Year == year }), nil
}

// GetByUploadDate returns datasets uploaded in [from, to), oldest first.
// A zero bound is open.
func (s *Service) GetByUploadDate(ctx context.Context, from, to time.Time) ([]Dataset, error) {
	if idx, ok := s.repo.(Indexed); ok {
		return idx.ListByUploadDate(ctx, from, to)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := Filter(all, InUploadRange(from, to))
	SortByUploadDate(out)
	return out, nil
}

// Watch observes changes in the store if the repository supports it.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// OnClose registers fn to run after the service is closed.
func (s *Service) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Close releases the underlying medium. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	err := s.repo.Close()
	for _, fn := range hooks {
		fn()
	}
	return err
}

func (s *Service) logError(msg, id string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "id", id, "error", err)
	}
}

// MatchQuery returns a predicate for case-insensitive substring search over
// title, description and category. An empty query matches everything.
func MatchQuery(query string) func(Dataset) bool {
	q := strings.ToLower(query)
	return func(d Dataset) bool {
		return strings.Contains(strings.ToLower(d.Title), q) ||
			strings.Contains(strings.ToLower(d.Description), q) ||
			strings.Contains(strings.ToLower(d.Category), q)
	}
}

// InUploadRange returns a predicate for from <= upload_date < to.
func InUploadRange(from, to time.Time) func(Dataset) bool {
	return func(d Dataset) bool {
		if !from.IsZero() && d.UploadDate.Before(from) {
			return false
		}
		if !to.IsZero() && !d.UploadDate.Before(to) {
			return false
		}
		return true
	}
}

// Filter returns the datasets for which keep returns true.
func Filter(in []Dataset, keep func(Dataset) bool) []Dataset {
	out := make([]Dataset, 0, len(in))
	for _, d := range in {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// SortByUploadDate orders datasets oldest first, breaking ties by ID.
func SortByUploadDate(ds []Dataset) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].UploadDate.Equal(ds[j].UploadDate) {
			return ds[i].ID < ds[j].ID
		}
		return ds[i].UploadDate.Before(ds[j].UploadDate)
	})
}

// Paginate returns the 1-based page of items with perPage entries per page.
// Out-of-range pages yield an empty slice.
func Paginate(items []Dataset, page, perPage int) []Dataset {
	if perPage <= 0 || page <= 0 {
		return []Dataset{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []Dataset{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
