package core

import (
	"context"
	"time"
)

// Repository defines the contract for storing and retrieving datasets.
// Adhering to this interface keeps the core independent of the
// underlying medium (LevelDB, memory, ...).
type Repository interface {
	// Initialize opens the medium and applies pending schema migrations.
	// It must be safe to call more than once.
	Initialize(ctx context.Context) error

	// Put inserts the dataset or replaces the record with the same ID entirely.
	Put(ctx context.Context, d Dataset) error

	// Get retrieves a dataset by ID. It returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (Dataset, error)

	// List returns all datasets. Order is unspecified.
	List(ctx context.Context) ([]Dataset, error)

	// Delete removes a dataset. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the medium.
	Close() error
}

// Index names a secondary index over the dataset collection.
type Index string

const (
	IndexCategory   Index = FieldCategory
	IndexYear       Index = FieldYear
	IndexUploadDate Index = FieldUploadDate
)

// Indexed is implemented by repositories that maintain secondary indexes.
type Indexed interface {
	// ListByCategory returns the datasets whose category equals category.
	ListByCategory(ctx context.Context, category string) ([]Dataset, error)

	// ListByYear returns the datasets whose year equals year.
	ListByYear(ctx context.Context, year int) ([]Dataset, error)

	// ListByUploadDate returns datasets with from <= upload_date < to in
	// ascending order. A zero bound is open.
	ListByUploadDate(ctx context.Context, from, to time.Time) ([]Dataset, error)
}

// Watchable is implemented by repositories that publish change events.
type Watchable interface {
	// Watch streams events for IDs matching a glob pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
