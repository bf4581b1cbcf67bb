package lintas

import (
	"context"
	"log/slog"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lintas/internal/platform"
	"github.com/aretw0/lintas/pkg/adapters/leveldb"
	lifecycleadapter "github.com/aretw0/lintas/pkg/adapters/lifecycle"
	"github.com/aretw0/lintas/pkg/core"
	"github.com/aretw0/lintas/pkg/typed"
)

// --- Types ---

// Dataset is a public alias for the stored record.
type Dataset = core.Dataset

// Payload is a public alias for the opaque dataset content.
type Payload = core.Payload

// Service is a public alias for the dataset store.
type Service = core.Service

// Record is a public alias for the typed dataset model.
type Record[T any] = typed.Record[T]

// TypedRepository is a public alias for the typed repository.
type TypedRepository[T any] = typed.Repository[T]

// TypedService is a public alias for the typed service.
type TypedService[T any] = typed.Service[T]

// Migration is a public alias for a schema step.
type Migration = leveldb.Migration

// Config is a public alias for the application configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterLevelDB = platform.AdapterLevelDB
	AdapterMemory  = platform.AdapterMemory
)

// WithAdapter selects the storage adapter by name ("leveldb" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithStoreName sets the name of the dataset collection.
func WithStoreName(name string) Option {
	return platform.WithStoreName(name)
}

// WithSchemaVersion sets the schema version the store is upgraded to on open.
func WithSchemaVersion(version int) Option {
	return platform.WithSchemaVersion(version)
}

// WithMigrations replaces the schema history used to upgrade the store.
func WithMigrations(migrations []Migration) Option {
	return platform.WithMigrations(migrations)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the dev sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithReadOnly opens the store without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithEventBuffer allows specifying the size of the event broker buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// LoadConfig reads the layered application configuration.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Factory ---

// ErrOptionsConflict is returned by Open when the store is already open with other settings.
var ErrOptionsConflict = platform.ErrOptionsConflict

// Open returns the shared service for the store at path, opening it on first use.
func Open(ctx context.Context, path string, opts ...Option) (*core.Service, error) {
	return platform.Open(ctx, path, opts...)
}

// New opens an unshared service. Most callers want Open.
func New(ctx context.Context, path string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, path, opts...)
}

// Init opens a repository explicitly.
func Init(ctx context.Context, path string, opts ...Option) (core.Repository, error) {
	return platform.Init(ctx, path, opts...)
}

// WatchSource exposes the store's change events for IDs matching pattern as a
// lifecycle.Source. The source stops when ctx is done or the store closes.
func WatchSource(ctx context.Context, svc *Service, pattern string) (lifecycle.Source, error) {
	events, err := svc.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return lifecycleadapter.NewSource(events), nil
}

// --- Typed Factories ---

// NewTypedRepository creates a type-safe wrapper around an existing repository.
func NewTypedRepository[T any](repo core.Repository) *typed.Repository[T] {
	return typed.NewRepository[T](repo)
}

// NewTypedService creates a type-safe wrapper around an existing service.
func NewTypedService[T any](svc *core.Service) *typed.Service[T] {
	return typed.NewService[T](svc)
}

// OpenTypedService simplifies creating a TypedService from a path.
func OpenTypedService[T any](ctx context.Context, path string, opts ...Option) (*typed.Service[T], error) {
	svc, err := Open(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewService[T](svc), nil
}

// --- Datasets ---

// NewDataset builds a dataset with a fresh ID and the current upload date.
func NewDataset(title, description, category string, year int, payload Payload) Dataset {
	return core.NewDataset(title, description, category, year, payload)
}

// NewID returns a fresh dataset ID with the given prefix ("id" when empty).
func NewID(prefix string) string {
	return core.NewID(prefix)
}

// Paginate returns the 1-based page of items.
func Paginate(items []Dataset, page, perPage int) []Dataset {
	return core.Paginate(items, page, perPage)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual path for the store based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// StoreDirName is the directory name of a project-local store.
const StoreDirName = platform.StoreDirName

// FindStoreRoot recursively looks upwards for a directory holding a .lintas store.
func FindStoreRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
