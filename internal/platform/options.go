package platform

import (
	"log/slog"

	"github.com/aretw0/lintas/pkg/adapters/leveldb"
	"github.com/aretw0/lintas/pkg/core"
)

// Adapter names.
const (
	AdapterLevelDB = "leveldb"
	AdapterMemory  = "memory"
)

// options holds the internal configuration for the dataset store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	migrations []leveldb.Migration
	config     map[string]interface{}
}

// Option defines a functional option for configuring the store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository: nil,
		logger:     nil,
		adapter:    AdapterLevelDB,
		config:     make(map[string]interface{}),
	}
}

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the named adapter is skipped and the handle is not memoized.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name ("leveldb" or "memory").
// Defaults to "leveldb".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithStoreName sets the name of the dataset collection.
// Defaults to "datasets".
func WithStoreName(name string) Option {
	return func(o *options) {
		o.config["store_name"] = name
	}
}

// WithSchemaVersion sets the schema version the store is upgraded to on open.
func WithSchemaVersion(version int) Option {
	return func(o *options) {
		o.config["schema_version"] = version
	}
}

// WithMigrations replaces the schema history used to upgrade the store.
func WithMigrations(migrations []leveldb.Migration) Option {
	return func(o *options) {
		o.migrations = migrations
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the store is re-rooted into a temporary directory unless the
// path already lives there.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithReadOnly opens the store read-only. Writes return core.ErrReadOnly and
// schema upgrades are refused. The dev sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithEventBuffer sets the per-subscriber buffer of Watch streams.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}
