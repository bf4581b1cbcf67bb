package platform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/lintas/pkg/adapters/leveldb"
	"github.com/aretw0/lintas/pkg/core"
)

// ErrOptionsConflict is returned by Open when the store is already open with
// different settings (read-only mode, collection, schema, event buffer).
// A directory holds one handle at a time, so the caller must Close it or use New.
var ErrOptionsConflict = errors.New("store already open with different options")

type entry struct {
	svc      *core.Service
	settings string
}

// registry memoizes open services by adapter and resolved location, so that
// concurrent and repeated opens of one store share a single handle.
var registry = struct {
	mu       sync.Mutex
	services map[string]entry
	group    singleflight.Group
}{services: make(map[string]entry)}

// Open returns the service for the store at uri, opening it on first use.
// Concurrent callers for the same store wait for one open and share its result.
// Closing the service evicts it, so a later Open reopens the store.
//
//	svc, err := lintas.Open(ctx, "./data", lintas.WithLogger(logger))
func Open(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	o := parseOptions(opts)
	if o.repository != nil {
		return New(ctx, uri, opts...)
	}

	key := storeKey(uri, o)
	want := settings(o)
	if e, ok := lookup(key); ok {
		return e.check(key, want)
	}

	v, err, _ := registry.group.Do(key, func() (interface{}, error) {
		if e, ok := lookup(key); ok {
			return e, nil
		}
		svc, err := New(ctx, uri, opts...)
		if err != nil {
			return nil, err
		}
		svc.OnClose(func() { evict(key, svc) })

		e := entry{svc: svc, settings: want}
		registry.mu.Lock()
		registry.services[key] = e
		registry.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	// Concurrent callers share one open, whichever options won the race.
	return v.(entry).check(key, want)
}

func (e entry) check(key, want string) (*core.Service, error) {
	if e.settings != want {
		return nil, fmt.Errorf("%w: %s is open with {%s}, requested {%s}", ErrOptionsConflict, key, e.settings, want)
	}
	return e.svc, nil
}

// New opens a fresh, unshared service. Most callers want Open.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	o := parseOptions(opts)
	return core.NewService(repo, o.logger), nil
}

func storeKey(uri string, o *options) string {
	if o.adapter != AdapterLevelDB {
		return o.adapter + ":" + uri
	}
	path, _ := resolvePath(uri, o)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return o.adapter + ":" + path
}

// settings fingerprints the options that shape an open handle.
// Defaults are filled in so that an explicit default equals an omitted one.
func settings(o *options) string {
	if o.adapter != AdapterLevelDB {
		return ""
	}
	storeName, _ := o.config["store_name"].(string)
	if storeName == "" {
		storeName = leveldb.DefaultStoreName
	}
	version, _ := o.config["schema_version"].(int)
	if version == 0 {
		version = leveldb.SchemaVersion
	}
	readOnly, _ := o.config["read_only"].(bool)
	buffer, _ := o.config["event_buffer"].(int)
	migrations := o.migrations
	if migrations == nil {
		migrations = leveldb.DefaultMigrations
	}
	return fmt.Sprintf("store=%s version=%d read_only=%t event_buffer=%d migrations=%v",
		storeName, version, readOnly, buffer, migrations)
}

func lookup(key string) (entry, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	e, ok := registry.services[key]
	return e, ok
}

func evict(key string, svc *core.Service) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.services[key].svc == svc {
		delete(registry.services, key)
	}
}
