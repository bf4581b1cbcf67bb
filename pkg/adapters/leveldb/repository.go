// Package leveldb implements core.Repository on top of goleveldb.
//
// Records live under rec/<store>/<id>. Secondary indexes are maintained as
// empty-valued keys under idx/<store>/<index>/. Every write runs in one
// goleveldb transaction, so a record and its index entries change together.
package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	levelDb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/aretw0/lintas/pkg/adapters/broker"
	"github.com/aretw0/lintas/pkg/core"
)

// DefaultStoreName is the name of the dataset collection.
const DefaultStoreName = "datasets"

// Config holds the configuration for the LevelDB repository.
type Config struct {
	Path          string
	StoreName     string      // collection name, defaults to "datasets"
	SchemaVersion int         // target schema version, defaults to SchemaVersion
	Migrations    []Migration // schema history, defaults to DefaultMigrations
	ReadOnly      bool
	InMemory      bool // back the store with goleveldb's memory storage (Path is ignored)
	EventBuffer   int
	Logger        *slog.Logger
}

// Repository implements core.Repository, core.Indexed and core.Watchable.
type Repository struct {
	config Config

	mu      sync.RWMutex // guards db, closed, version, indexes
	db      *levelDb.DB
	closed  bool
	version int
	indexes map[core.Index]bool

	events *broker.Broker
}

// NewRepository creates a repository. No I/O happens until Initialize.
func NewRepository(config Config) *Repository {
	if config.StoreName == "" {
		config.StoreName = DefaultStoreName
	}
	if config.SchemaVersion == 0 {
		config.SchemaVersion = SchemaVersion
	}
	if config.Migrations == nil {
		config.Migrations = DefaultMigrations
	}
	return &Repository{
		config:  config,
		indexes: make(map[core.Index]bool),
		events:  broker.New(config.EventBuffer, config.Logger),
	}
}

// Initialize opens the database and upgrades the schema to the configured
// version. Migration and version bump are committed in one transaction.
// Calling Initialize on an open repository is a no-op.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return core.Unavailable("open", levelDb.ErrClosed)
	}
	if r.db != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return core.Unavailable("open", err)
	}

	db, err := r.openDB()
	if err != nil {
		return core.Unavailable("open", err)
	}

	version, err := r.upgrade(db)
	if err != nil {
		_ = db.Close()
		return core.Unavailable("upgrade", err)
	}

	indexes, err := loadIndexes(db, r.config.StoreName)
	if err != nil {
		_ = db.Close()
		return core.Unavailable("open", err)
	}

	r.db = db
	r.version = version
	for _, idx := range indexes {
		r.indexes[idx] = true
	}
	r.debug("store opened", "path", r.config.Path, "version", version, "indexes", len(indexes))
	return nil
}

func (r *Repository) openDB() (*levelDb.DB, error) {
	o := &opt.Options{
		ReadOnly:       r.config.ReadOnly,
		ErrorIfMissing: r.config.ReadOnly,
	}
	if r.config.InMemory {
		return levelDb.Open(storage.NewMemStorage(), o)
	}
	if r.config.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	db, err := levelDb.OpenFile(r.config.Path, o)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", r.config.Path, err)
	}
	return db, nil
}

// upgrade brings the on-disk schema to the configured version.
func (r *Repository) upgrade(db *levelDb.DB) (int, error) {
	target := r.config.SchemaVersion
	current, err := readVersion(r.config.StoreName, func(k []byte) ([]byte, error) { return db.Get(k, nil) })
	if err != nil {
		return 0, err
	}
	if current > target {
		return 0, fmt.Errorf("%w: stored %d, requested %d", ErrVersionTooNew, current, target)
	}
	if current == target {
		return current, nil
	}
	if r.config.ReadOnly {
		return 0, fmt.Errorf("schema upgrade %d -> %d required but store is read-only", current, target)
	}

	tx, err := db.OpenTransaction()
	if err != nil {
		return 0, err
	}
	applied, err := migrate(tx, r.config.StoreName, current, target, r.config.Migrations)
	if err != nil {
		tx.Discard()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		tx.Discard()
		return 0, err
	}
	if r.config.Logger != nil {
		r.config.Logger.Info("schema migrated", "from", current, "to", target, "applied", applied)
	}
	return target, nil
}

// acquire returns the open database under a read lock. The caller must call
// release when done.
func (r *Repository) acquire(op string) (*levelDb.DB, func(), error) {
	r.mu.RLock()
	if r.closed || r.db == nil {
		r.mu.RUnlock()
		if r.closed {
			return nil, nil, core.Unavailable(op, levelDb.ErrClosed)
		}
		return nil, nil, core.Unavailable(op, errors.New("store not initialized"))
	}
	return r.db, r.mu.RUnlock, nil
}

// Put writes d and its index entries, replacing any prior record and its
// entries in the same transaction.
func (r *Repository) Put(ctx context.Context, d core.Dataset) error {
	if d.ID == "" {
		return core.ErrInvalidDataset
	}
	db, release, err := r.acquire("put")
	if err != nil {
		return err
	}
	defer release()

	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return core.TransactionFailed("put", d.ID, err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return core.TransactionFailed("put", d.ID, fmt.Errorf("failed to encode dataset: %w", err))
	}

	tx, err := db.OpenTransaction()
	if err != nil {
		return r.txError("put", d.ID, err)
	}
	if err := r.putTx(tx, d, data); err != nil {
		tx.Discard()
		return r.txError("put", d.ID, err)
	}
	if err := tx.Commit(); err != nil {
		tx.Discard()
		return r.txError("put", d.ID, err)
	}

	r.events.Publish(core.Event{Type: core.EventPut, ID: d.ID, Timestamp: time.Now().Unix()})
	return nil
}

func (r *Repository) putTx(tx *levelDb.Transaction, d core.Dataset, data []byte) error {
	store := r.config.StoreName
	key := recordKey(store, d.ID)

	if prior, found, err := getTx(tx, key); err != nil {
		return err
	} else if found {
		if err := r.deleteIndexEntries(tx, prior); err != nil {
			return err
		}
	}

	if err := tx.Put(key, data, nil); err != nil {
		return err
	}
	for idx := range r.indexes {
		if value, ok := indexValue(d, idx); ok {
			if err := tx.Put(indexKey(store, idx, value, d.ID), []byte{}, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Repository) deleteIndexEntries(tx *levelDb.Transaction, d core.Dataset) error {
	for idx := range r.indexes {
		if value, ok := indexValue(d, idx); ok {
			if err := tx.Delete(indexKey(r.config.StoreName, idx, value, d.ID), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func getTx(tx *levelDb.Transaction, key []byte) (core.Dataset, bool, error) {
	data, err := tx.Get(key, nil)
	if errors.Is(err, levelDb.ErrNotFound) {
		return core.Dataset{}, false, nil
	}
	if err != nil {
		return core.Dataset{}, false, err
	}
	var d core.Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return core.Dataset{}, false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return d, true, nil
}

// Get retrieves a dataset. It returns core.ErrNotFound when absent.
func (r *Repository) Get(ctx context.Context, id string) (core.Dataset, error) {
	db, release, err := r.acquire("get")
	if err != nil {
		return core.Dataset{}, err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return core.Dataset{}, core.TransactionFailed("get", id, err)
	}

	data, err := db.Get(recordKey(r.config.StoreName, id), nil)
	if errors.Is(err, levelDb.ErrNotFound) {
		return core.Dataset{}, core.ErrNotFound
	}
	if err != nil {
		return core.Dataset{}, r.txError("get", id, err)
	}

	var d core.Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return core.Dataset{}, core.TransactionFailed("get", id, fmt.Errorf("failed to decode dataset: %w", err))
	}
	return d, nil
}

// List returns every dataset in key order.
func (r *Repository) List(ctx context.Context) ([]core.Dataset, error) {
	db, release, err := r.acquire("list")
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, core.TransactionFailed("list", "", err)
	}

	iter := db.NewIterator(util.BytesPrefix(recordPrefix(r.config.StoreName)), nil)
	defer iter.Release()

	var out []core.Dataset
	for iter.Next() {
		var d core.Dataset
		if err := json.Unmarshal(iter.Value(), &d); err != nil {
			return nil, core.TransactionFailed("list", string(iter.Key()), fmt.Errorf("failed to decode dataset: %w", err))
		}
		out = append(out, d)
	}
	if err := iter.Error(); err != nil {
		return nil, r.txError("list", "", err)
	}
	return out, nil
}

// Delete removes a dataset and its index entries. Missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, id string) error {
	db, release, err := r.acquire("delete")
	if err != nil {
		return err
	}
	defer release()

	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return core.TransactionFailed("delete", id, err)
	}

	tx, err := db.OpenTransaction()
	if err != nil {
		return r.txError("delete", id, err)
	}

	key := recordKey(r.config.StoreName, id)
	prior, found, err := getTx(tx, key)
	if err != nil {
		tx.Discard()
		return r.txError("delete", id, err)
	}
	if !found {
		tx.Discard()
		return nil
	}

	if err := r.deleteIndexEntries(tx, prior); err != nil {
		tx.Discard()
		return r.txError("delete", id, err)
	}
	if err := tx.Delete(key, nil); err != nil {
		tx.Discard()
		return r.txError("delete", id, err)
	}
	if err := tx.Commit(); err != nil {
		tx.Discard()
		return r.txError("delete", id, err)
	}

	r.events.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	return nil
}

// ListByCategory returns the datasets whose category equals category.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]core.Dataset, error) {
	return r.listByIndex(ctx, core.IndexCategory, category,
		func(d core.Dataset) bool { return d.Category == category })
}

// ListByYear returns the datasets whose year equals year.
func (r *Repository) ListByYear(ctx context.Context, year int) ([]core.Dataset, error) {
	return r.listByIndex(ctx, core.IndexYear, encodeYear(year),
		func(d core.Dataset) bool { return d.Year == year })
}

// ListByUploadDate returns datasets with from <= upload_date < to, oldest first.
func (r *Repository) ListByUploadDate(ctx context.Context, from, to time.Time) ([]core.Dataset, error) {
	prefix := indexPrefix(r.config.StoreName, core.IndexUploadDate)
	rng := util.BytesPrefix(prefix)
	if !from.IsZero() {
		rng.Start = append(append([]byte(nil), prefix...), encodeUploadDate(from)...)
	}
	if !to.IsZero() {
		rng.Limit = append(append([]byte(nil), prefix...), encodeUploadDate(to)...)
	}

	return r.scanIndex(ctx, "list-by-upload-date", core.IndexUploadDate, rng, func(all []core.Dataset) []core.Dataset {
		out := core.Filter(all, core.InUploadRange(from, to))
		core.SortByUploadDate(out)
		return out
	})
}

func (r *Repository) listByIndex(ctx context.Context, idx core.Index, value string, match func(core.Dataset) bool) ([]core.Dataset, error) {
	rng := util.BytesPrefix(indexValuePrefix(r.config.StoreName, idx, value))
	return r.scanIndex(ctx, "list-by-"+string(idx), idx, rng, func(all []core.Dataset) []core.Dataset {
		return core.Filter(all, match)
	})
}

// scanIndex reads the records referenced by index entries in rng from one
// snapshot. When idx is not live it falls back to fallback over a full scan.
func (r *Repository) scanIndex(ctx context.Context, op string, idx core.Index, rng *util.Range, fallback func([]core.Dataset) []core.Dataset) ([]core.Dataset, error) {
	r.mu.RLock()
	live := r.indexes[idx]
	r.mu.RUnlock()
	if !live {
		all, err := r.List(ctx)
		if err != nil {
			return nil, err
		}
		return fallback(all), nil
	}

	db, release, err := r.acquire(op)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, core.TransactionFailed(op, "", err)
	}

	snap, err := db.GetSnapshot()
	if err != nil {
		return nil, r.txError(op, "", err)
	}
	defer snap.Release()

	iter := snap.NewIterator(rng, nil)
	var ids []string
	for iter.Next() {
		ids = append(ids, idFromIndexKey(iter.Key()))
	}
	err = iter.Error()
	iter.Release()
	if err != nil {
		return nil, r.txError(op, "", err)
	}

	out := make([]core.Dataset, 0, len(ids))
	for _, id := range ids {
		data, err := snap.Get(recordKey(r.config.StoreName, id), nil)
		if errors.Is(err, levelDb.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, r.txError(op, id, err)
		}
		var d core.Dataset
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, core.TransactionFailed(op, id, fmt.Errorf("failed to decode dataset: %w", err))
		}
		out = append(out, d)
	}
	return out, nil
}

// Watch streams committed changes for IDs matching pattern.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	_, release, err := r.acquire("watch")
	if err != nil {
		return nil, err
	}
	release()
	return r.events.Subscribe(ctx, pattern)
}

// Version returns the schema version of the open store.
func (r *Repository) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Close releases the database. Later operations fail with core.ErrStorageUnavailable.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.events.Close()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.debug("store closed", "path", r.config.Path)
	return err
}

// txError classifies a goleveldb error. A closed database means the medium is
// gone; everything else is a failed transaction.
func (r *Repository) txError(op, id string, err error) error {
	if r.config.Logger != nil {
		r.config.Logger.Error("transaction failed", "op", op, "id", id, "error", err)
	}
	if errors.Is(err, levelDb.ErrClosed) {
		return &core.StorageError{Kind: core.KindUnavailable, Op: op, ID: id, Err: err}
	}
	return core.TransactionFailed(op, id, err)
}

func (r *Repository) debug(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, args...)
	}
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Indexed    = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
