package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	levelDb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/aretw0/lintas/pkg/core"
)

// SchemaVersion is the schema version this package writes by default.
const SchemaVersion = 1

// Migration describes the structural changes that bring the schema to Version.
// Migrations only touch index entries; records are never removed.
type Migration struct {
	Version       int
	CreateIndexes []core.Index
	DropIndexes   []core.Index
}

// DefaultMigrations is the schema history of the dataset collection.
var DefaultMigrations = []Migration{
	{
		Version:       1,
		CreateIndexes: []core.Index{core.IndexCategory, core.IndexYear, core.IndexUploadDate},
	},
}

// indexDef is the persisted definition of a live index.
type indexDef struct {
	Name    core.Index `json:"name"`
	Unique  bool       `json:"unique"`
	Version int        `json:"version"`
}

// ErrVersionTooNew is wrapped when the stored schema is newer than the requested one.
var ErrVersionTooNew = errors.New("stored schema version is newer than requested")

// readVersion returns the stored schema version of store, 0 for a fresh store.
func readVersion(store string, get func(key []byte) ([]byte, error)) (int, error) {
	data, err := get(metaVersionKey(store))
	if errors.Is(err, levelDb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q: %w", data, err)
	}
	return v, nil
}

// migrate applies every migration in (current, target] inside tx and records
// target as the new version. The caller commits or discards tx.
func migrate(tx *levelDb.Transaction, store string, current, target int, migrations []Migration) ([]int, error) {
	if current > target {
		return nil, fmt.Errorf("%w: stored %d, requested %d", ErrVersionTooNew, current, target)
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if m.Version > current && m.Version <= target {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	applied := make([]int, 0, len(pending))
	for _, m := range pending {
		for _, idx := range m.DropIndexes {
			if err := dropIndex(tx, store, idx); err != nil {
				return nil, fmt.Errorf("migration %d: drop index %s: %w", m.Version, idx, err)
			}
		}
		for _, idx := range m.CreateIndexes {
			if err := createIndex(tx, store, idx, m.Version); err != nil {
				return nil, fmt.Errorf("migration %d: create index %s: %w", m.Version, idx, err)
			}
		}
		applied = append(applied, m.Version)
	}

	if err := tx.Put(metaVersionKey(store), []byte(strconv.Itoa(target)), nil); err != nil {
		return nil, err
	}
	return applied, nil
}

// createIndex registers idx and backfills entries for existing records.
// An index that already exists is left untouched.
func createIndex(tx *levelDb.Transaction, store string, idx core.Index, version int) error {
	key := metaIndexKey(store, idx)
	if ok, err := tx.Has(key, nil); err != nil {
		return err
	} else if ok {
		return nil
	}

	def, err := json.Marshal(indexDef{Name: idx, Version: version})
	if err != nil {
		return err
	}
	if err := tx.Put(key, def, nil); err != nil {
		return err
	}

	iter := tx.NewIterator(util.BytesPrefix(recordPrefix(store)), nil)
	defer iter.Release()

	var entries [][]byte
	for iter.Next() {
		var d core.Dataset
		if err := json.Unmarshal(iter.Value(), &d); err != nil {
			return fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		if value, ok := indexValue(d, idx); ok {
			entries = append(entries, indexKey(store, idx, value, d.ID))
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	for _, k := range entries {
		if err := tx.Put(k, []byte{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// dropIndex removes the definition and all entries of idx.
func dropIndex(tx *levelDb.Transaction, store string, idx core.Index) error {
	iter := tx.NewIterator(util.BytesPrefix(indexPrefix(store, idx)), nil)
	var keys [][]byte
	for iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	err := iter.Error()
	iter.Release()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := tx.Delete(k, nil); err != nil {
			return err
		}
	}
	return tx.Delete(metaIndexKey(store, idx), nil)
}

// loadIndexes lists the live indexes of store.
func loadIndexes(db *levelDb.DB, store string) ([]core.Index, error) {
	iter := db.NewIterator(util.BytesPrefix(metaIndexPrefix(store)), nil)
	defer iter.Release()

	var out []core.Index
	for iter.Next() {
		var def indexDef
		if err := json.Unmarshal(iter.Value(), &def); err != nil {
			return nil, fmt.Errorf("corrupt index definition %s: %w", iter.Key(), err)
		}
		out = append(out, def.Name)
	}
	return out, iter.Error()
}
