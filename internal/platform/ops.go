package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/lintas/pkg/adapters/leveldb"
	"github.com/aretw0/lintas/pkg/adapters/memory"
	"github.com/aretw0/lintas/pkg/core"
)

// Init builds the repository selected by the options and opens it.
// The uri argument is adapter-specific (a directory for "leveldb", ignored by "memory").
func Init(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	o := parseOptions(opts)

	if o.repository != nil {
		if err := o.repository.Initialize(ctx); err != nil {
			return nil, err
		}
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterLevelDB:
		repo = newLevelDB(uri, o)
	case AdapterMemory:
		repo = memory.NewRepository()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolvePath applies the dev sandbox rules to uri. It reports whether the
// sandbox was bypassed for a writable store.
func resolvePath(uri string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)

	// Safe unless explicitly disabled.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	return ResolveStorePath(uri, useTemp), IsDevRun() && bypassSafety && !isReadOnly
}

func newLevelDB(uri string, o *options) *leveldb.Repository {
	storeName, _ := o.config["store_name"].(string)
	version, _ := o.config["schema_version"].(int)
	readOnly, _ := o.config["read_only"].(bool)
	buffer, _ := o.config["event_buffer"].(int)

	path, unsafe := resolvePath(uri, o)
	if o.logger != nil {
		if path != uri {
			o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", path)
		}
		if unsafe {
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
		}
	}

	return leveldb.NewRepository(leveldb.Config{
		Path:          path,
		StoreName:     storeName,
		SchemaVersion: version,
		Migrations:    o.migrations,
		ReadOnly:      readOnly,
		EventBuffer:   buffer,
		Logger:        o.logger,
	})
}
