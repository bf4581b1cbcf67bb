package leveldb

import (
	"sort"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string   `json:"path"`
	StoreName     string   `json:"store_name"`
	SchemaVersion int      `json:"schema_version"`
	TargetVersion int      `json:"target_version"`
	Indexes       []string `json:"indexes"`
	ReadOnly      bool     `json:"read_only"`
	InMemory      bool     `json:"in_memory"`
	Open          bool     `json:"open"`
	Subscribers   int      `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := make([]string, 0, len(r.indexes))
	for idx := range r.indexes {
		indexes = append(indexes, string(idx))
	}
	sort.Strings(indexes)

	return RepositoryState{
		Path:          r.config.Path,
		StoreName:     r.config.StoreName,
		SchemaVersion: r.version,
		TargetVersion: r.config.SchemaVersion,
		Indexes:       indexes,
		ReadOnly:      r.config.ReadOnly,
		InMemory:      r.config.InMemory,
		Open:          r.db != nil && !r.closed,
		Subscribers:   r.events.Len(),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "leveldb-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
