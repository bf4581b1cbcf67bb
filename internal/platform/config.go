package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aretw0/lintas/pkg/adapters/leveldb"
)

// EnvPrefix is the prefix of environment overrides (LINTAS_STORE_PATH -> store.path).
const EnvPrefix = "LINTAS_"

// DefaultConfigFile is read from the working directory when no file is given.
const DefaultConfigFile = "lintas.yaml"

// Config is the application configuration.
type Config struct {
	Store StoreConfig `koanf:"store"`
	UI    UIConfig    `koanf:"ui"`
	App   AppConfig   `koanf:"app"`
}

// StoreConfig locates and shapes the dataset store.
type StoreConfig struct {
	Name        string `koanf:"name"`
	Collection  string `koanf:"collection"`
	Version     int    `koanf:"version"`
	Adapter     string `koanf:"adapter"`
	Path        string `koanf:"path"`
	ReadOnly    bool   `koanf:"read_only"`
	DevSafety   bool   `koanf:"dev_safety"`
	EventBuffer int    `koanf:"event_buffer"`
}

type UIConfig struct {
	ItemsPerPage    int    `koanf:"items_per_page"`
	DefaultCategory string `koanf:"default_category"`
}

type AppConfig struct {
	Name    string `koanf:"name"`
	DevMode bool   `koanf:"dev_mode"`
}

// DefaultStorePath is where a named store lives when no path is configured.
func DefaultStorePath(name string) string {
	return filepath.Join(xdg.DataHome, "lintas", name)
}

func defaults() map[string]interface{} {
	const name = "PaLintaSanDB"
	return map[string]interface{}{
		"store.name":          name,
		"store.collection":    leveldb.DefaultStoreName,
		"store.version":       leveldb.SchemaVersion,
		"store.adapter":       AdapterLevelDB,
		"store.path":          "",
		"store.read_only":     false,
		"store.dev_safety":    true,
		"store.event_buffer":  0,
		"ui.items_per_page":   10,
		"ui.default_category": "Lalu Lintas",
		"app.name":            "Pa'lintasang Data",
		"app.dev_mode":        false,
	}
}

// LoadConfig merges defaults, the YAML file at path and LINTAS_* environment
// variables, later layers winning. An empty path falls back to
// DefaultConfigFile when it exists. An unset store.path resolves to the
// nearest .lintas store above the working directory, else DefaultStorePath.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// Only the first underscore separates section from key: LINTAS_UI_ITEMS_PER_PAGE -> ui.items_per_page.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultPath(cfg.Store.Name)
	}
	if cfg.UI.ItemsPerPage <= 0 {
		return nil, fmt.Errorf("ui.items_per_page must be positive, got %d", cfg.UI.ItemsPerPage)
	}
	return &cfg, nil
}

// Options translates the store section into open options.
func (c *Config) Options() []Option {
	return []Option{
		WithAdapter(c.Store.Adapter),
		WithStoreName(c.Store.Collection),
		WithSchemaVersion(c.Store.Version),
		WithReadOnly(c.Store.ReadOnly),
		WithDevSafety(c.Store.DevSafety),
		WithEventBuffer(c.Store.EventBuffer),
	}
}
