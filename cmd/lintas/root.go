package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var (
	verbose    bool
	dbPath     string
	adapter    string
	configPath string
	asJSON     bool
	asYAML     bool

	cfg *lintas.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lintas",
	Short: "A local, durable store for traffic datasets",
	Long: `lintas keeps uploaded traffic datasets on this machine.
Datasets survive restarts and can be looked up by ID, searched, and
filtered by category, year or upload date.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		loaded, err := lintas.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.Store.Path = dbPath
		}
		if adapter != "" {
			loaded.Store.Adapter = adapter
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Store directory (default: nearest .lintas above the working directory, else $XDG_DATA_HOME/lintas/<store.name>)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: leveldb or memory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./lintas.yaml)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&asYAML, "yaml", false, "Output in YAML format (ignored with --json)")
}

// openStore opens the configured store. The caller closes it.
func openStore(ctx context.Context, extra ...lintas.Option) (*lintas.Service, error) {
	opts := append(cfg.Options(), lintas.WithLogger(slog.Default()))
	opts = append(opts, extra...)

	svc, err := lintas.Open(ctx, cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Store.Path, err)
	}
	return svc, nil
}

// readOnly opens the store without write access when it already exists.
func readOnly() lintas.Option {
	if cfg.Store.Adapter == lintas.AdapterMemory {
		return lintas.WithReadOnly(false)
	}
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		return lintas.WithReadOnly(false)
	}
	return lintas.WithReadOnly(true)
}
