package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a project-local store",
	Long: `Create a .lintas store in dir (default: the current directory).
Commands run from dir or any directory below it use this store unless
--db or store.path says otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		path := filepath.Join(dir, lintas.StoreDirName)

		opts := append(cfg.Options(),
			lintas.WithAdapter(lintas.AdapterLevelDB),
			lintas.WithReadOnly(false),
			lintas.WithLogger(slog.Default()),
		)
		svc, err := lintas.New(cmd.Context(), path, opts...)
		if err != nil {
			return fmt.Errorf("failed to create store at %s: %w", path, err)
		}
		if err := svc.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized store in %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
