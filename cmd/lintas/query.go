package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find datasets by title, description or category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, func(svc *lintas.Service) ([]lintas.Dataset, error) {
			return svc.Search(cmd.Context(), args[0])
		})
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category [name]",
	Short: "List datasets in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query(cmd, func(svc *lintas.Service) ([]lintas.Dataset, error) {
			return svc.GetByCategory(cmd.Context(), args[0])
		})
	},
}

var yearCmd = &cobra.Command{
	Use:   "year [year]",
	Short: "List datasets of a year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		return query(cmd, func(svc *lintas.Service) ([]lintas.Dataset, error) {
			return svc.GetByYear(cmd.Context(), year)
		})
	},
}

var (
	recentSince string
	recentUntil string
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List datasets uploaded in a time range",
	Long: `List datasets whose upload date falls in [--since, --until).
Both bounds are RFC 3339 timestamps and either may be omitted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseBound(recentSince)
		if err != nil {
			return err
		}
		to, err := parseBound(recentUntil)
		if err != nil {
			return err
		}
		return query(cmd, func(svc *lintas.Service) ([]lintas.Dataset, error) {
			return svc.GetByUploadDate(cmd.Context(), from, to)
		})
	},
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func query(cmd *cobra.Command, run func(*lintas.Service) ([]lintas.Dataset, error)) error {
	svc, err := openStore(cmd.Context(), readOnly())
	if err != nil {
		return err
	}
	defer svc.Close()

	ds, err := run(svc)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderDatasets(cmd.OutOrStdout(), ds)
}

func init() {
	rootCmd.AddCommand(searchCmd, categoryCmd, yearCmd, recentCmd)
	recentCmd.Flags().StringVar(&recentSince, "since", "", "Lower bound (inclusive), RFC 3339")
	recentCmd.Flags().StringVar(&recentUntil, "until", "", "Upper bound (exclusive), RFC 3339")
}
