package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
	"github.com/aretw0/lintas/pkg/core"
)

var (
	listPage    int
	listPerPage int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context(), readOnly())
		if err != nil {
			return err
		}
		defer svc.Close()

		all, err := svc.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list datasets: %w", err)
		}
		return renderDatasets(cmd.OutOrStdout(), page(all))
	},
}

// page sorts newest first and applies --page/--per-page.
func page(ds []lintas.Dataset) []lintas.Dataset {
	core.SortByUploadDate(ds)
	for i, j := 0, len(ds)-1; i < j; i, j = i+1, j-1 {
		ds[i], ds[j] = ds[j], ds[i]
	}
	perPage := listPerPage
	if perPage <= 0 {
		perPage = cfg.UI.ItemsPerPage
	}
	return lintas.Paginate(ds, listPage, perPage)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listPage, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&listPerPage, "per-page", 0, "Items per page (default from ui.items_per_page)")
}

func init() {
	rootCmd.AddCommand(listCmd)
	addPageFlags(listCmd)
}
