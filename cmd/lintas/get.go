package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context(), readOnly())
		if err != nil {
			return err
		}
		defer svc.Close()

		d, found, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read dataset: %w", err)
		}
		if !found {
			return fmt.Errorf("dataset %q not found", args[0])
		}
		return renderDataset(cmd.OutOrStdout(), d)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
