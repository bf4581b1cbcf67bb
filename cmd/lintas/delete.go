package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a dataset",
	Long:  `Delete a dataset by its ID. Deleting an ID that does not exist succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete dataset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset '%s' deleted.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
