package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context(), readOnly())
		if err != nil {
			return err
		}
		defer svc.Close()

		state := svc.State()
		return render(cmd.OutOrStdout(), state, func(w io.Writer) error {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(state); err != nil {
				return fmt.Errorf("failed to encode state: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
