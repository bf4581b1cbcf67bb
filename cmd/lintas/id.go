package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var idPrefix string

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Generate a dataset ID",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), lintas.NewID(idPrefix))
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
	idCmd.Flags().StringVar(&idPrefix, "prefix", "id", "ID prefix")
}
