package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lintas",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lintas version %s\n", lintas.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
