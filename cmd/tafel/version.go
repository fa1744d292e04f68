package main

import (
	"fmt"

	"github.com/aretw0/tafel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tafel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tafel version %s\n", tafel.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
