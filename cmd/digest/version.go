package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/digest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of digest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "digest version %s\n", strings.TrimSpace(digest.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
