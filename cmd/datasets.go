package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the supported source families",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range dataset.NewRegistry().Names() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
