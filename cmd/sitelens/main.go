package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitelens",
		Short: "Sitelens retrieval CLI",
		Long:  "Sitelens CLI for ingesting documents and searching the hybrid index",
	}

	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.SearchCmd())
	rootCmd.AddCommand(cli.ClearCmd())
	rootCmd.AddCommand(cli.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
