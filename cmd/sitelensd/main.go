package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitelensd",
		Short: "Sitelens daemon",
		Long:  "Sitelens daemon for serving the retrieval API and the background rescan worker",
	}

	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
