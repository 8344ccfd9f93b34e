package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ClearCmd creates the clear command.
func ClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every chunk from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd.Context())
		},
	}

	return cmd
}

func runClear(ctx context.Context) error {
	app, err := BuildApp(ctx, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Index.Clear(ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	fmt.Println("Index cleared.")
	return nil
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context())
		},
	}

	return cmd
}

func runStats(ctx context.Context) error {
	app, err := BuildApp(ctx, false)
	if err != nil {
		return err
	}
	defer app.Close()

	count, err := app.Index.Count(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	fmt.Printf("Backend: %s\n", app.Retrieval.Index.Backend)
	fmt.Printf("Chunks:  %d\n", count)
	return nil
}
