package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest all configured sources",
		Long:  "Scans every configured source, chunks and embeds the documents and writes them to the index.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context())
		},
	}

	return cmd
}

func runIngest(ctx context.Context) error {
	app, err := BuildApp(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Ingest.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for _, dr := range report.Documents {
		if dr.Err != nil {
			fmt.Printf("FAIL %s: %v\n", dr.Path, dr.Err)
			continue
		}
		linked := ""
		if dr.Linked {
			linked = " (site-linked)"
		}
		fmt.Printf("ok   %s: %d chunks%s\n", dr.Path, dr.Chunks, linked)
	}

	fmt.Printf("\n%d documents indexed, %d failed, %d chunks total\n",
		report.Succeeded, report.Failed, report.Chunks)

	if report.Failed > 0 {
		return fmt.Errorf("%d documents failed to ingest", report.Failed)
	}
	return nil
}
