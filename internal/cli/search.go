package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed chunks",
		Long:  "Runs a hybrid semantic and keyword search over the indexed chunks.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), strings.Join(args, " "), outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "Print results as JSON")

	return cmd
}

func runSearch(ctx context.Context, query string, outputJSON bool) error {
	app, err := BuildApp(ctx, false)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s (%.4f)\n", i+1, result.ChunkID, result.FinalScore)
		snippet := strings.TrimSpace(result.Text)
		if len(snippet) > 160 {
			snippet = snippet[:157] + "..."
		}
		fmt.Printf("   %s\n", snippet)
		fmt.Printf("   Document: %s\n", result.DocumentID)
		fmt.Printf("   Scores: semantic=%.4f keyword=%.4f fused=%.4f\n",
			result.SemanticScore, result.KeywordScore, result.FusedScore)
		if result.SiteContext != nil && result.SiteContext.SiteURL != "" {
			fmt.Printf("   Site: %s\n", result.SiteContext.SiteURL)
		}
		if len(result.RerankBoosts) > 0 {
			fmt.Printf("   Boosts: %+v\n", result.RerankBoosts)
		}
		if i < len(results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
