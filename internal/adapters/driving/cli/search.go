package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchURL   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the collected content",
	Long: `Answers a semantic query against everything ingested so far.
Results are passages ranked by relevance, each citing the page and
section they came from.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchURL, "url", "", "restrict results to one document URL")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	filters := domain.QueryFilters{URL: searchURL}
	results, err := retrievalService.Query(context.Background(), args[0], searchLimit, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		chunk := results[i].Chunk

		title := chunk.Title
		if title == "" {
			title = chunk.URL
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if chunk.Heading != "" {
			cmd.Printf("      Section: %s\n", chunk.Heading)
		}
		cmd.Printf("      %s\n", chunk.URL)
		if snippet := makeSnippet(chunk.Text); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

// makeSnippet collapses whitespace and caps the preview length.
func makeSnippet(text string) string {
	const maxSnippet = 160
	snippet := strings.Join(strings.Fields(text), " ")
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet] + "..."
	}
	return snippet
}
