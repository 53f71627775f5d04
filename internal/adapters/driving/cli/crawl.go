package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [source-id]",
	Short: "Crawl sources and ingest what they serve",
	Long: `Runs one crawl-and-ingest cycle.
If a source ID is provided, only that source is crawled.
Otherwise, every active source is crawled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if sourceStore == nil || crawlerService == nil || ingestService == nil {
		return errors.New("crawl services not configured")
	}

	ctx := context.Background()

	sources, err := crawlTargets(ctx, args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		cmd.Println("No active sources to crawl.")
		return nil
	}

	var total driving.IngestReport
	failed := 0
	for i := range sources {
		report, err := crawlOne(ctx, cmd, sources[i])
		if err != nil {
			failed++
			cmd.Printf("  %s: crawl failed: %v\n", sources[i].Name, err)
			continue
		}
		total.Ingested += report.Ingested
		total.Skipped += report.Skipped
		total.Errored += report.Errored
	}

	cmd.Println()
	cmd.Printf("Done: %d ingested, %d skipped, %d errored", total.Ingested, total.Skipped, total.Errored)
	if failed > 0 {
		cmd.Printf(", %d sources unreachable", failed)
	}
	cmd.Println()
	return nil
}

// crawlTargets resolves the positional argument to a source list: one
// named source, or every active one.
func crawlTargets(ctx context.Context, args []string) ([]domain.Source, error) {
	if len(args) > 0 {
		source, err := sourceStore.Get(ctx, args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load source %s: %w", args[0], err)
		}
		return []domain.Source{*source}, nil
	}

	all, err := sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	active := make([]domain.Source, 0, len(all))
	for _, source := range all {
		if source.Active {
			active = append(active, source)
		}
	}
	return active, nil
}

func crawlOne(ctx context.Context, cmd *cobra.Command, source domain.Source) (driving.IngestReport, error) {
	cmd.Printf("Crawling %s...\n", source.Name)

	results, err := crawlerService.Fetch(ctx, source)
	if err != nil {
		return driving.IngestReport{}, err
	}

	report, err := ingestService.Ingest(ctx, source.ID, results)
	if err != nil {
		return driving.IngestReport{}, err
	}

	cmd.Printf("  %s: %d pages, %d ingested, %d skipped, %d errored\n",
		source.Name, len(results), report.Ingested, report.Skipped, report.Errored)
	return report, nil
}
