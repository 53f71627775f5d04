// Command grantwatch monitors regulator and funding sites: it crawls
// them on a schedule, versions every page, summarises meaningful
// changes, extracts opportunities, and serves semantic search over the
// collected content.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/ai"
	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/config/file"
	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/crawl"
	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/extract"
	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/vector/memory"
	"github.com/grantwatch/grantwatch-cli/internal/adapters/driving/cli"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/core/services"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
	"github.com/grantwatch/grantwatch-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env may carry API keys; absence is fine.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	crawler := crawl.NewCrawler(crawl.Config{
		UserAgent:         configStore.GetString("crawler.user_agent"),
		MaxPages:          configStore.GetInt("crawler.max_pages"),
		RequestsPerSecond: configStore.GetFloat("crawler.rate"),
	})

	// AI services are optional: without them the pipeline still crawls,
	// versions and deduplicates, it just records changes unsummarised
	// and answers no semantic queries.
	embedder, err := ai.CreateEmbeddingService(configStore)
	if err != nil {
		logger.Warn("Embedding disabled: %v", err)
	}
	llm, err := ai.CreateLLMService(configStore)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}
	if llm != nil {
		defer llm.Close()
	}

	var summarizer driven.ChangeSummarizer
	var extractor driven.OpportunityExtractor
	if llm != nil {
		s, err := extract.NewSummarizer(llm)
		if err != nil {
			return fmt.Errorf("create summarizer: %w", err)
		}
		summarizer = s

		e, err := extract.NewExtractor(llm)
		if err != nil {
			return fmt.Errorf("create extractor: %w", err)
		}
		extractor = e
	}

	var dedupeOpts []services.DeduperOption
	if threshold, ok := configStore.Get("dedupe.hamming_threshold"); ok {
		if t, ok := threshold.(int64); ok {
			dedupeOpts = append(dedupeOpts, services.WithHammingThreshold(int(t)))
		}
	}
	deduper, err := services.NewDeduper(store.FingerprintStore(), dedupeOpts...)
	if err != nil {
		return fmt.Errorf("create deduper: %w", err)
	}

	var chunkOpts []chunker.Option
	if size := configStore.GetInt("chunker.size"); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(size))
	}
	if overlap := configStore.GetInt("chunker.overlap"); overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(overlap))
	}
	chunks, err := chunker.New(chunkOpts...)
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	retrieval := services.NewRetrievalStore(embedder, vectormem.NewIndex())

	orchestrator, err := services.NewIngestOrchestrator(
		deduper,
		store.DocumentStore(),
		store.OpportunityStore(),
		chunks,
		retrieval,
		summarizer,
		extractor,
	)
	if err != nil {
		return fmt.Errorf("create ingestion pipeline: %w", err)
	}

	scheduler := services.NewScheduler(store.SourceStore(), crawler, orchestrator, time.Minute)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Sources:       store.SourceStore(),
		Documents:     store.DocumentStore(),
		Opportunities: store.OpportunityStore(),
		Subscribers:   store.SubscriberStore(),
		Config:        configStore,
		Crawler:       crawler,
		Ingestor:      orchestrator,
		Retriever:     retrieval,
		Scheduler:     scheduler,
	})
	return cli.Execute()
}
