package services

import (
	"context"
	"sync"
	"time"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

// DefaultSchedule is the crawl interval used when a source does not
// set one of its own.
const DefaultSchedule = 6 * time.Hour

// Scheduler runs the crawl-then-ingest cycle for every active source
// on its configured interval. One pipeline instance runs one cycle at
// a time per source.
type Scheduler struct {
	sourceStore driven.SourceStore
	crawler     driven.Crawler
	ingestor    driving.Ingestor
	tick        time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	lastRun map[string]time.Time
}

// NewScheduler creates a scheduler. The tick is how often due sources
// are checked, not how often they are crawled.
func NewScheduler(sourceStore driven.SourceStore, crawler driven.Crawler, ingestor driving.Ingestor, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{
		sourceStore: sourceStore,
		crawler:     crawler,
		ingestor:    ingestor,
		tick:        tick,
		lastRun:     make(map[string]time.Time),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("Scheduler started, checking sources every %s", s.tick)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	// First pass immediately so a fresh start does not wait a full tick.
	s.runDue(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for the cycle in
// flight to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// runDue crawls and ingests every active source whose interval has
// elapsed. Failures are source-local: one broken site never stops the
// others from being checked.
func (s *Scheduler) runDue(ctx context.Context) {
	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		logger.Error("Listing sources failed: %v", err)
		return
	}

	for _, source := range sources {
		if !source.Active || !s.due(source) {
			continue
		}
		s.wg.Add(1)
		s.runOne(ctx, source)
		s.wg.Done()
	}
}

func (s *Scheduler) due(source domain.Source) bool {
	schedule := source.Schedule
	if schedule <= 0 {
		schedule = DefaultSchedule
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastRun[source.ID]
	if ok && time.Since(last) < schedule {
		return false
	}
	s.lastRun[source.ID] = time.Now()
	return true
}

// runOne executes one crawl-then-ingest cycle for a source.
func (s *Scheduler) runOne(ctx context.Context, source domain.Source) {
	logger.Section("Crawl cycle: " + source.Name)

	results, err := s.crawler.Fetch(ctx, source)
	if err != nil {
		logger.Error("Crawl failed for %s (%s): %v", source.Name, source.URL, err)
		return
	}

	report, err := s.ingestor.Ingest(ctx, source.ID, results)
	if err != nil {
		logger.Error("Ingest run failed for %s: %v", source.Name, err)
		return
	}
	logger.Info("Source %s: %d ingested, %d skipped, %d errored",
		source.Name, report.Ingested, report.Skipped, report.Errored)
}
