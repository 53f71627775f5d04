package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/storage/memory"
	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
)

// schedMockCrawler implements driven.Crawler.
type schedMockCrawler struct {
	mu      sync.Mutex
	fetched []string
	failFor map[string]error
	results []domain.CrawlResult
}

func (m *schedMockCrawler) Fetch(_ context.Context, source domain.Source) ([]domain.CrawlResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, source.ID)
	if err, ok := m.failFor[source.ID]; ok {
		return nil, err
	}
	return m.results, nil
}

func (m *schedMockCrawler) fetchedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}

// schedMockIngestor implements driving.Ingestor.
type schedMockIngestor struct {
	mu    sync.Mutex
	runs  int
	batch [][]domain.CrawlResult
	err   error
}

func (m *schedMockIngestor) Ingest(_ context.Context, _ string, results []domain.CrawlResult) (driving.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.batch = append(m.batch, results)
	if m.err != nil {
		return driving.IngestReport{}, m.err
	}
	return driving.IngestReport{Ingested: len(results)}, nil
}

func (m *schedMockIngestor) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

func schedSource(id string, active bool, schedule time.Duration) domain.Source {
	return domain.Source{
		ID:       id,
		Name:     "source " + id,
		URL:      "https://example.org/" + id,
		Schedule: schedule,
		Active:   active,
	}
}

func TestScheduler_RunDue_CrawlsActiveSources(t *testing.T) {
	ctx := context.Background()

	sources := memory.NewSourceStore()
	require.NoError(t, sources.Save(ctx, schedSource("a", true, time.Hour)))
	require.NoError(t, sources.Save(ctx, schedSource("b", true, time.Hour)))
	require.NoError(t, sources.Save(ctx, schedSource("inactive", false, time.Hour)))

	crawler := &schedMockCrawler{
		results: []domain.CrawlResult{{
			URL:         "https://example.org/a/page",
			FetchedAt:   time.Now().UTC().Format(time.RFC3339),
			ContentHash: "abc",
			RawText:     "grant text",
		}},
	}
	ingestor := &schedMockIngestor{}

	sched := NewScheduler(sources, crawler, ingestor, time.Minute)
	sched.runDue(ctx)

	fetched := crawler.fetchedIDs()
	assert.ElementsMatch(t, []string{"a", "b"}, fetched)
	assert.Equal(t, 2, ingestor.runCount())
}

func TestScheduler_RunDue_RespectsInterval(t *testing.T) {
	ctx := context.Background()

	sources := memory.NewSourceStore()
	require.NoError(t, sources.Save(ctx, schedSource("a", true, time.Hour)))

	crawler := &schedMockCrawler{}
	ingestor := &schedMockIngestor{}

	sched := NewScheduler(sources, crawler, ingestor, time.Minute)
	sched.runDue(ctx)
	sched.runDue(ctx)

	// Second pass inside the interval must not re-crawl.
	assert.Len(t, crawler.fetchedIDs(), 1)
}

func TestScheduler_RunDue_CrawlFailureIsSourceLocal(t *testing.T) {
	ctx := context.Background()

	sources := memory.NewSourceStore()
	require.NoError(t, sources.Save(ctx, schedSource("broken", true, time.Hour)))
	require.NoError(t, sources.Save(ctx, schedSource("healthy", true, time.Hour)))

	crawler := &schedMockCrawler{
		failFor: map[string]error{"broken": errors.New("connection refused")},
		results: []domain.CrawlResult{{
			URL:         "https://example.org/healthy/page",
			FetchedAt:   time.Now().UTC().Format(time.RFC3339),
			ContentHash: "def",
			RawText:     "text",
		}},
	}
	ingestor := &schedMockIngestor{}

	sched := NewScheduler(sources, crawler, ingestor, time.Minute)
	sched.runDue(ctx)

	assert.ElementsMatch(t, []string{"broken", "healthy"}, crawler.fetchedIDs())
	assert.Equal(t, 1, ingestor.runCount())
}

func TestScheduler_RunDue_IngestFailureDoesNotPanic(t *testing.T) {
	ctx := context.Background()

	sources := memory.NewSourceStore()
	require.NoError(t, sources.Save(ctx, schedSource("a", true, time.Hour)))

	crawler := &schedMockCrawler{}
	ingestor := &schedMockIngestor{err: errors.New("store unavailable")}

	sched := NewScheduler(sources, crawler, ingestor, time.Minute)
	sched.runDue(ctx)

	assert.Equal(t, 1, ingestor.runCount())
}

func TestScheduler_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sources := memory.NewSourceStore()
	crawler := &schedMockCrawler{}
	ingestor := &schedMockIngestor{}

	sched := NewScheduler(sources, crawler, ingestor, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- sched.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	sched.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	// Stop on a stopped scheduler is a no-op.
	sched.Stop()
}

func TestScheduler_StartHonoursContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sched := NewScheduler(memory.NewSourceStore(), &schedMockCrawler{}, &schedMockIngestor{}, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- sched.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancellation")
	}
}
