package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
)

// executeCommand runs the root command with args, capturing output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices swaps the injected services for the test's lifetime.
func withServices(t *testing.T, s Services) {
	t.Helper()

	old := Services{
		Sources:       sourceStore,
		Documents:     documentStore,
		Opportunities: opportunityStore,
		Subscribers:   subscriberStore,
		Config:        configStore,
		Crawler:       crawlerService,
		Ingestor:      ingestService,
		Retriever:     retrievalService,
		Scheduler:     schedulerService,
	}
	SetServices(s)
	t.Cleanup(func() {
		SetServices(old)
	})
}

// Test doubles for the driven and driving ports.

type fakeSourceStore struct {
	sources []domain.Source
	saved   []domain.Source
	deleted []string
	err     error
}

func (f *fakeSourceStore) Save(_ context.Context, source domain.Source) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, source)
	return nil
}

func (f *fakeSourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.sources {
		if f.sources[i].ID == id {
			return &f.sources[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSourceStore) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSourceStore) List(_ context.Context) ([]domain.Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sources, nil
}

type fakeDocumentStore struct {
	changes []domain.Change
	err     error
}

func (f *fakeDocumentStore) GetByURL(_ context.Context, _, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentStore) LatestVersion(_ context.Context, _ string) (*domain.Version, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentStore) CreateWithVersion(_ context.Context, _ *domain.Document, _ *domain.Version) error {
	return nil
}

func (f *fakeDocumentStore) AppendVersion(_ context.Context, _ *domain.Document, _ *domain.Version, _ *domain.Change) error {
	return nil
}

func (f *fakeDocumentStore) ListVersions(_ context.Context, _ string) ([]domain.Version, error) {
	return nil, nil
}

func (f *fakeDocumentStore) ListChanges(_ context.Context, limit int) ([]domain.Change, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.changes) {
		return f.changes[:limit], nil
	}
	return f.changes, nil
}

type fakeOpportunityStore struct {
	opps []domain.Opportunity
	err  error
}

func (f *fakeOpportunityStore) Save(_ context.Context, _ *domain.Opportunity) error {
	return f.err
}

func (f *fakeOpportunityStore) List(_ context.Context, limit int) ([]domain.Opportunity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.opps) {
		return f.opps[:limit], nil
	}
	return f.opps, nil
}

type fakeCrawler struct {
	results map[string][]domain.CrawlResult
	err     error
	fetched []string
}

func (f *fakeCrawler) Fetch(_ context.Context, source domain.Source) ([]domain.CrawlResult, error) {
	f.fetched = append(f.fetched, source.ID)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[source.ID], nil
}

type fakeIngestor struct {
	report driving.IngestReport
	err    error
	runs   int
}

func (f *fakeIngestor) Ingest(_ context.Context, _ string, _ []domain.CrawlResult) (driving.IngestReport, error) {
	f.runs++
	if f.err != nil {
		return driving.IngestReport{}, f.err
	}
	return f.report, nil
}

type fakeRetriever struct {
	results   []domain.RetrievedChunk
	err       error
	lastQuery string
	lastTopK  int
	lastURL   string
}

func (f *fakeRetriever) Query(_ context.Context, text string, topK int, filters domain.QueryFilters) ([]domain.RetrievedChunk, error) {
	f.lastQuery = text
	f.lastTopK = topK
	f.lastURL = filters.URL
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeConfigStore struct {
	values map[string]any
	path   string
	setErr error
}

func (f *fakeConfigStore) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeConfigStore) GetString(key string) string {
	if v, ok := f.values[key].(string); ok {
		return v
	}
	return ""
}

func (f *fakeConfigStore) GetInt(key string) int {
	if v, ok := f.values[key].(int64); ok {
		return int(v)
	}
	return 0
}

func (f *fakeConfigStore) GetFloat(key string) float64 {
	if v, ok := f.values[key].(float64); ok {
		return v
	}
	return 0
}

func (f *fakeConfigStore) GetBool(key string) bool {
	if v, ok := f.values[key].(bool); ok {
		return v
	}
	return false
}

func (f *fakeConfigStore) Set(key string, value any) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = map[string]any{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeConfigStore) Load() error { return nil }

func (f *fakeConfigStore) Path() string { return f.path }
