package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/grantwatch/grantwatch-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.grantwatch/data/grantwatch.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".grantwatch", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "grantwatch.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// OpportunityStore returns an OpportunityStore interface backed by this store.
func (s *Store) OpportunityStore() driven.OpportunityStore {
	return &opportunityStore{store: s}
}

// SubscriberStore returns a SubscriberStore interface backed by this store.
func (s *Store) SubscriberStore() driven.SubscriberStore {
	return &subscriberStore{store: s}
}

// FingerprintStore returns a FingerprintStore interface backed by this
// store. Unlike the in-memory default, fingerprints recorded here
// survive process restarts, so dedup spans crawl cycles.
func (s *Store) FingerprintStore() driven.FingerprintStore {
	return &fingerprintStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, url, schedule_seconds, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			schedule_seconds = excluded.schedule_seconds,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, source.ID, source.Name, source.URL, int64(source.Schedule/time.Second),
		source.Active, source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, url, schedule_seconds, active, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	return scanSource(row)
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, url, schedule_seconds, active, created_at, updated_at
		FROM sources ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		var source domain.Source
		var scheduleSeconds int64
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&source.ID, &source.Name, &source.URL, &scheduleSeconds,
			&source.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		source.Schedule = time.Duration(scheduleSeconds) * time.Second
		if createdAt.Valid {
			source.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			source.UpdatedAt = updatedAt.Time
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// scanSource scans a single source row.
func scanSource(row *sql.Row) (*domain.Source, error) {
	var source domain.Source
	var scheduleSeconds int64
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&source.ID, &source.Name, &source.URL, &scheduleSeconds,
		&source.Active, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	source.Schedule = time.Duration(scheduleSeconds) * time.Second
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		source.UpdatedAt = updatedAt.Time
	}
	return &source, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore. The grouped writes
// (CreateWithVersion, AppendVersion) run in one transaction each, so a
// failed document never leaves a version without its parent or a
// change record without its version.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// GetByURL retrieves a document by (source, canonical URL) identity.
func (s *documentStore) GetByURL(ctx context.Context, sourceID, url string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, url, title, fetched_at, content_hash, mime, created_at, updated_at
		FROM documents WHERE source_id = ? AND url = ?
	`, sourceID, url)

	var doc domain.Document
	var fetchedAt, createdAt, updatedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.SourceID, &doc.URL, &doc.Title,
		&fetchedAt, &doc.ContentHash, &doc.MIME, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if fetchedAt.Valid {
		doc.FetchedAt = fetchedAt.Time
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// LatestVersion returns the version with the highest number.
func (s *documentStore) LatestVersion(ctx context.Context, documentID string) (*domain.Version, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, number, text, created_at
		FROM doc_versions WHERE document_id = ?
		ORDER BY number DESC LIMIT 1
	`, documentID)

	var v domain.Version
	var createdAt sql.NullTime
	if err := row.Scan(&v.ID, &v.DocumentID, &v.Number, &v.Text, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	if createdAt.Valid {
		v.CreatedAt = createdAt.Time
	}
	return &v, nil
}

// CreateWithVersion atomically inserts a new document with version 1.
func (s *documentStore) CreateWithVersion(ctx context.Context, doc *domain.Document, version *domain.Version) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, source_id, url, title, fetched_at, content_hash, mime, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.SourceID, doc.URL, doc.Title, doc.FetchedAt,
		doc.ContentHash, doc.MIME, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AppendVersion atomically appends a version, updates the parent
// document's fetch metadata and records the change when one is given.
func (s *documentStore) AppendVersion(ctx context.Context, doc *domain.Document, version *domain.Version, change *domain.Change) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, fetched_at = ?, content_hash = ?, mime = ?, updated_at = ?
		WHERE id = ?
	`, doc.Title, doc.FetchedAt, doc.ContentHash, doc.MIME, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := insertVersion(ctx, tx, version); err != nil {
		return err
	}

	if change != nil {
		summaryJSON, err := json.Marshal(change.Summary)
		if err != nil {
			return fmt.Errorf("marshalling change summary: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO changes (id, document_id, old_version, new_version, summary, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, change.ID, change.DocumentID, change.OldVersion, change.NewVersion,
			string(summaryJSON), change.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListVersions returns all versions for a document, oldest first.
func (s *documentStore) ListVersions(ctx context.Context, documentID string) ([]domain.Version, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, number, text, created_at
		FROM doc_versions WHERE document_id = ?
		ORDER BY number
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.Version //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v domain.Version
		var createdAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Number, &v.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		if createdAt.Valid {
			v.CreatedAt = createdAt.Time
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}

	return versions, nil
}

// ListChanges returns change records, newest first, up to limit.
func (s *documentStore) ListChanges(ctx context.Context, limit int) ([]domain.Change, error) {
	query := `
		SELECT id, document_id, old_version, new_version, summary, created_at
		FROM changes ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.Change //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Change
		var summaryJSON string
		var createdAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.OldVersion, &c.NewVersion,
			&summaryJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		if summaryJSON != "" {
			if err := json.Unmarshal([]byte(summaryJSON), &c.Summary); err != nil {
				return nil, fmt.Errorf("unmarshalling change summary: %w", err)
			}
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating changes: %w", err)
	}

	return changes, nil
}

// insertVersion inserts one immutable version row inside a transaction.
func insertVersion(ctx context.Context, tx *sql.Tx, version *domain.Version) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO doc_versions (id, document_id, number, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, version.ID, version.DocumentID, version.Number, version.Text, version.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}
	return nil
}

// ==================== Opportunity Store ====================

// opportunityStore implements driven.OpportunityStore.
type opportunityStore struct {
	store *Store
}

var _ driven.OpportunityStore = (*opportunityStore)(nil)

// Save stores an opportunity.
func (s *opportunityStore) Save(ctx context.Context, opp *domain.Opportunity) error {
	if opp.ID == "" {
		return domain.ErrInvalidInput
	}

	var deadline any
	if opp.Deadline != nil {
		deadline = *opp.Deadline
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO opportunities
			(id, document_id, title, agency, url, deadline, eligibility, amount, action, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			agency = excluded.agency,
			url = excluded.url,
			deadline = excluded.deadline,
			eligibility = excluded.eligibility,
			amount = excluded.amount,
			action = excluded.action,
			score = excluded.score
	`, opp.ID, opp.DocumentID, opp.Title, opp.Agency, opp.URL, deadline,
		opp.Eligibility, opp.Amount, opp.Action, opp.Score, opp.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving opportunity: %w", err)
	}
	return nil
}

// List returns opportunities, newest first, up to limit.
func (s *opportunityStore) List(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT id, document_id, title, agency, url, deadline, eligibility, amount, action, score, created_at
		FROM opportunities ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity //nolint:prealloc // size unknown from query
	for rows.Next() {
		var opp domain.Opportunity
		var deadline, createdAt sql.NullTime
		if err := rows.Scan(&opp.ID, &opp.DocumentID, &opp.Title, &opp.Agency, &opp.URL,
			&deadline, &opp.Eligibility, &opp.Amount, &opp.Action, &opp.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		if deadline.Valid {
			d := deadline.Time
			opp.Deadline = &d
		}
		if createdAt.Valid {
			opp.CreatedAt = createdAt.Time
		}
		opps = append(opps, opp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating opportunities: %w", err)
	}

	return opps, nil
}

// ==================== Subscriber Store ====================

// subscriberStore implements driven.SubscriberStore.
type subscriberStore struct {
	store *Store
}

var _ driven.SubscriberStore = (*subscriberStore)(nil)

// Save stores or updates a subscriber.
func (s *subscriberStore) Save(ctx context.Context, sub *domain.Subscriber) error {
	if sub.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO subscribers (id, channel, handle, locale, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			channel = excluded.channel,
			handle = excluded.handle,
			locale = excluded.locale,
			active = excluded.active
	`, sub.ID, sub.Channel, sub.Handle, sub.Locale, sub.Active, sub.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving subscriber: %w", err)
	}
	return nil
}

// ListActive returns active subscribers for a channel.
func (s *subscriberStore) ListActive(ctx context.Context, channel string) ([]domain.Subscriber, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, channel, handle, locale, active, created_at
		FROM subscribers WHERE channel = ? AND active = 1
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sub domain.Subscriber
		var createdAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.Channel, &sub.Handle, &sub.Locale,
			&sub.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		if createdAt.Valid {
			sub.CreatedAt = createdAt.Time
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscribers: %w", err)
	}

	return subs, nil
}

// ==================== Fingerprint Store ====================

// fingerprintStore implements driven.FingerprintStore.
type fingerprintStore struct {
	store *Store
}

var _ driven.FingerprintStore = (*fingerprintStore)(nil)

// SeenHash reports whether the strong hash was already recorded.
func (s *fingerprintStore) SeenHash(ctx context.Context, hash string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fingerprints WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking hash: %w", err)
	}
	return count > 0, nil
}

// AddHash records a strong hash. Adding an existing hash is a no-op.
func (s *fingerprintStore) AddHash(ctx context.Context, hash string) error {
	_, err := s.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO fingerprints (hash) VALUES (?)", hash)
	if err != nil {
		return fmt.Errorf("adding hash: %w", err)
	}
	return nil
}
