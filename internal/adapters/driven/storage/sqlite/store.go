package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DeploymentStore = (*Store)(nil)

// Store is a SQLite-backed deployment history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.shipforge/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".shipforge", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode for better concurrency with the watch loop
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_deployments.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or updates a deployment record.
func (s *Store) Save(ctx context.Context, d domain.Deployment) error {
	steps, err := json.Marshal(d.Steps)
	if err != nil {
		return fmt.Errorf("encoding steps: %w", err)
	}
	urls, err := json.Marshal(d.URLs)
	if err != nil {
		return fmt.Errorf("encoding urls: %w", err)
	}
	errs, err := json.Marshal(d.Errors)
	if err != nil {
		return fmt.Errorf("encoding errors: %w", err)
	}

	var completedAt any
	if !d.CompletedAt.IsZero() {
		completedAt = d.CompletedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deployments (id, app_name, platform, service_id, repo_full_name, steps, urls, errors, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			app_name = excluded.app_name,
			platform = excluded.platform,
			service_id = excluded.service_id,
			repo_full_name = excluded.repo_full_name,
			steps = excluded.steps,
			urls = excluded.urls,
			errors = excluded.errors,
			completed_at = excluded.completed_at
	`, d.ID, d.AppName, string(d.Platform), d.ServiceID, d.RepoFullName,
		string(steps), string(urls), string(errs), d.CreatedAt.UTC(), completedAt)
	if err != nil {
		return fmt.Errorf("saving deployment %s: %w", d.ID, err)
	}
	return nil
}

// Get retrieves a deployment by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Deployment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, app_name, platform, service_id, repo_full_name, steps, urls, errors, created_at, completed_at
		FROM deployments WHERE id = ?
	`, id)

	d, err := scanDeployment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting deployment %s: %w", id, err)
	}
	return d, nil
}

// List returns all deployments, most recent first.
func (s *Store) List(ctx context.Context) ([]domain.Deployment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, app_name, platform, service_id, repo_full_name, steps, urls, errors, created_at, completed_at
		FROM deployments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing deployments: %w", err)
	}
	defer rows.Close()

	var out []domain.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deployment: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deployments: %w", err)
	}
	return out, nil
}

// Delete removes a deployment record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deployments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting deployment %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanDeployment.
type scanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row scanner) (*domain.Deployment, error) {
	var (
		d           domain.Deployment
		platform    string
		steps       string
		urls        string
		errs        string
		completedAt sql.NullTime
	)
	if err := row.Scan(&d.ID, &d.AppName, &platform, &d.ServiceID, &d.RepoFullName,
		&steps, &urls, &errs, &d.CreatedAt, &completedAt); err != nil {
		return nil, err
	}

	d.Platform = domain.Platform(platform)
	if completedAt.Valid {
		d.CompletedAt = completedAt.Time
	}
	if err := json.Unmarshal([]byte(steps), &d.Steps); err != nil {
		return nil, fmt.Errorf("decoding steps: %w", err)
	}
	if err := json.Unmarshal([]byte(urls), &d.URLs); err != nil {
		return nil, fmt.Errorf("decoding urls: %w", err)
	}
	if err := json.Unmarshal([]byte(errs), &d.Errors); err != nil {
		return nil, fmt.Errorf("decoding errors: %w", err)
	}

	d.CreatedAt = d.CreatedAt.UTC()
	if !d.CompletedAt.IsZero() {
		d.CompletedAt = d.CompletedAt.UTC()
	}
	return &d, nil
}
