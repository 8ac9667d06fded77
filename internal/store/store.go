// Package store persists the installed version of each package in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned by Get when no record exists for a package.
var ErrNotFound = errors.New("store: package not installed")

const schema = `
CREATE TABLE IF NOT EXISTS installed (
	package      TEXT PRIMARY KEY,
	version      TEXT NOT NULL,
	installed_at TEXT NOT NULL
)`

// Record is one installed package.
type Record struct {
	Package     string    `json:"package" yaml:"package"`
	Version     string    `json:"version" yaml:"version"`
	InstalledAt time.Time `json:"installed_at" yaml:"installed_at"`
}

// Store is a handle on the installed-versions database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// buildDSN creates a WAL DSN for the given path.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("store: empty database path")
	}
	//nolint:gosec // G301: data directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInstalledVersion records version as installed for pkg, replacing any
// previous record.
func (s *Store) SaveInstalledVersion(ctx context.Context, pkg, version string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO installed (package, version, installed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(package) DO UPDATE SET
			version = excluded.version,
			installed_at = excluded.installed_at
	`, pkg, version, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save installed version of %s: %w", pkg, err)
	}
	return nil
}

// DeleteInstalledVersion removes the record for pkg. Deleting a package that
// has no record is not an error.
func (s *Store) DeleteInstalledVersion(ctx context.Context, pkg string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM installed WHERE package = ?`, pkg); err != nil {
		return fmt.Errorf("delete installed version of %s: %w", pkg, err)
	}
	return nil
}

// Get returns the record for pkg.
func (s *Store) Get(ctx context.Context, pkg string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT package, version, installed_at
		FROM installed
		WHERE package = ?
	`, pkg)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, pkg)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get installed version of %s: %w", pkg, err)
	}
	return rec, nil
}

// List returns every record ordered by package name.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT package, version, installed_at
		FROM installed
		ORDER BY package
	`)
	if err != nil {
		return nil, fmt.Errorf("query installed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installed: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec Record
		at  string
	)
	if err := sc.Scan(&rec.Package, &rec.Version, &at); err != nil {
		return Record{}, err
	}
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		rec.InstalledAt = t
	}
	return rec, nil
}
