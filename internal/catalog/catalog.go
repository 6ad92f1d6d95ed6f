// Package catalog caches file listings fetched from the Filebox API in a
// local SQLite database, so `filebox ls --cached` works offline and a
// slow listing endpoint does not block quick lookups. The catalog is a
// cache, never an authority: every successful server listing overwrites
// it, and a full (unfiltered) refresh prunes rows the server no longer
// reports.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".

	"github.com/fileboxhq/filebox-go/internal/api"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DirPerms is used when creating the catalog's parent directory.
const DirPerms = 0o700

// Catalog is the local listing cache. A single connection keeps SQLite
// in sole-writer mode; all operations are short transactions.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the catalog database at dbPath and applies any
// pending schema migrations. Use ":memory:" for tests.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), DirPerms); err != nil {
			return nil, fmt.Errorf("catalog: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}

	// Sole writer: serializes all access through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: setting WAL mode: %w", err)
	}

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// runMigrations applies all pending schema migrations using the goose v3
// Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("catalog: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("catalog: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("catalog: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied catalog migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// Replace upserts a fetched listing. When full is true (the listing was
// unfiltered), rows absent from it are pruned afterward — the server no
// longer knows them. Runs in one transaction so a crash never leaves a
// half-replaced catalog.
func (c *Catalog) Replace(ctx context.Context, files []api.File, full bool) error {
	// Nanosecond stamp so back-to-back refreshes still distinguish old
	// rows from this batch.
	now := time.Now().UnixNano()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const upsert = `
		INSERT INTO files (id, file_name, content_type, file_size, uploader_username, company, upload_date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			content_type = excluded.content_type,
			file_size = excluded.file_size,
			uploader_username = excluded.uploader_username,
			company = excluded.company,
			upload_date = excluded.upload_date,
			fetched_at = excluded.fetched_at`

	for _, f := range files {
		_, err := tx.ExecContext(ctx, upsert,
			f.ID, f.FileName, f.ContentType, f.FileSize,
			f.UploaderUsername, f.Company, f.UploadDate.Unix(), now,
		)
		if err != nil {
			return fmt.Errorf("catalog: upserting file %s: %w", f.ID, err)
		}
	}

	if full {
		if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE fetched_at < ?", now); err != nil {
			return fmt.Errorf("catalog: pruning stale rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: committing: %w", err)
	}

	c.logger.Debug("catalog refreshed",
		slog.Int("count", len(files)),
		slog.Bool("full", full),
	)

	return nil
}

// List returns the cached files ordered by upload date, newest first.
func (c *Catalog) List(ctx context.Context) ([]api.File, error) {
	const query = `
		SELECT id, file_name, content_type, file_size, uploader_username, company, upload_date
		FROM files
		ORDER BY upload_date DESC, id`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: querying files: %w", err)
	}
	defer rows.Close()

	var files []api.File

	for rows.Next() {
		var (
			f        api.File
			uploaded int64
		)

		err := rows.Scan(&f.ID, &f.FileName, &f.ContentType, &f.FileSize,
			&f.UploaderUsername, &f.Company, &uploaded)
		if err != nil {
			return nil, fmt.Errorf("catalog: scanning row: %w", err)
		}

		f.UploadDate = time.Unix(uploaded, 0).UTC()
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating rows: %w", err)
	}

	return files, nil
}

// Delete drops a file from the cache. Missing rows are not an error —
// the cache may simply never have seen the file.
func (c *Catalog) Delete(ctx context.Context, fileID string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID); err != nil {
		return fmt.Errorf("catalog: deleting file %s: %w", fileID, err)
	}

	return nil
}
