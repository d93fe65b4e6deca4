package pipeline

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Catalog records pipeline runs in a SQLite database.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the run catalog at the given path and
// configures WAL mode.
func OpenCatalog(dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "catalog: exec %s", pragma)
		}
	}
	return &Catalog{db: db}, nil
}

const catalogMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	dataset       TEXT NOT NULL,
	family        TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'running',
	interactions  INTEGER,
	metadata_rows INTEGER,
	error         TEXT,
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Migrate creates the catalog schema.
func (c *Catalog) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, catalogMigration)
	return eris.Wrap(err, "catalog: migrate")
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Start records the start of a run and returns its id.
func (c *Catalog) Start(ctx context.Context, dataset, family string) (string, error) {
	id := uuid.New().String()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, family, status, started_at) VALUES (?, ?, ?, 'running', ?)`,
		id, dataset, family, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "catalog: insert run")
	}
	return id, nil
}

// Complete marks a run as succeeded with its row counts.
func (c *Catalog) Complete(ctx context.Context, id string, interactions, metadataRows int) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE runs SET status = 'completed', interactions = ?, metadata_rows = ?, finished_at = ? WHERE id = ?`,
		interactions, metadataRows, time.Now().UTC(), id,
	)
	return eris.Wrapf(err, "catalog: complete run %s", id)
}

// Fail marks a run as failed with its error message.
func (c *Catalog) Fail(ctx context.Context, id string, msg string) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', error = ?, finished_at = ? WHERE id = ?`,
		msg, time.Now().UTC(), id,
	)
	return eris.Wrapf(err, "catalog: fail run %s", id)
}

// LastCompleted returns the finish time of the most recent successful
// run for a dataset, or nil if it never completed.
func (c *Catalog) LastCompleted(ctx context.Context, dataset string) (*time.Time, error) {
	var t time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT finished_at FROM runs WHERE dataset = ? AND status = 'completed' ORDER BY finished_at DESC LIMIT 1`,
		dataset,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: last completed for %s", dataset)
	}
	return &t, nil
}
