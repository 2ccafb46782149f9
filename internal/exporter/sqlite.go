package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-zajac/ghanalyzer/internal/app"

	// sqlite driver
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	repository TEXT NOT NULL,
	state TEXT NOT NULL,
	pages_fetched INTEGER NOT NULL,
	generated_at TEXT NOT NULL,
	total INTEGER NOT NULL,
	open INTEGER NOT NULL,
	closed INTEGER NOT NULL,
	unassigned INTEGER NOT NULL,
	pull_requests_skipped INTEGER NOT NULL,
	avg_time_to_close_seconds INTEGER NOT NULL,
	median_time_to_close_seconds INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS issues (
	run_id TEXT NOT NULL REFERENCES runs(id),
	id INTEGER NOT NULL,
	number INTEGER NOT NULL,
	title TEXT NOT NULL,
	state TEXT NOT NULL,
	author TEXT NOT NULL,
	comments INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	closed_at TEXT,
	pull_request INTEGER NOT NULL,
	url TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS issue_labels (
	run_id TEXT NOT NULL,
	issue_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY (run_id, issue_id, label)
);
`

// ExportFile appends report to sqlite database at path, creating tables if needed.
// Every call is stored as a separate run. Returns the run id.
func ExportFile(ctx context.Context, path string, r *app.IssuesReport) (runID string, err error) {
	if path == "" {
		return "", app.InvalidRequestError("sqlite export needs an output file")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return "", fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	runID = uuid.NewString()
	s := r.Summary
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		r.Repository.FullName,
		string(r.State),
		r.PagesFetched,
		r.GeneratedAt.UTC().Format(time.RFC3339),
		s.Total,
		s.Open,
		s.Closed,
		s.Unassigned,
		s.PullRequestsSkipped,
		int64(s.AvgTimeToClose/time.Second),
		int64(s.MedianTimeToClose/time.Second),
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	issueStmt, err := tx.PrepareContext(ctx, `INSERT INTO issues VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing issues statement: %w", err)
	}
	defer issueStmt.Close()
	labelStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO issue_labels VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing labels statement: %w", err)
	}
	defer labelStmt.Close()

	for _, i := range r.Issues {
		var closedAt sql.NullString
		if i.ClosedAt != nil {
			closedAt = sql.NullString{String: i.ClosedAt.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err = issueStmt.ExecContext(ctx,
			runID,
			i.ID,
			i.Number,
			i.Title,
			string(i.State),
			i.Author.Login,
			i.Comments,
			i.CreatedAt.UTC().Format(time.RFC3339),
			closedAt,
			i.IsPullRequest,
			i.HTMLURL,
		); err != nil {
			return "", fmt.Errorf("inserting issue %d: %w", i.Number, err)
		}
		for _, l := range i.Labels {
			if _, err = labelStmt.ExecContext(ctx, runID, i.ID, l.Name); err != nil {
				return "", fmt.Errorf("inserting label of issue %d: %w", i.Number, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	return runID, nil
}
