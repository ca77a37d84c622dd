// Package manifest records resolution runs in a SQLite database so that
// generated scenario files can be traced back to the input document and
// parameter values that produced them.
package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/pkg"
)

//go:embed schema.sql
var schemaSQL string

// Predefined errors (sentinel values).
var (
	ErrOpen   = pkg.NewError("failed to open manifest")
	ErrRecord = pkg.NewError("failed to record run")
	ErrQuery  = pkg.NewError("failed to query manifest")
)

// Run describes one invocation.
type Run struct {
	Created time.Time
	// Seed is the stochastic seed, if the input had a distribution.
	Seed     *uint64
	Source   string
	Digest   uint64
	Variants int
}

// Entry describes one generated file.
type Entry struct {
	Output      string
	Assignments []param.Assignment
	Index       int
	ID          uuid.UUID
}

// Store is an open manifest database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("dsn", dsn))
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		schemaSQL,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()

			return nil, ErrOpen.Wrap(err).With(slog.String("dsn", dsn))
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Record stores run and its entries in one transaction and returns the run
// ID.
func (s *Store) Record(ctx context.Context, run Run, entries []Entry) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ErrRecord.Wrap(err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if run.Created.IsZero() {
		run.Created = time.Now()
	}

	var seed sql.NullInt64
	if run.Seed != nil {
		// Stored as the signed integer with the same bits.
		seed = sql.NullInt64{Int64: int64(*run.Seed), Valid: true}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, digest, seed, variants, created) VALUES (?, ?, ?, ?, ?)`,
		run.Source,
		strconv.FormatUint(run.Digest, 16),
		seed,
		run.Variants,
		run.Created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, ErrRecord.Wrap(err).With(slog.String("source", run.Source))
	}

	if id, err = res.LastInsertId(); err != nil {
		return 0, ErrRecord.Wrap(err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO variants (run_id, idx, variant_id, output, parameters) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, ErrRecord.Wrap(err)
	}
	defer stmt.Close()

	for _, e := range entries {
		params, err := json.Marshal(assignments(e.Assignments))
		if err != nil {
			return 0, ErrRecord.Wrap(err).With(slog.Int("variant", e.Index))
		}

		if _, err := stmt.ExecContext(ctx, id, e.Index, e.ID.String(), e.Output, string(params)); err != nil {
			return 0, ErrRecord.Wrap(err).With(slog.Int("variant", e.Index))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, ErrRecord.Wrap(err)
	}

	return id, nil
}

// assignments never encodes as null.
func assignments(as []param.Assignment) []param.Assignment {
	if as == nil {
		return []param.Assignment{}
	}

	return as
}

// Variants returns the entries recorded for run id in index order.
func (s *Store) Variants(ctx context.Context, id int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, variant_id, output, parameters FROM variants WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}
	defer rows.Close()

	var out []Entry

	for rows.Next() {
		var (
			e      Entry
			vid    string
			params string
		)

		if err := rows.Scan(&e.Index, &vid, &e.Output, &params); err != nil {
			return nil, ErrQuery.Wrap(err)
		}

		if e.ID, err = uuid.Parse(vid); err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.Int("variant", e.Index))
		}

		if err := json.Unmarshal([]byte(params), &e.Assignments); err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.Int("variant", e.Index))
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	return out, nil
}

// Lookup returns every file generated for variant ID id, oldest run first.
func (s *Store) Lookup(ctx context.Context, id uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, output FROM variants WHERE variant_id = ? ORDER BY run_id, idx`, id.String())
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}
	defer rows.Close()

	var out []Entry

	for rows.Next() {
		e := Entry{ID: id}
		if err := rows.Scan(&e.Index, &e.Output); err != nil {
			return nil, ErrQuery.Wrap(err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	return out, nil
}
