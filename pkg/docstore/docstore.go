// Package docstore loads (source, value) document records from Postgres
// and feeds them through the analyzer into a boolean index, mirroring the
// original connector's MongoDB scan-and-index loop.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/adithya-search/boolsearch/pkg/config"
	"github.com/adithya-search/boolsearch/pkg/errors"
	"github.com/adithya-search/boolsearch/pkg/postgres"
	"github.com/adithya-search/boolsearch/pkg/resilience"
)

// Indexer is the subset of *boolindex.Index[string] the loader needs.
type Indexer interface {
	AddDocument(id string, terms []string)
}

// Analyzer turns raw document text into stemmed terms.
type Analyzer func(text string) []string

// Store wraps a Postgres connection scanning a single documents table.
type Store struct {
	client *postgres.Client
	table  string
	logger *slog.Logger
}

// Stats summarizes one LoadAll run.
type Stats struct {
	Loaded    int
	Malformed int
	BuildTime time.Duration
}

// Open connects to Postgres with retry, following the same backoff helper
// used elsewhere in this stack for external dependency setup.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*Store, error) {
	var client *postgres.Client
	err := resilience.Retry(ctx, "docstore-connect", resilience.RetryConfig{}, func() error {
		c, err := postgres.New(cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.ErrStartupFailure, fmt.Sprintf("connecting to document store: %v", err))
	}

	return &Store{client: client, table: cfg.Table, logger: logger.With("component", "docstore")}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks that the underlying Postgres connection is reachable, for use
// by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.DB.PingContext(ctx)
}

// LoadAll scans every (source, value) row in the documents table, analyzes
// value into stemmed terms, and calls index.AddDocument(source, terms) for
// each well-formed row. Rows missing either column are skipped and counted
// rather than aborting the load, logging a warning every 1,000 skipped and
// an info line with cumulative progress every 10,000 loaded, mirroring the
// original loader's cadence.
func (s *Store) LoadAll(ctx context.Context, index Indexer, analyze Analyzer) (Stats, error) {
	rows, err := s.client.DB.QueryContext(ctx, fmt.Sprintf("SELECT source, value FROM %s", s.table))
	if err != nil {
		return Stats{}, errors.New(errors.ErrStartupFailure, fmt.Sprintf("querying documents: %v", err))
	}
	defer rows.Close()

	start := time.Now()
	var stats Stats

	for rows.Next() {
		var source, value sql.NullString
		if err := rows.Scan(&source, &value); err != nil {
			stats.Malformed++
			s.logger.Debug("scanning document row failed", "error", err)
			continue
		}
		if !source.Valid || !value.Valid {
			stats.Malformed++
			if stats.Malformed%1000 == 0 {
				s.logger.Warn("malformed documents skipped", "count", stats.Malformed)
			}
			s.logger.Debug("document missing source or value")
			continue
		}

		terms := analyze(value.String)
		index.AddDocument(source.String, terms)
		stats.Loaded++

		if stats.Loaded%10000 == 0 {
			s.logger.Info("indexing progress", "documents_loaded", stats.Loaded, "elapsed", time.Since(start))
		}
	}
	if err := rows.Err(); err != nil {
		return stats, errors.New(errors.ErrStartupFailure, fmt.Sprintf("reading document rows: %v", err))
	}

	stats.BuildTime = time.Since(start)
	s.logger.Info("document store load complete",
		"documents_loaded", stats.Loaded,
		"malformed_skipped", stats.Malformed,
		"build_time", stats.BuildTime)
	return stats, nil
}
