// Package backlog optionally drains a bounded Kafka topic of supplementary
// (source, value) documents once, before the server starts accepting
// connections, folding them into the same index used by the primary
// document store load.
package backlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/adithya-search/boolsearch/pkg/config"
	"github.com/adithya-search/boolsearch/pkg/kafka"
)

// Indexer is the subset of *boolindex.Index[string] the drain needs.
type Indexer interface {
	AddDocument(id string, terms []string)
}

// Analyzer turns raw document text into stemmed terms.
type Analyzer func(text string) []string

// Record is the JSON shape expected on the backlog topic.
type Record struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// decodeRecord parses a backlog message and reports whether it is
// well-formed: valid JSON with both a source and a value.
func decodeRecord(value []byte) (Record, bool) {
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil || rec.Source == "" || rec.Value == "" {
		return Record{}, false
	}
	return rec, true
}

// Stats summarizes one drain run.
type Stats struct {
	Loaded    int
	Malformed int
}

// Drain consumes every message currently on cfg.Topic, bounded by
// cfg.DrainTimeout, and indexes each well-formed record. It returns once the
// timeout elapses or the topic is exhausted — whichever comes first — since
// Consumer.Start exits cleanly as soon as its context is done.
func Drain(ctx context.Context, cfg config.BacklogConfig, index Indexer, analyze Analyzer, logger *slog.Logger) (Stats, error) {
	logger = logger.With("component", "backlog")
	if !cfg.Enabled {
		logger.Debug("backlog drain disabled")
		return Stats{}, nil
	}

	var stats Stats
	handler := func(_ context.Context, _ []byte, value []byte) error {
		rec, ok := decodeRecord(value)
		if !ok {
			stats.Malformed++
			if stats.Malformed%1000 == 0 {
				logger.Warn("malformed backlog records skipped", "count", stats.Malformed)
			}
			return nil
		}
		index.AddDocument(rec.Source, analyze(rec.Value))
		stats.Loaded++
		if stats.Loaded%10000 == 0 {
			logger.Info("backlog drain progress", "documents_loaded", stats.Loaded)
		}
		return nil
	}

	consumer := kafka.NewConsumer(cfg.Brokers, cfg.ConsumerGroup, cfg.Topic, handler)

	drainCtx, cancel := context.WithTimeout(ctx, cfg.DrainTimeout)
	defer cancel()

	logger.Info("backlog drain starting", "topic", cfg.Topic, "timeout", cfg.DrainTimeout)
	start := time.Now()
	if err := consumer.Start(drainCtx); err != nil {
		return stats, err
	}
	logger.Info("backlog drain finished",
		"documents_loaded", stats.Loaded,
		"malformed_skipped", stats.Malformed,
		"elapsed", time.Since(start))
	return stats, nil
}
