package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"careload/internal/dialect"
	"careload/internal/registry"
	"careload/internal/transform"
)

// ErrTruncateFailure is fatal: a partially truncated relation must not
// silently receive partial data.
var ErrTruncateFailure = errors.New("truncate failed")

// LoadConfig holds the per-run load parameters. Zero values fall back to the
// defaults the original import process used.
type LoadConfig struct {
	BatchSize  int
	MaxRetries int           // additional attempts per batch after the first
	RetryDelay time.Duration // fixed wait between attempts when Backoff is nil
	// Backoff overrides RetryDelay; attempt is 1-based and counts completed
	// failures so far.
	Backoff            func(attempt int) time.Duration
	AttemptTimeout     time.Duration // per batch attempt; 0 means none
	TruncateBeforeLoad bool
	Parallelism        int // concurrent entities within a dependency level
}

func (c LoadConfig) withDefaults() LoadConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	return c
}

func (c LoadConfig) delay(attempt int) time.Duration {
	if c.Backoff != nil {
		return c.Backoff(attempt)
	}
	return c.RetryDelay
}

// EntityLoadStats accumulates the outcome of one entity's load pass. It is
// owned by a single worker until the pass completes, then published read-only
// into the LoadReport.
type EntityLoadStats struct {
	EntityName      string
	SourceRowCount  int
	CleanedRowCount int
	LoadedRowCount  int
	BatchCount      int
	AttemptsTotal   int
	Errors          []string
	Warnings        []string
	Duration        time.Duration
}

// Loader writes cleaned rows to the target store in fixed-size batches.
type Loader struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Schema  string
	Config  LoadConfig
}

// LoadEntity partitions rows into batches and writes each with bounded retry.
// A batch that exhausts its retries is recorded in stats.Errors and skipped;
// it never aborts the entity. The returned error is non-nil only for fatal
// conditions: truncate failure or run cancellation.
func (l *Loader) LoadEntity(ctx context.Context, def *registry.EntityDefinition, rows []transform.Row, stats *EntityLoadStats, onBatch func()) error {
	cfg := l.Config.withDefaults()
	cols := def.TargetFields()

	if cfg.TruncateBeforeLoad {
		if _, err := l.DB.ExecContext(ctx, l.Dialect.TruncateQuery(l.Schema, def.Name)); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("truncate %s: %v", def.Name, err))
			return fmt.Errorf("%w: %s: %v", ErrTruncateFailure, def.Name, err)
		}
	}

	batches := partition(rows, cfg.BatchSize)
	stats.BatchCount = len(batches)

	query := l.Dialect.InsertQuery(l.Schema, def.Name, cols)
	written := 0

	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("batches %d-%d not attempted: run cancelled", bi+1, len(batches)))
			return err
		}
		if l.writeBatchWithRetry(ctx, cfg, def.Name, query, cols, batch, bi+1, stats) {
			written += len(batch)
			if onBatch != nil {
				onBatch()
			}
		}
	}

	// Authoritative count: the store, not our bookkeeping, says what landed.
	var actual int
	if err := l.DB.QueryRowContext(ctx, l.Dialect.CountQuery(l.Schema, def.Name)).Scan(&actual); err != nil {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf("post-load count failed: %v (using summed batch count)", err))
		stats.LoadedRowCount = written
		return nil
	}
	if actual != written {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf("row count mismatch: batches summed to %d, store counted %d", written, actual))
	}
	stats.LoadedRowCount = actual
	return nil
}

// writeBatchWithRetry attempts one batch up to MaxRetries+1 times. Returns
// true when the batch committed.
func (l *Loader) writeBatchWithRetry(ctx context.Context, cfg LoadConfig, entity, query string, cols []string, batch []transform.Row, batchNum int, stats *EntityLoadStats) bool {
	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		stats.AttemptsTotal++

		err := l.writeBatch(ctx, query, cols, batch)
		if err == nil {
			return true
		}
		if errors.Is(err, context.Canceled) {
			stats.Errors = append(stats.Errors, fmt.Sprintf("batch %d write failed: %v", batchNum, err))
			return false
		}
		if attempt == cfg.MaxRetries+1 {
			stats.Errors = append(stats.Errors, fmt.Sprintf("batch %d write failed after %d attempts: %v", batchNum, attempt, err))
			return false
		}

		delay := cfg.delay(attempt)
		log.Printf("[%s] batch %d attempt %d failed (%v), retrying in %s", entity, batchNum, attempt, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			stats.Errors = append(stats.Errors, fmt.Sprintf("batch %d retry abandoned: %v", batchNum, ctx.Err()))
			return false
		}
	}
	return false
}

// writeBatch commits one batch in a single transaction so a failed attempt
// leaves nothing behind. The write itself is detached from run cancellation:
// an in-flight batch finishes (or times out) rather than being interrupted
// mid-row.
func (l *Loader) writeBatch(ctx context.Context, query string, cols []string, batch []transform.Row) error {
	writeCtx := context.WithoutCancel(ctx)
	if l.Config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(writeCtx, l.Config.AttemptTimeout)
		defer cancel()
	}

	tx, err := l.DB.BeginTx(writeCtx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.PrepareContext(writeCtx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range batch {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = row[c]
		}
		if _, err := stmt.ExecContext(writeCtx, values...); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func partition(rows []transform.Row, size int) [][]transform.Row {
	if len(rows) == 0 {
		return nil
	}
	batches := make([][]transform.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
