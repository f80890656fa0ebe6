package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"careload/internal/dialect"
	"careload/internal/registry"
	"careload/internal/schema"
	"careload/internal/source"
	"careload/internal/transform"

	"golang.org/x/sync/errgroup"
)

// Runner is the run-scoped context threaded through every stage: store
// handle, dialect, target schema, extract directory and load parameters.
type Runner struct {
	DB        *sql.DB
	Dialect   dialect.Dialect
	Schema    string
	SourceDir string
	Config    LoadConfig

	// OnEntityDone, when set, is called after each entity's load pass
	// completes (progress reporting).
	OnEntityDone func(entity string)
}

// Run is the entry point of the pipeline: validate definitions, snapshot the
// target schema, compute the load order, load every entity level by level,
// then verify referential integrity against the final state of the store.
//
// Fatal errors stop scheduling of further entities but never undo what was
// already loaded, and verification runs regardless so the report always
// reflects the store as it stands. The returned report is complete even when
// err is non-nil.
func (r *Runner) Run(ctx context.Context, defs []*registry.EntityDefinition) (*LoadReport, error) {
	start := time.Now()
	cfg := r.Config.withDefaults()

	statsMap := make(map[string]*EntityLoadStats)
	var overallErrors []string
	var fatal error

	fail := func(err error) (*LoadReport, error) {
		overallErrors = append(overallErrors, err.Error())
		return AssembleReport(statsMap, nil, start, time.Now(), overallErrors), err
	}

	if err := registry.Validate(defs); err != nil {
		return fail(err)
	}

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	catalog := schema.NewCatalog(r.DB, r.Dialect, r.Schema)
	infos, err := catalog.Describe(ctx, names)
	if err != nil {
		return fail(err)
	}

	levels, err := schema.Levels(defs)
	if err != nil {
		return fail(err)
	}

	var mu sync.Mutex
	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Parallelism)

		for _, def := range level {
			def := def
			g.Go(func() error {
				stats, err := r.loadOne(gctx, def, infos[def.Name], cfg)
				mu.Lock()
				statsMap[def.Name] = stats
				mu.Unlock()
				if r.OnEntityDone != nil {
					r.OnEntityDone(def.Name)
				}
				return err
			})
		}

		if err := g.Wait(); err != nil {
			fatal = err
			overallErrors = append(overallErrors, err.Error())
			log.Printf("stopping after fatal error: %v", err)
			break
		}
	}

	// Integrity status must reflect the final store state even after a fatal
	// error, so verification always runs.
	violations, verr := Verify(ctx, r.DB, r.Dialect, r.schemaName(), defs)
	if verr != nil {
		overallErrors = append(overallErrors, fmt.Sprintf("integrity verification incomplete: %v", verr))
	}

	return AssembleReport(statsMap, violations, start, time.Now(), overallErrors), fatal
}

func (r *Runner) schemaName() string {
	if r.Schema != "" {
		return r.Schema
	}
	return r.Dialect.DefaultSchema()
}

// loadOne runs the transform and load pass for a single entity. Its stats
// value is owned here until returned, then published read-only.
func (r *Runner) loadOne(ctx context.Context, def *registry.EntityDefinition, info *schema.SchemaInfo, cfg LoadConfig) (*EntityLoadStats, error) {
	stats := &EntityLoadStats{EntityName: def.Name}
	t0 := time.Now()
	defer func() { stats.Duration = time.Since(t0) }()

	path := filepath.Join(r.SourceDir, def.Source)
	ex, err := source.ReadCSV(path)
	if err != nil {
		if errors.Is(err, source.ErrEmpty) {
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("extract %s has no data rows", def.Source))
			return stats, nil
		}
		stats.Errors = append(stats.Errors, err.Error())
		return stats, fmt.Errorf("entity %s: %w", def.Name, err)
	}
	stats.SourceRowCount = len(ex.Rows)

	rows, warnings := transform.Clean(def, info, ex)
	stats.CleanedRowCount = len(rows)
	for _, w := range warnings {
		stats.Warnings = append(stats.Warnings, w.String())
	}

	loader := &Loader{DB: r.DB, Dialect: r.Dialect, Schema: r.schemaName(), Config: cfg}
	if err := loader.LoadEntity(ctx, def, rows, stats, nil); err != nil {
		return stats, fmt.Errorf("entity %s: %w", def.Name, err)
	}

	log.Printf("[%s] loaded %d/%d rows in %d batches (%d attempts)",
		def.Name, stats.LoadedRowCount, stats.SourceRowCount, stats.BatchCount, stats.AttemptsTotal)
	return stats, nil
}
