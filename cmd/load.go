package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"careload/internal/dialect"
	"careload/internal/engine"
	"careload/internal/registry"
	"careload/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	loadTables    []string
	loadTruncate  bool
	loadDryRun    bool
	loadSourceDir string
	loadEntities  string
	loadReport    string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load clinical extracts into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := resolveEntities()
		if err != nil {
			return err
		}

		sourceDir := loadSourceDir
		if sourceDir == "" {
			sourceDir = viper.GetString("settings.source_dir")
		}

		cfg := loadSettings()
		if loadTruncate {
			cfg.TruncateBeforeLoad = true
		}

		d := dialect.Get(DriverName)
		log.Printf("Using dialect: %s\n", DriverName)

		if loadDryRun {
			log.Println("[SIMULATION] Dry-Run Mode Active: No data will be written.")
			levels, err := schema.Levels(defs)
			if err != nil {
				return err
			}
			fmt.Printf("🔍 Load Plan:\n")
			i := 0
			for li, level := range levels {
				for _, def := range level {
					i++
					fmt.Printf("[%02d] %-16s (level %d, source: %s)\n", i, def.Name, li, def.Source)
				}
			}
			return nil
		}

		log.Printf("Starting load from %s (batch=%d, retries=%d)...", sourceDir, cfg.BatchSize, cfg.MaxRetries)
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(len(defs)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Loading: "
		})

		runner := &engine.Runner{
			DB:        DB,
			Dialect:   d,
			Schema:    SchemaName,
			SourceDir: sourceDir,
			Config:    cfg,
			OnEntityDone: func(entity string) {
				bar.Incr()
			},
		}
		report, runErr := runner.Run(cmd.Context(), defs)

		uiprogress.Stop()

		printSummary(report, defs)
		elapsed := time.Since(start)

		if loadReport != "" {
			if err := os.WriteFile(loadReport, []byte(report.Markdown()), 0o644); err != nil {
				log.Printf("Warning: failed to write report to %s: %v", loadReport, err)
			} else {
				log.Printf("Report written to %s", loadReport)
			}
		}

		log.Printf("Load Done! Time Elapsed: %s", elapsed)
		return runErr
	},
}

// printSummary renders the per-entity outcome in load order, then the
// integrity section.
func printSummary(report *engine.LoadReport, defs []*registry.EntityDefinition) {
	ordered, err := schema.Order(defs)
	if err != nil {
		ordered = defs
	}

	fmt.Println("\n📊 Summary Report (Dependency Order):")
	total := 0
	shown := 0
	for _, def := range ordered {
		s, ok := report.EntityStats[def.Name]
		if !ok {
			continue
		}
		shown++
		icon := "✓"
		status := "OK (Verified)"
		if len(s.Errors) > 0 {
			icon = "!"
			status = "ERRORS"
		} else if len(s.Warnings) > 0 {
			status = "OK (Warnings)"
		}

		fmt.Printf("[%s] [%02d/%02d] %-16s : %d rows (Source: %d) - %s\n",
			icon, shown, len(report.EntityStats), s.EntityName, s.LoadedRowCount, s.SourceRowCount, status)
		for _, e := range s.Errors {
			fmt.Printf("    └ Error: %s\n", e)
		}
		total += s.LoadedRowCount
	}

	if len(report.Violations) > 0 {
		fmt.Println("\n🔗 Referential Integrity:")
		for _, v := range report.Violations {
			icon := "✓"
			if !v.OK() {
				icon = "!"
			}
			fmt.Printf("[%s] %-32s : %d orphaned, %d null violations\n",
				icon, v.Relationship, v.OrphanedCount, v.NullViolationCount)
		}
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Rows Loaded: %d\n", total)
}

// resolveEntities loads the entity registry (built-in plus any overrides from
// the entities file) and applies the --tables filter.
func resolveEntities() ([]*registry.EntityDefinition, error) {
	defs, err := registry.Load(loadEntities)
	if err != nil {
		return nil, err
	}

	wanted := loadTables
	if len(wanted) == 0 {
		wanted = viper.GetStringSlice("settings.tables")
	}
	if len(wanted) > 0 {
		defs, err = registry.Filter(defs, wanted)
		if err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func init() {
	RootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringSliceVarP(&loadTables, "tables", "t", []string{}, "Specific entities to load (comma-separated)")
	loadCmd.Flags().BoolVar(&loadTruncate, "truncate", false, "Truncate tables before loading")
	loadCmd.Flags().BoolVar(&loadDryRun, "dry-run", false, "Show the load plan without writing to DB")
	loadCmd.Flags().StringVar(&loadSourceDir, "source-dir", "", "Directory holding the source extracts (overrides config)")
	loadCmd.Flags().StringVar(&loadEntities, "entities", "", "Entity definitions file (YAML, merged over built-ins)")
	loadCmd.Flags().StringVar(&loadReport, "report", "", "Write a markdown loading report to this path")
	loadCmd.Flags().Int("batch-size", 0, "Rows per insert batch (overrides config)")
	loadCmd.Flags().Int("max-retries", 0, "Retries per failed batch (overrides config)")
	loadCmd.Flags().Int("retry-delay", 0, "Seconds between batch retries (overrides config)")
	loadCmd.Flags().Int("parallelism", 0, "Concurrent entities within a dependency level (overrides config)")

	viper.BindPFlag("settings.batch_size", loadCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("settings.max_retries", loadCmd.Flags().Lookup("max-retries"))
	viper.BindPFlag("settings.retry_delay_seconds", loadCmd.Flags().Lookup("retry-delay"))
	viper.BindPFlag("settings.parallelism", loadCmd.Flags().Lookup("parallelism"))
}
