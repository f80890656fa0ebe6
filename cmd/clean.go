package cmd

import (
	"fmt"
	"log"

	"careload/internal/dialect"
	"careload/internal/registry"
	"careload/internal/schema"

	"github.com/spf13/cobra"
)

var cleanEntities string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all loaded data from the target tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := registry.Load(cleanEntities)
		if err != nil {
			return err
		}

		d := dialect.Get(DriverName)
		log.Printf("Using dialect: %s\n", DriverName)

		return cleanDatabase(defs, d)
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanEntities, "entities", "", "Entity definitions file (YAML, merged over built-ins)")
}

// cleanDatabase truncates entities in reverse dependency order so children
// empty before their parents.
func cleanDatabase(defs []*registry.EntityDefinition, d dialect.Dialect) error {
	ordered, err := schema.Order(defs)
	if err != nil {
		return err
	}

	schemaName := SchemaName
	if schemaName == "" {
		schemaName = d.DefaultSchema()
	}

	log.Println("Disabling Foreign Key Checks...")

	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := d.DisableFKChecks(tx); err != nil {
		log.Printf("Warning: Failed to disable FK checks: %v. Continuing...\n", err)
		if _, ok := d.(*dialect.PostgresDialect); ok {
			tx.Rollback()
			tx, _ = DB.Begin()
		}
	}

	count := 0
	total := len(ordered)

	for i := len(ordered) - 1; i >= 0; i-- {
		def := ordered[i]
		count++
		if _, err := tx.Exec(d.TruncateQuery(schemaName, def.Name)); err != nil {
			log.Printf("Warning: Failed to clean %s: %v (continuing...)\n", def.Name, err)
		}

		if count%5 == 0 || count == total {
			log.Printf("Cleaned %d/%d tables...", count, total)
		}
	}

	log.Println("Enabling Foreign Key Checks...")
	if err := d.EnableFKChecks(tx); err != nil {
		log.Printf("Warning: Failed to enable FK checks: %v\n", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleaning transaction: %w", err)
	}
	tx = nil

	log.Println("Database Cleaned Successfully!")
	return nil
}
