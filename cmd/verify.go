package cmd

import (
	"fmt"
	"log"

	"careload/internal/dialect"
	"careload/internal/engine"
	"careload/internal/registry"

	"github.com/spf13/cobra"
)

var verifyEntities string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check referential integrity of already loaded data",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := registry.Load(verifyEntities)
		if err != nil {
			return err
		}

		d := dialect.Get(DriverName)
		schemaName := SchemaName
		if schemaName == "" {
			schemaName = d.DefaultSchema()
		}

		log.Println("Verifying referential integrity...")
		violations, verr := engine.Verify(cmd.Context(), DB, d, schemaName, defs)

		clean := true
		for _, v := range violations {
			icon := "✓"
			if !v.OK() {
				icon = "!"
				clean = false
			}
			fmt.Printf("[%s] %-32s : %d orphaned, %d null violations\n",
				icon, v.Relationship, v.OrphanedCount, v.NullViolationCount)
		}
		if verr != nil {
			return fmt.Errorf("verification incomplete: %w", verr)
		}
		if !clean {
			return fmt.Errorf("integrity violations found")
		}

		log.Println("All relationships verified clean.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyEntities, "entities", "", "Entity definitions file (YAML, merged over built-ins)")
}
