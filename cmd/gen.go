package cmd

import (
	"log"

	"careload/internal/engine"

	"github.com/spf13/cobra"
)

var (
	genOut      string
	genPatients int
	genSeed     int64
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate synthetic clinical extracts for testing",
	// Generation is offline; skip the DB connection the root command sets up.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Printf("Generating extracts for %d patients into %s...", genPatients, genOut)

		err := engine.GenerateExtracts(engine.GenOptions{
			Dir:      genOut,
			Patients: genPatients,
			Seed:     genSeed,
		})
		if err != nil {
			return err
		}

		log.Println("Extracts generated.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVar(&genOut, "out", "./data", "Output directory for generated extracts")
	genCmd.Flags().IntVar(&genPatients, "patients", 100, "Number of patients to generate")
	genCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed (0 picks a random one)")
}
