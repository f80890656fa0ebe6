package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dsn        string
	DB         *sql.DB
	SchemaName string
	cfgFile    string
	DriverName string // "postgres", "mysql", "sqlserver" or "oracle"
)

var RootCmd = &cobra.Command{
	Use:   "careload",
	Short: "A clinical extract loading tool",
	Long: `
  ____    _    ____  _____ _     ___    _    ____
 / ___|  / \  |  _ \| ____| |   / _ \  / \  |  _ \
| |     / _ \ | |_) |  _| | |  | | | |/ _ \ | | | |
| |___ / ___ \|  _ <| |___| |__| |_| / ___ \| |_| |
 \____/_/   \_\_| \_\_____|_____\___/_/   \_\____/

CARELOAD - Clinical Extract Loader & Verifier
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := GetActiveDBConfig()
		if err != nil {
			// Fall back to flags when no config file is present.
			connStr := viper.GetString("database.dsn")
			if connStr == "" {
				return fmt.Errorf("no active database in config and no --dsn given: %w", err)
			}
			config = &DBConfig{
				Name:   "cli",
				Driver: viper.GetString("database.driver"),
				DSN:    connStr,
				Schema: viper.GetString("database.schema"),
				Active: true,
			}
		}
		if config.Driver == "" {
			config.Driver = "postgres"
		}

		DriverName = config.Driver
		SchemaName = config.Schema

		DB, err = sql.Open(config.Driver, config.DSN)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		if err := DB.Ping(); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}

		// MySQL has no separate schema concept; use the database named in the
		// DSN when the config does not pick one.
		if SchemaName == "" && DriverName == "mysql" {
			if err := DB.QueryRow("SELECT DATABASE()").Scan(&SchemaName); err != nil {
				return fmt.Errorf("failed to get database name: %w", err)
			}
			if SchemaName == "" {
				return fmt.Errorf("no database selected in DSN")
			}
		}

		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./careload.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().String("driver", "", "Database driver (postgres, mysql, sqlserver, oracle)")
	RootCmd.PersistentFlags().String("schema", "", "Target schema (default: clinical_data from config, else driver default)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("database.schema", RootCmd.PersistentFlags().Lookup("schema"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("careload")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
