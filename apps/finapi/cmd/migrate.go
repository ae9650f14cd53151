package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/fina/pkg/db"
	"github.com/quatton/fina/pkg/flog"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies pending migrations to the database described by the DB_* variables
(DB_DRIVER, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE, DB_PATH).`,
	Run: runMigrate,
}

var migrateDown bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back the last migration group instead")
}

func runMigrate(cmd *cobra.Command, args []string) {
	logger := flog.NewDefault()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	var cfg db.Config
	if err := envconfig.Process("DB", &cfg); err != nil {
		logger.Fatal("failed to process env vars", "error", err)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if migrateDown {
		if err := db.Rollback(ctx, database, logger); err != nil {
			logger.Fatal("rollback failed", "error", err)
		}
		return
	}

	logger.Info("running migrations", "driver", cfg.Driver)
	if err := db.Migrate(ctx, database, logger); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}
