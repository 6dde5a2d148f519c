package cmd

import (
	"github.com/Ruscigno/StockPulse/logging"
	"github.com/Ruscigno/StockPulse/pkg/config"
	"github.com/Ruscigno/StockPulse/pkg/database"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the submission journal schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB) error { return db.RunMigrations() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB) error { return db.RollbackMigrations(migrateSteps) })
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	RootCmd.AddCommand(migrateCmd)
}

func withDB(fn func(*database.DB) error) error {
	cfg := config.Load(viper.GetViper())
	logger := logging.SetupLogger(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = logger.Sync() }()

	db, err := database.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(db); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		return err
	}
	return nil
}
