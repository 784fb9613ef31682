package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"workshopportal/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the portal's database schema",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db, args[0]); err != nil {
			return err
		}
		slog.Info("migrations applied", "direction", args[0])
		return nil
	},
}
