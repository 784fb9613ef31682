package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"workshopportal/internal/config"
	"workshopportal/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "workshop-portal",
	Short: "Workshop portal web server",
	Long: `workshop-portal serves the admin, faculty and student screens of the
workshop platform in front of its REST backend.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	logger.Init()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig is shared by every command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
