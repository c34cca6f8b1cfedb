package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/theplant/helix/internal/config"
	"github.com/theplant/helix/internal/logging"
	"github.com/theplant/helix/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "helix",
	Short:         "Helix data API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./helix.yaml if present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)
	slog.SetDefault(log)
	return cfg, log, nil
}

func openDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	return store.OpenPostgres(cfg.Database.DSN, logging.NewGormLogger(log, logging.GormLevel(cfg.Log.Level)))
}
