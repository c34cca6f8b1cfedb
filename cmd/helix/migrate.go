package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/theplant/helix/internal/config"
	"github.com/theplant/helix/model"
	"github.com/theplant/helix/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != config.DriverPostgres {
			return errors.Errorf("migrate needs the %s driver, got %s", config.DriverPostgres, cfg.Database.Driver)
		}
		db, err := openDB(cfg, log)
		if err != nil {
			return err
		}
		if err := store.AutoMigrate(cmd.Context(), db, model.All()...); err != nil {
			return err
		}
		log.Info("migrated", "tables", len(model.All()))
		return nil
	},
}
