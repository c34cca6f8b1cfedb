package store

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenPostgres connects to postgres with dsn. A nil log keeps gorm's default logger.
func OpenPostgres(dsn string, log logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if log != nil {
		cfg.Logger = log
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return db, nil
}
