// Package db opens the configured database.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/dsn"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
	gormadapter "github.com/PagodaAdmin/PagodaAdmin/internal/logger/adapter/gorm"
)

// ErrUnknownDriver is returned for a driver Open does not know.
var ErrUnknownDriver = errors.New("unknown database driver")

// Dialector returns the gorm dialector for cfg.Driver.
func Dialector(cfg *config.DB) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.Path), nil
	case config.DriverMySQL:
		return mysql.Open(dsn.MySQL(cfg)), nil
	case config.DriverPostgres:
		return postgres.Open(dsn.Postgres(cfg)), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", cfg.Driver)
	}
}

// Open connects to the database and migrates all models.
func Open(cfg *config.DB, traceSQL bool) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormadapter.New(traceSQL || cfg.Debug),
	})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to connect %s database", cfg.Driver))
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, errors.Wrap(errDB, "failed to get sql.DB")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Setting{}, &models.User{}); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
