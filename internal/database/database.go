package database

import (
	"strings"

	"github.com/arnold/lifesync-api/internal/config"
	"github.com/arnold/lifesync-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseURL, gormLogLevel(cfg))
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Open picks PostgreSQL when the DSN starts with postgres, otherwise SQLite.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

func Migrate() error {
	return DB.AutoMigrate(
		&models.KVEntry{},
	)
}

func gormLogLevel(cfg *config.Config) logger.LogLevel {
	switch {
	case cfg.Env == "production":
		return logger.Silent
	case cfg.LogLevel == "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
