package utils

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kassslll/philosofium/backend/config"
	"github.com/kassslll/philosofium/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// InitDB opens the configured store. It does not migrate.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, gcfg)
	default:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
}

// OpenSQLite opens a SQLite database through modernc.org/sqlite. A single
// connection is used so writers never race for the file lock.
func OpenSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(&sqlite.Dialector{DriverName: "sqlite", Conn: sqlDB}, gcfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
