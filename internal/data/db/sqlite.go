package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

// OpenSQLite opens a sqlite database for local runs and tests. A single
// connection keeps ":memory:" databases shared across the pool.
func OpenSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	cfg := gormConfig()
	if path == ":memory:" {
		cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.With("service", "SQLite").Info("opened sqlite database", "path", path)
	}
	return db, nil
}
