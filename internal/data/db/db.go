package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type Config struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

// Open connects to the configured driver and migrates the schema.
func Open(cfg Config, logg *logger.Logger) (*gorm.DB, error) {
	var (
		theDB *gorm.DB
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		pg, pgErr := NewPostgresService(cfg.Postgres, logg)
		if pgErr != nil {
			return nil, pgErr
		}
		theDB = pg.DB()
	case "sqlite":
		theDB, err = OpenSQLite(cfg.SQLitePath, logg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err := AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return theDB, nil
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
