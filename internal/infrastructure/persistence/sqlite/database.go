// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	gormModels "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database at cfg.Path and migrates the schema
func SetupDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dbPath := cfg.Path
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(gormModels.LogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if !strings.Contains(dbPath, "memory") {
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			log.Warn("Failed to enable WAL journal", zap.Error(err))
		}
	}

	// Run auto-migration
	if err := gormModels.AutoMigrate(db); err != nil {
		return nil, err
	}

	log.Info("SQLite database ready", zap.String("path", dbPath))
	return db, nil
}
