// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	gormModels "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
	"github.com/zerowastechef/server/internal/infrastructure/persistence/migrations"
)

// Open connects to the primary database through the pgx driver, registers
// read replicas with dbresolver and applies pending schema migrations
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	primary, err := openPool(cfg.GetDSN(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary connection: %w", err)
	}

	if err := migrations.Up(primary, cfg.Database.Database, log); err != nil {
		_ = primary.Close()
		return nil, err
	}

	db, err := NewWithConn(primary, cfg.Database)
	if err != nil {
		_ = primary.Close()
		return nil, err
	}

	if replicas := cfg.ReplicaDSNs(); len(replicas) > 0 {
		if err := registerReplicas(db, replicas, cfg.Database); err != nil {
			return nil, err
		}
		log.Info("Read replicas registered", zap.Int("count", len(replicas)))
	}

	log.Info("PostgreSQL database ready",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)
	return db, nil
}

// NewWithConn wraps an open connection pool in GORM
func NewWithConn(conn *sql.DB, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:         logger.Default.LogMode(gormModels.LogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func registerReplicas(db *gorm.DB, dsns []string, cfg config.DatabaseConfig) error {
	dialectors := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		conn, err := openPool(dsn, cfg)
		if err != nil {
			return fmt.Errorf("failed to open replica connection: %w", err)
		}
		dialectors = append(dialectors, postgres.New(postgres.Config{Conn: conn}))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: dialectors,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cfg.MaxOpenConns).
		SetMaxIdleConns(cfg.MaxIdleConns).
		SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}
	return nil
}

func openPool(dsn string, cfg config.DatabaseConfig) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	conn := stdlib.OpenDB(*connConfig)
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return conn, nil
}
