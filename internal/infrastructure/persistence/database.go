package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldcredit/backend/internal/infrastructure/config"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// connectTimeout bounds the startup ping
const connectTimeout = 5 * time.Second

// ErrSchemaNotMigrated means cmd/migrate has not been run against the database
var ErrSchemaNotMigrated = errors.New("database schema has not been migrated")

// Database is the ledger's PostgreSQL handle. Repositories share DB; the
// raw pool is kept for health checks and schema inspection.
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase connects to PostgreSQL and sizes the pool from cfg. Ledger
// timestamps are naive local time, so GORM's clock is pinned to Local.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.GormLevel(cfg.LogLevel), cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		NowFunc:                func() time.Time { return time.Now().Local() },
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	database := &Database{DB: db, sqlDB: sqlDB}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return database, nil
}

// Ping implements the health check
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Close releases the pool
func (d *Database) Close() error {
	return d.sqlDB.Close()
}

// Stats reports pool usage
func (d *Database) Stats() sql.DBStats {
	return d.sqlDB.Stats()
}

// SchemaVersion reads the golang-migrate bookkeeping table. It returns
// ErrSchemaNotMigrated when no migration was ever applied.
func (d *Database) SchemaVersion(ctx context.Context) (version uint, dirty bool, err error) {
	var exists bool
	if err := d.sqlDB.QueryRowContext(ctx,
		"SELECT to_regclass('schema_migrations') IS NOT NULL").Scan(&exists); err != nil {
		return 0, false, fmt.Errorf("inspect schema: %w", err)
	}
	if !exists {
		return 0, false, ErrSchemaNotMigrated
	}

	err = d.sqlDB.QueryRowContext(ctx,
		"SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrSchemaNotMigrated
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}
