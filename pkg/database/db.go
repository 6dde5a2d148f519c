package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/Ruscigno/StockPulse/pkg/config"
	"github.com/Ruscigno/StockPulse/pkg/retry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoDatabase is returned when DATABASE_URL is not configured.
var ErrNoDatabase = errors.New("database url is not configured")

// DB wraps the database connection and provides additional functionality
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// Config holds database configuration
type Config struct {
	URL               string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnectionTimeout time.Duration
}

// NewDB connects to the journal database and verifies the connection.
func NewDB(cfg config.Config, logger *zap.Logger) (*DB, error) {
	dbConfig := parseDBConfig(cfg)
	if dbConfig.URL == "" {
		return nil, ErrNoDatabase
	}

	logger.Info("Connecting to database")

	ctx, cancel := context.WithTimeout(context.Background(), dbConfig.ConnectionTimeout)
	defer cancel()

	sqlDB, err := sql.Open("postgres", dbConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingRetry := retry.DefaultRetryConfig()
	pingRetry.Logger = logger
	pingRetry.Retryable = isTransient
	if err := retry.Retry(ctx, pingRetry, sqlDB.PingContext); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w, and failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	logger.Info("Successfully connected to database")

	return &DB{
		DB:     sqlx.NewDb(sqlDB, "postgres"),
		logger: logger,
	}, nil
}

// isTransient reports whether a connect error may clear up on its own.
// Errors reported by the server itself (bad credentials, unknown database)
// will not.
func isTransient(err error) bool {
	var pqErr *pq.Error
	return !errors.As(err, &pqErr)
}

func parseDBConfig(cfg config.Config) Config {
	return Config{
		URL:               cfg.DatabaseURL,
		MaxOpenConns:      10,
		MaxIdleConns:      2,
		ConnMaxLifetime:   5 * time.Minute,
		ConnectionTimeout: 10 * time.Second,
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	db.logger.Info("Closing database connection")
	return db.DB.Close()
}

// Health checks the database connection health
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := db.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration.
func (db *DB) RunMigrations() error {
	db.logger.Info("Running database migrations")

	m, err := db.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db.logVersion(m, "Migration completed")
	return nil
}

// RollbackMigrations rolls back database migrations
func (db *DB) RollbackMigrations(steps int) error {
	db.logger.Info("Rolling back database migrations", zap.Int("steps", steps))

	m, err := db.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	db.logVersion(m, "Migration rollback completed")
	return nil
}

func (db *DB) logVersion(m *migrate.Migrate, msg string) {
	version, dirty, err := m.Version()
	if err != nil {
		db.logger.Warn("Could not get migration version", zap.Error(err))
		return
	}
	db.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
