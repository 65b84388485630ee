// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and Postgres, and the versioned schema migration.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/farm-dashboard-backend/internal/config"
	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// Open connects to the store selected by cfg. When tracing is true the
// gorm OpenTelemetry plugin is installed so every statement becomes a span.
func Open(cfg config.StoreConfig, tracing bool) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = OpenPostgres(cfg.DSN)
	case config.DriverSQLite, "":
		db, err = OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if tracing {
		if err := useTracing(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func useTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// OpenPostgres connects to Postgres using a libpq-style or URL DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// SchemaMigration records an applied migration step.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(128);not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (SchemaMigration) TableName() string { return "schema_migrations" }

type migration struct {
	version int
	name    string
	models  []any
}

// migrations is the ordered schema history. Steps are append-only; each one
// is applied at most once and recorded in schema_migrations.
var migrations = []migration{
	{1, "profiles", []any{&domain.User{}, &domain.LegacyUser{}}},
	{2, "credits_and_zones", []any{&domain.CreditMetrics{}, &domain.FarmZone{}}},
	{3, "insights", []any{&domain.FarmNeighbor{}, &domain.FarmHealthMetric{}, &domain.MarketData{}}},
	{4, "nasa_time_series", []any{&domain.WeatherForecast{}, &domain.WeatherObservation{}, &domain.SoilSample{}}},
	{5, "recommendations", []any{&domain.Recommendation{}}},
	{6, "idempotency", []any{&domain.Idempotency{}}},
	{7, "idempotency_fingerprint", []any{&domain.Idempotency{}}},
}

// Migrate applies every pending migration step in order. Each step runs in
// its own transaction together with its schema_migrations row, so a failed
// step leaves no record and is retried on the next start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}

	var applied []int
	if err := db.Model(&SchemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(m.models...); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// AutoMigrate creates every table without recording versions. Tests use it to
// provision throwaway databases.
func AutoMigrate(db *gorm.DB) error {
	models := make([]any, 0, 16)
	for _, m := range migrations {
		models = append(models, m.models...)
	}
	return db.AutoMigrate(models...)
}
