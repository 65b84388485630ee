package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// ---------- test helpers ----------

var testToday = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// newSvcDB opens a unique shared-memory database, fully migrated.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// newFileDB opens a temp-file database limited to one connection, so
// concurrent transactions queue instead of failing with SQLITE_BUSY.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svc.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// countInserts registers a create callback that counts statements which
// actually wrote at least one row.
func countInserts(t *testing.T, db *gorm.DB) *int64 {
	t.Helper()
	var n int64
	name := "test:count_inserts_" + uuid.NewString()
	err := db.Callback().Create().After("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Error == nil && tx.Statement.RowsAffected > 0 {
			atomic.AddInt64(&n, 1)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return &n
}

func seedCurrentUser(t *testing.T, db *gorm.DB, mutate ...func(*domain.User)) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString()[:8] + "@farm.test",
		FirstName: "Ada",
		LastName:  "Grower",
	}
	for _, m := range mutate {
		m(u)
	}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed current user: %v", err)
	}
	return u
}

func seedLegacyUser(t *testing.T, db *gorm.DB, id, email, password string) *domain.LegacyUser {
	t.Helper()
	u := &domain.LegacyUser{
		UserID:    id,
		FirstName: "Old",
		LastName:  "Timer",
		Email:     email,
		Password:  HashPassword(password),
	}
	if err := repo.CreateLegacyUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed legacy user: %v", err)
	}
	return u
}

func withCoordinates(lat, lon float64) func(*domain.User) {
	return func(u *domain.User) {
		u.FarmLatitude = &lat
		u.FarmLongitude = &lon
	}
}

func fptr(v float64) *float64 { return &v }

func countRows(t *testing.T, db *gorm.DB, model any, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
