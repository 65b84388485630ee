package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// LatestSoilSample returns the most recently updated sample for userID across
// all zones, or ErrNotFound.
func LatestSoilSample(ctx context.Context, db *gorm.DB, userID string) (*domain.SoilSample, error) {
	var s domain.SoilSample
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("date DESC").
		Order("id DESC").
		Take(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertSoilIfAbsent inserts s unless (user_id, zone_id, date) is already
// stored and reports how many rows were written.
func InsertSoilIfAbsent(ctx context.Context, db *gorm.DB, s *domain.SoilSample) (int64, error) {
	res := db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(onConflictDoNothing("user_id", "zone_id", "date")).
		Create(s)
	return res.RowsAffected, res.Error
}

// UpsertSoilSamples writes ingested soil readings, replacing any stored
// reading for the same (user_id, zone_id, date).
func UpsertSoilSamples(ctx context.Context, db *gorm.DB, rows []domain.SoilSample) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(onConflictUpdate(
			[]string{"user_id", "zone_id", "date"},
			"soil_moisture_0_5cm", "soil_temperature_0_5cm", "surface_wetness", "updated_at",
		)).
		Create(&rows).Error
}
