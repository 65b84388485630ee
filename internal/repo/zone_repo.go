package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// EnsureZone creates the zone if (user_id, zone_name) is not taken yet and
// returns the stored row either way. An existing zone keeps its attributes.
func EnsureZone(ctx context.Context, db *gorm.DB, z domain.FarmZone) (*domain.FarmZone, error) {
	if err := db.WithContext(ctx).Clauses(onConflictDoNothing("user_id", "zone_name")).Create(&z).Error; err != nil {
		return nil, err
	}
	// The insert may have been a no-op, so the id comes from a re-read.
	return GetZone(ctx, db, z.UserID, z.ZoneName)
}

// EnsureZones applies EnsureZone to each zone and returns the stored rows in
// input order.
func EnsureZones(ctx context.Context, db *gorm.DB, zones []domain.FarmZone) ([]domain.FarmZone, error) {
	out := make([]domain.FarmZone, 0, len(zones))
	for _, z := range zones {
		got, err := EnsureZone(ctx, db, z)
		if err != nil {
			return nil, err
		}
		out = append(out, *got)
	}
	return out, nil
}

// GetZone fetches a zone by its natural key, or ErrNotFound.
func GetZone(ctx context.Context, db *gorm.DB, userID, name string) (*domain.FarmZone, error) {
	var z domain.FarmZone
	err := db.WithContext(ctx).
		Where("user_id = ? AND zone_name = ?", userID, name).
		Take(&z).Error
	if err != nil {
		return nil, err
	}
	return &z, nil
}
