package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// GetHealthForDay returns the health row of userID dated day, or ErrNotFound.
func GetHealthForDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*domain.FarmHealthMetric, error) {
	var h domain.FarmHealthMetric
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, domain.DateOf(day)).
		Take(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CountActiveNeighbors counts the neighbors of userID currently collaborating.
func CountActiveNeighbors(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.FarmNeighbor{}).
		Where("user_id = ? AND collaboration_status = ?", userID, "active").
		Count(&n).Error
	return n, err
}

// NearestMarket returns the market with the smallest distance, or ErrNotFound.
func NearestMarket(ctx context.Context, db *gorm.DB) (*domain.MarketData, error) {
	var m domain.MarketData
	err := db.WithContext(ctx).
		Order("distance_km ASC").
		Order("id ASC").
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
