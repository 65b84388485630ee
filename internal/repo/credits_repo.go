package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// GetCredits returns the credit row for userID, or ErrNotFound.
func GetCredits(ctx context.Context, db *gorm.DB, userID string) (*domain.CreditMetrics, error) {
	var c domain.CreditMetrics
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCreditsIfAbsent inserts c unless the user already has a credit row.
// It reports how many rows were written (0 or 1).
func InsertCreditsIfAbsent(ctx context.Context, db *gorm.DB, c *domain.CreditMetrics) (int64, error) {
	res := db.WithContext(ctx).Clauses(onConflictDoNothing("user_id")).Create(c)
	return res.RowsAffected, res.Error
}
