package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// priorityRank orders High, Medium, Watch, then anything else.
const priorityRank = "CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Watch' THEN 3 ELSE 4 END"

// ListActiveRecommendations returns the active recommendations of userID
// whose validity window contains today. A nil bound is open. Rows are
// ordered by priority tier, then newest first within a tier.
func ListActiveRecommendations(ctx context.Context, db *gorm.DB, userID string, today time.Time) ([]domain.Recommendation, error) {
	day := domain.DateOf(today)
	var out []domain.Recommendation
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.RecommendationActive).
		Where("time_window_start IS NULL OR time_window_start <= ?", day).
		Where("time_window_end IS NULL OR time_window_end >= ?", day).
		Order(priorityRank).
		Order("created_at DESC").
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// InsertRecommendationsIfAbsent inserts the rows whose (user_id, title) is
// not stored yet and reports how many were written.
func InsertRecommendationsIfAbsent(ctx context.Context, db *gorm.DB, rows []domain.Recommendation) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Clauses(onConflictDoNothing("user_id", "title")).Create(&rows)
	return res.RowsAffected, res.Error
}
