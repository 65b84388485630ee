package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/defaults"
	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/observability"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// RecommendationService serves the active advisories of a user, seeding the
// canned set on the first read that finds none.
type RecommendationService struct {
	DB *gorm.DB
}

// NewRecommendationService constructs a RecommendationService over db.
func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{DB: db}
}

// List returns the active, in-window recommendations ordered High, Medium,
// Watch, then others, newest first within a tier.
func (s *RecommendationService) List(ctx context.Context, id string, today time.Time) ([]domain.Recommendation, error) {
	ctx, span := otel.Tracer("services/RecommendationService").Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	var out []domain.Recommendation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rp, err := resolveIn(ctx, tx, id)
		if err != nil {
			return err
		}
		userID := rp.Identity.ID
		if rp.Identity.IsLegacy() {
			observability.ObserveBackfill("recommendations", observability.BackfillLegacy)
			out = defaults.LegacyRecommendations(userID)
			return nil
		}

		rows, err := repo.ListActiveRecommendations(ctx, tx, userID, today)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			observability.ObserveBackfill("recommendations", observability.BackfillHit)
			out = rows
			return nil
		}

		zones, err := repo.EnsureZones(ctx, tx, defaults.RecommendationZones(userID))
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(zones))
		for _, z := range zones {
			ids = append(ids, z.ID)
		}
		if _, err := repo.InsertRecommendationsIfAbsent(ctx, tx, defaults.Recommendations(userID, ids)); err != nil {
			return err
		}
		observability.ObserveBackfill("recommendations", observability.BackfillSeeded)
		out, err = repo.ListActiveRecommendations(ctx, tx, userID, today)
		return err
	})
	if err != nil {
		return nil, dependency("recommendations", err)
	}
	return out, nil
}
