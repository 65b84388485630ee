package services

import (
	"context"
	"errors"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// Trigger starts a background ingestion run for a user.
type Trigger interface {
	Trigger(userID string)
}

// LocationService updates farm coordinates and kicks off ingestion.
type LocationService struct {
	DB     *gorm.DB
	Ingest Trigger
}

// NewLocationService constructs a LocationService.
func NewLocationService(db *gorm.DB, t Trigger) *LocationService {
	return &LocationService{DB: db, Ingest: t}
}

// UpdateFarmLocation stores loc on the current-schema profile id and
// triggers an ingestion run for it.
func (s *LocationService) UpdateFarmLocation(ctx context.Context, id string, loc repo.FarmLocation) (domain.UserProfile, error) {
	ctx, span := otel.Tracer("services/LocationService").Start(ctx, "UpdateFarmLocation",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	if err := validateLocation(loc); err != nil {
		return domain.UserProfile{}, err
	}

	var out domain.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rp, err := resolveIn(ctx, tx, id)
		if err != nil {
			return err
		}
		if rp.Identity.IsLegacy() {
			return ErrLegacyProfile
		}
		u, err := repo.UpdateFarmLocation(ctx, tx, rp.Identity.ID, loc)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		out = domain.ProfileFromUser(*u)
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, dependency("update farm location", err)
	}
	if s.Ingest != nil {
		s.Ingest.Trigger(out.ID)
	}
	return out, nil
}

// Refresh triggers an ingestion run for id after checking it resolves.
func (s *LocationService) Refresh(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/LocationService").Start(ctx, "Refresh",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	rp, err := resolveIn(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if s.Ingest != nil {
		s.Ingest.Trigger(rp.Identity.ID)
	}
	return nil
}

func validateLocation(loc repo.FarmLocation) error {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return invalid("latitude must be within [-90, 90]")
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return invalid("longitude must be within [-180, 180]")
	}
	if loc.SizeHectares != nil && (math.IsNaN(*loc.SizeHectares) || *loc.SizeHectares < 0) {
		return invalid("sizeHectares must be non-negative")
	}
	return nil
}
