package services

import (
	"context"
	"errors"
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

// SoilReading is the soil view returned to callers.
type SoilReading struct {
	Moisture    float64
	Nitrogen    float64
	PH          float64
	Temperature float64
}

// TimeSeriesService serves weather forecasts and soil readings, persisting
// the synthetic defaults the first time a current-schema user has none.
type TimeSeriesService struct {
	DB *gorm.DB
}

// NewTimeSeriesService constructs a TimeSeriesService over db.
func NewTimeSeriesService(db *gorm.DB) *TimeSeriesService {
	return &TimeSeriesService{DB: db}
}

// Weather returns up to defaults.ForecastDays forecast entries dated today or
// later, ordered by date.
//
// For current-schema users an empty window is backfilled: the synthetic
// forecast is inserted with do-nothing-on-conflict and the window re-read in
// the same transaction, so a concurrent winner's rows are what is returned.
// Legacy users get the short synthetic forecast without persistence.
func (s *TimeSeriesService) Weather(ctx context.Context, id string, today time.Time) ([]domain.WeatherForecast, error) {
	ctx, span := otel.Tracer("services/TimeSeriesService").Start(ctx, "Weather",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	var out []domain.WeatherForecast
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rp, err := resolveIn(ctx, tx, id)
		if err != nil {
			return err
		}
		userID := rp.Identity.ID
		if rp.Identity.IsLegacy() {
			observability.ObserveBackfill("weather", observability.BackfillLegacy)
			out = defaults.LegacyForecast(userID, today)
			return nil
		}

		rows, err := repo.ListForecast(ctx, tx, userID, today, defaults.ForecastDays)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			observability.ObserveBackfill("weather", observability.BackfillHit)
			out = rows
			return nil
		}

		if _, err := repo.InsertForecastIfAbsent(ctx, tx, defaults.Forecast(userID, today)); err != nil {
			return err
		}
		observability.ObserveBackfill("weather", observability.BackfillSeeded)
		out, err = repo.ListForecast(ctx, tx, userID, today, defaults.ForecastDays)
		return err
	})
	if err != nil {
		return nil, dependency("weather forecast", err)
	}
	return out, nil
}

// Soil returns the latest soil reading. Nitrogen and pH are constants; for
// current-schema users moisture and temperature come from the most recently
// updated sample, which is backfilled into the default soil zone when the
// user has none.
func (s *TimeSeriesService) Soil(ctx context.Context, id string, today time.Time) (SoilReading, error) {
	ctx, span := otel.Tracer("services/TimeSeriesService").Start(ctx, "Soil",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	var out SoilReading
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rp, err := resolveIn(ctx, tx, id)
		if err != nil {
			return err
		}
		if rp.Identity.IsLegacy() {
			observability.ObserveBackfill("soil", observability.BackfillLegacy)
			out = legacySoil()
			return nil
		}

		sample, err := ensureSoilSample(ctx, tx, rp.Identity.ID, today)
		if err != nil {
			return err
		}
		out = soilFromSample(sample)
		return nil
	})
	if err != nil {
		return SoilReading{}, dependency("soil conditions", err)
	}
	return out, nil
}

func ensureSoilSample(ctx context.Context, tx *gorm.DB, userID string, today time.Time) (*domain.SoilSample, error) {
	sample, err := repo.LatestSoilSample(ctx, tx, userID)
	if err == nil {
		observability.ObserveBackfill("soil", observability.BackfillHit)
		return sample, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	zone, err := repo.EnsureZone(ctx, tx, defaults.SoilZone(userID))
	if err != nil {
		return nil, err
	}
	seed := defaults.SoilSample(userID, zone.ID, today)
	if _, err := repo.InsertSoilIfAbsent(ctx, tx, &seed); err != nil {
		return nil, err
	}
	observability.ObserveBackfill("soil", observability.BackfillSeeded)
	return repo.LatestSoilSample(ctx, tx, userID)
}

func legacySoil() SoilReading {
	return SoilReading{
		Moisture:    defaults.SoilMoisture,
		Nitrogen:    defaults.SoilNitrogen,
		PH:          defaults.SoilPH,
		Temperature: defaults.SoilTemperature,
	}
}

// soilFromSample maps a stored sample to the view. Ingested rows may carry
// missing readings; those fall back to the sample defaults.
func soilFromSample(s *domain.SoilSample) SoilReading {
	r := SoilReading{
		Moisture:    defaults.SampleSurfaceWetness,
		Nitrogen:    defaults.SoilNitrogen,
		PH:          defaults.SoilPH,
		Temperature: defaults.SampleTemperature,
	}
	if s.SurfaceWetness != nil {
		r.Moisture = *s.SurfaceWetness
	}
	if s.SoilTemperature0To5 != nil {
		r.Temperature = *s.SoilTemperature0To5
	}
	return r
}
