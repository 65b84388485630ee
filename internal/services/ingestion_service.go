package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/defaults"
	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/nasa"
	"github.com/tbourn/farm-dashboard-backend/internal/observability"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// Source fetches an agro-climate series for a coordinate; *nasa.Client
// satisfies it.
type Source interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) (nasa.Series, error)
}

// IngestResult reports what one ingestion run wrote.
type IngestResult struct {
	UserID      string
	ZoneID      uint
	WeatherRows int
	SoilRows    int
}

// IngestionService pulls the trailing NASA POWER window for a farm and
// upserts it into the weather and soil tables.
//
// Run is the synchronous primitive. Ingest, Trigger and IngestAll are the
// background entry points: they log failures and never return them.
type IngestionService struct {
	DB         *gorm.DB
	Source     Source
	WindowDays int
	RunTimeout time.Duration
	Now        func() time.Time

	wg sync.WaitGroup
}

// NewIngestionService constructs an IngestionService.
func NewIngestionService(db *gorm.DB, src Source, windowDays int, runTimeout time.Duration) *IngestionService {
	if windowDays < 1 {
		windowDays = 30
	}
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	return &IngestionService{
		DB:         db,
		Source:     src,
		WindowDays: windowDays,
		RunTimeout: runTimeout,
		Now:        time.Now,
	}
}

// Run ingests the trailing window for userID. It returns ErrUserNotFound,
// ErrLegacyProfile or ErrNoCoordinates when the user cannot be ingested, and
// a DependencyError when the fetch or the store fails. Both batches are
// written in one transaction, so a failed run leaves no partial data.
func (s *IngestionService) Run(ctx context.Context, userID string) (IngestResult, error) {
	ctx, span := otel.Tracer("services/IngestionService").Start(ctx, "Run",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	res := IngestResult{UserID: userID}

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if _, lerr := repo.GetLegacyUser(ctx, s.DB, userID); lerr == nil {
				return res, ErrLegacyProfile
			}
			return res, ErrUserNotFound
		}
		return res, dependency("load profile", err)
	}
	if !u.HasCoordinates() {
		return res, ErrNoCoordinates
	}

	end := domain.DateOf(s.Now())
	start := end.AddDate(0, 0, -s.WindowDays)
	series, err := s.Source.FetchDaily(ctx, *u.FarmLatitude, *u.FarmLongitude, start, end)
	if err != nil {
		return res, dependency("fetch nasa power", err)
	}
	dates := series.Dates()
	span.SetAttributes(attribute.Int("ingest.days", len(dates)))
	if len(dates) == 0 {
		return res, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		zone, err := repo.EnsureZone(ctx, tx, defaults.IngestionZone(userID))
		if err != nil {
			return err
		}
		weather, soil := buildRows(userID, zone.ID, series, dates)
		if err := repo.UpsertWeatherObservations(ctx, tx, weather); err != nil {
			return err
		}
		if err := repo.UpsertSoilSamples(ctx, tx, soil); err != nil {
			return err
		}
		res.ZoneID = zone.ID
		res.WeatherRows = len(weather)
		res.SoilRows = len(soil)
		return nil
	})
	if err != nil {
		return IngestResult{UserID: userID}, dependency("store nasa power", err)
	}
	return res, nil
}

// buildRows maps one series to a weather and a soil row per date. Missing
// readings stay nil.
func buildRows(userID string, zoneID uint, series nasa.Series, dates []time.Time) ([]domain.WeatherObservation, []domain.SoilSample) {
	weather := make([]domain.WeatherObservation, 0, len(dates))
	soil := make([]domain.SoilSample, 0, len(dates))
	for _, d := range dates {
		weather = append(weather, domain.WeatherObservation{
			UserID:           userID,
			Date:             d,
			Temperature2mAvg: series.Value(nasa.ParamT2M, d),
			Temperature2mMax: series.Value(nasa.ParamT2MMax, d),
			Temperature2mMin: series.Value(nasa.ParamT2MMin, d),
			Precipitation:    series.Value(nasa.ParamPrecip, d),
			RelativeHumidity: series.Value(nasa.ParamRH2M, d),
			WindSpeed10m:     series.Value(nasa.ParamWS10M, d),
			Eto:              series.Value(nasa.ParamEvapotransp, d),
		})

		var wetness *float64
		if v := series.Value(nasa.ParamGWETTop, d); v != nil {
			pct := *v * 100
			wetness = &pct
		}
		soil = append(soil, domain.SoilSample{
			UserID:              userID,
			ZoneID:              zoneID,
			Date:                d,
			SoilMoisture0To5cm:  series.Value(nasa.ParamGWETRoot, d),
			SoilTemperature0To5: series.Value(nasa.ParamSkinTemp, d),
			SurfaceWetness:      wetness,
		})
	}
	return weather, soil
}

// Ingest runs one ingestion for userID, bounded by RunTimeout. Failures are
// logged and counted, never returned.
func (s *IngestionService) Ingest(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, s.RunTimeout)
	defer cancel()

	res, err := s.Run(ctx, userID)
	switch {
	case errors.Is(err, ErrNoCoordinates), errors.Is(err, ErrLegacyProfile), errors.Is(err, ErrUserNotFound):
		observability.ObserveIngestion(observability.IngestSkipped, 0, 0)
		log.Info().Str("user_id", userID).Err(err).Msg("nasa ingestion skipped")
	case err != nil:
		observability.ObserveIngestion(observability.IngestFailed, 0, 0)
		log.Error().Str("user_id", userID).Err(err).Msg("nasa ingestion failed")
	default:
		observability.ObserveIngestion(observability.IngestSuccess, res.WeatherRows, res.SoilRows)
		log.Info().
			Str("user_id", userID).
			Uint("zone_id", res.ZoneID).
			Int("weather_rows", res.WeatherRows).
			Int("soil_rows", res.SoilRows).
			Msg("nasa ingestion complete")
	}
}

// Trigger starts Ingest for userID in the background, detached from any
// request context. Wait blocks until every triggered run has finished.
func (s *IngestionService) Trigger(userID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Ingest(context.Background(), userID)
	}()
}

// Wait blocks until all runs started by Trigger return.
func (s *IngestionService) Wait() { s.wg.Wait() }

// IngestAll ingests every current-schema user with farm coordinates, one
// after another. It returns the number of users attempted.
func (s *IngestionService) IngestAll(ctx context.Context) int {
	ids, err := repo.ListUserIDsWithCoordinates(ctx, s.DB)
	if err != nil {
		log.Error().Err(err).Msg("nasa ingestion: list users failed")
		return 0
	}
	n := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int("remaining", len(ids)-n).Msg("nasa ingestion sweep interrupted")
			break
		}
		s.Ingest(ctx, id)
		n++
	}
	return n
}
