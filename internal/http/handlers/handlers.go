// Package handlers exposes the farm dashboard REST endpoints:
//   - POST /signup, POST /signin                       (auth)
//   - GET  /dashboard/{id}                             (dashboard)
//   - GET  /weather-forecast/{id}, /soil-conditions/{id} (time series)
//   - GET  /ai-recommendations/{id}                    (recommendations)
//   - PUT  /farm-location/{id}, POST /nasa-refresh/{id} (farm data)
//
// Handlers are transport-thin: they bind input, call application services,
// and translate results and errors into HTTP responses. Error translation
// happens only in writeError.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
	"github.com/tbourn/farm-dashboard-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// DashboardService builds the unified dashboard for a profile id.
type DashboardService interface {
	Get(ctx context.Context, id string) (*services.DashboardView, error)
}

// TimeSeriesService serves weather and soil data, backfilling defaults.
type TimeSeriesService interface {
	Weather(ctx context.Context, id string, today time.Time) ([]domain.WeatherForecast, error)
	Soil(ctx context.Context, id string, today time.Time) (services.SoilReading, error)
}

// RecommendationService serves active advisories, backfilling defaults.
type RecommendationService interface {
	List(ctx context.Context, id string, today time.Time) ([]domain.Recommendation, error)
}

// AuthService registers and authenticates profiles.
type AuthService interface {
	SignUp(ctx context.Context, key string, in services.SignUpInput) (domain.UserProfile, bool, error)
	SignIn(ctx context.Context, email, password string) (domain.UserProfile, error)
}

// LocationService maintains farm coordinates and schedules ingestion.
type LocationService interface {
	UpdateFarmLocation(ctx context.Context, id string, loc repo.FarmLocation) (domain.UserProfile, error)
	Refresh(ctx context.Context, id string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. It depends on service interfaces only.
type Handlers struct {
	dashSvc DashboardService
	tsSvc   TimeSeriesService
	recSvc  RecommendationService
	authSvc AuthService
	locSvc  LocationService
	now     func() time.Time
}

// New constructs Handlers bound to the given services and the wall clock.
func New(dash DashboardService, ts TimeSeriesService, rec RecommendationService, auth AuthService, loc LocationService) *Handlers {
	return &Handlers{
		dashSvc: dash,
		tsSvc:   ts,
		recSvc:  rec,
		authSvc: auth,
		locSvc:  loc,
		now:     time.Now,
	}
}

// WithClock overrides the clock used to compute "today". Intended for tests.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

func (h *Handlers) today() time.Time { return domain.DateOf(h.now()) }
