package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/defaults"
	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/observability"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// MarketView is the nearest market as shown on the dashboard.
type MarketView struct {
	Name     string
	Distance string
}

// DashboardView is the unified dashboard read model. CurrentRank is nil for
// profiles resolved against the legacy schema.
type DashboardView struct {
	Identity        domain.Identity
	FirstName       string
	LastName        string
	CreditPoints    int
	CurrentRank     *string
	FarmHealth      float64
	ActiveNeighbors int64
	NearestMarket   MarketView
}

// DashboardService assembles DashboardView from whichever schema holds the
// profile, seeding credit metrics on first read.
type DashboardService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewDashboardService constructs a DashboardService over db.
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db, Now: time.Now}
}

// Get returns the dashboard for id. ErrUserNotFound is the only
// data-dependent error; missing metrics fall back to fixed values.
func (s *DashboardService) Get(ctx context.Context, id string) (*DashboardView, error) {
	ctx, span := otel.Tracer("services/DashboardService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	var (
		rp      domain.ResolvedProfile
		credits *domain.CreditMetrics
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if rp, err = resolveIn(ctx, tx, id); err != nil {
			return err
		}
		credits, err = ensureCredits(ctx, tx, rp.Identity.ID)
		return err
	})
	if err != nil {
		return nil, dependency("dashboard", err)
	}
	if rp.Identity.IsLegacy() {
		return legacyDashboard(rp, credits), nil
	}
	// Joins run after commit: a failed statement aborts a postgres
	// transaction, which would turn an absorbed join failure into a 500.
	return s.currentDashboard(ctx, s.DB.WithContext(ctx), rp, credits), nil
}

// ensureCredits reads the credit row, inserting the defaults first when the
// user has none.
func ensureCredits(ctx context.Context, tx *gorm.DB, userID string) (*domain.CreditMetrics, error) {
	c, err := repo.GetCredits(ctx, tx, userID)
	if err == nil {
		observability.ObserveBackfill("credits", observability.BackfillHit)
		return c, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	seed := defaults.Credits(userID)
	if _, err := repo.InsertCreditsIfAbsent(ctx, tx, &seed); err != nil {
		return nil, err
	}
	observability.ObserveBackfill("credits", observability.BackfillSeeded)
	return repo.GetCredits(ctx, tx, userID)
}

func legacyDashboard(rp domain.ResolvedProfile, c *domain.CreditMetrics) *DashboardView {
	return &DashboardView{
		Identity:        rp.Identity,
		FirstName:       rp.Profile.FirstName,
		LastName:        rp.Profile.LastName,
		CreditPoints:    c.TotalPoints,
		FarmHealth:      defaults.LegacyFarmHealth,
		ActiveNeighbors: defaults.LegacyActiveNeighbors,
		NearestMarket:   defaultMarket(),
	}
}

// currentDashboard joins the optional metrics. Each join is best-effort: a
// missing row or a failed read is replaced by its fallback constant.
func (s *DashboardService) currentDashboard(ctx context.Context, db *gorm.DB, rp domain.ResolvedProfile, c *domain.CreditMetrics) *DashboardView {
	userID := rp.Identity.ID
	rank := c.CurrentRank
	if rank == "" {
		rank = defaults.CreditRank
	}
	v := &DashboardView{
		Identity:        rp.Identity,
		FirstName:       rp.Profile.FirstName,
		LastName:        rp.Profile.LastName,
		CreditPoints:    c.TotalPoints,
		CurrentRank:     &rank,
		FarmHealth:      defaults.FarmHealth,
		ActiveNeighbors: defaults.ActiveNeighbors,
		NearestMarket:   defaultMarket(),
	}

	if h, err := repo.GetHealthForDay(ctx, db, userID, s.Now()); err == nil {
		if h.OverallHealthScore != nil {
			v.FarmHealth = *h.OverallHealthScore
		}
	} else {
		logJoinMiss("health", userID, err)
	}

	if n, err := repo.CountActiveNeighbors(ctx, db, userID); err == nil {
		v.ActiveNeighbors = n
	} else {
		logJoinMiss("neighbors", userID, err)
	}

	if m, err := repo.NearestMarket(ctx, db); err == nil {
		v.NearestMarket = MarketView{Name: m.MarketName, Distance: formatKm(m.DistanceKm)}
	} else {
		logJoinMiss("market", userID, err)
	}
	return v
}

func logJoinMiss(join, userID string, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		return
	}
	log.Warn().Err(err).Str("join", join).Str("user_id", userID).Msg("dashboard join failed; using fallback")
}

func defaultMarket() MarketView {
	m := defaults.NearestMarket()
	return MarketView{Name: m.Name, Distance: formatKm(m.DistanceKm)}
}

// formatKm renders a distance the way the dashboard displays it, e.g. "12km".
func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64) + "km"
}
