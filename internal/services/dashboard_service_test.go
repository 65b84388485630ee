package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

func TestDashboardService_Get_NewCurrentUserUsesFallbacks(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	s := NewDashboardService(db)
	s.Now = func() time.Time { return testToday }

	v, err := s.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.CreditPoints != 1247 || v.CurrentRank == nil || *v.CurrentRank != "Gold" {
		t.Fatalf("credits: %+v rank=%v", v, v.CurrentRank)
	}
	if v.FarmHealth != 85.0 || v.ActiveNeighbors != 0 {
		t.Fatalf("fallbacks: health=%v neighbors=%v", v.FarmHealth, v.ActiveNeighbors)
	}
	if v.NearestMarket.Name != "Green Valley Market" || v.NearestMarket.Distance != "12km" {
		t.Fatalf("market: %+v", v.NearestMarket)
	}

	// Credits were seeded durably.
	c, err := repo.GetCredits(context.Background(), db, u.ID)
	if err != nil || c.TotalPoints != 1247 {
		t.Fatalf("credits row: %+v err=%v", c, err)
	}
}

func TestDashboardService_Get_JoinsStoredMetrics(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	ctx := context.Background()

	if _, err := repo.InsertCreditsIfAbsent(ctx, db, &domain.CreditMetrics{UserID: u.ID, TotalPoints: 40, CurrentRank: "Bronze"}); err != nil {
		t.Fatal(err)
	}
	must(t, db.Create(&domain.FarmHealthMetric{UserID: u.ID, Date: domain.DateOf(testToday), OverallHealthScore: fptr(91.5)}).Error)
	must(t, db.Create(&domain.FarmHealthMetric{UserID: u.ID, Date: domain.DateOf(testToday).AddDate(0, 0, -1), OverallHealthScore: fptr(10)}).Error)
	must(t, db.Create(&domain.FarmNeighbor{UserID: u.ID, NeighborName: "North", CollaborationStatus: "active"}).Error)
	must(t, db.Create(&domain.FarmNeighbor{UserID: u.ID, NeighborName: "South", CollaborationStatus: "active"}).Error)
	must(t, db.Create(&domain.FarmNeighbor{UserID: u.ID, NeighborName: "East", CollaborationStatus: "potential"}).Error)
	must(t, db.Create(&domain.MarketData{MarketName: "Far Market", DistanceKm: 40}).Error)
	must(t, db.Create(&domain.MarketData{MarketName: "Corner Market", DistanceKm: 3.5}).Error)

	s := NewDashboardService(db)
	s.Now = func() time.Time { return testToday }
	v, err := s.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.CreditPoints != 40 || *v.CurrentRank != "Bronze" {
		t.Fatalf("stored credits not used: %+v", v)
	}
	if v.FarmHealth != 91.5 {
		t.Fatalf("health = %v, want today's row", v.FarmHealth)
	}
	if v.ActiveNeighbors != 2 {
		t.Fatalf("neighbors = %d, want 2", v.ActiveNeighbors)
	}
	if v.NearestMarket.Name != "Corner Market" || v.NearestMarket.Distance != "3.5km" {
		t.Fatalf("market = %+v", v.NearestMarket)
	}
}

func TestDashboardService_Get_LegacyHasNoRank(t *testing.T) {
	db := newSvcDB(t)
	seedLegacyUser(t, db, "user_1712345678_ab12", "old@farm.test", "pw")

	v, err := NewDashboardService(db).Get(context.Background(), "user_1712345678_ab12")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.CurrentRank != nil {
		t.Fatalf("legacy view must not carry a rank")
	}
	if v.FirstName != "Old" || v.CreditPoints != 1247 || v.FarmHealth != 94 || v.ActiveNeighbors != 23 {
		t.Fatalf("legacy view = %+v", v)
	}
	if !v.Identity.IsLegacy() {
		t.Fatalf("identity = %+v", v.Identity)
	}
}

func TestDashboardService_Get_FailedJoinsRunOutsideTransaction(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	s := NewDashboardService(db)
	s.Now = func() time.Time { return testToday }

	joins := map[string]bool{
		(domain.FarmHealthMetric{}).TableName(): true,
		(domain.FarmNeighbor{}).TableName():     true,
		(domain.MarketData{}).TableName():       true,
	}
	var inTx []string
	err := db.Callback().Query().Before("gorm:query").Register("test:fail_joins", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || !joins[tx.Statement.Schema.Table] {
			return
		}
		if _, ok := tx.Statement.ConnPool.(gorm.TxCommitter); ok {
			inTx = append(inTx, tx.Statement.Schema.Table)
		}
		_ = tx.AddError(errors.New("relation does not exist"))
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	v, err := s.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(inTx) != 0 {
		t.Fatalf("joins ran inside the credits transaction: %v", inTx)
	}
	if v.FarmHealth != 85.0 || v.ActiveNeighbors != 0 || v.NearestMarket.Name != "Green Valley Market" {
		t.Fatalf("fallbacks not applied: %+v", v)
	}
	if n := countRows(t, db, &domain.CreditMetrics{}, u.ID); n != 1 {
		t.Fatalf("credits rows = %d, want 1", n)
	}
}

func TestDashboardService_Get_NotFound(t *testing.T) {
	db := newSvcDB(t)
	_, err := NewDashboardService(db).Get(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	var n int64
	db.Model(&domain.CreditMetrics{}).Count(&n)
	if n != 0 {
		t.Fatalf("no credits may be seeded for unknown ids, got %d", n)
	}
}

func TestFormatKm(t *testing.T) {
	for in, want := range map[float64]string{12: "12km", 3.5: "3.5km", 0: "0km"} {
		if got := formatKm(in); got != want {
			t.Fatalf("formatKm(%v) = %q, want %q", in, got, want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
