package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

func priorities(rs []domain.Recommendation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Priority
	}
	return out
}

func TestRecommendationService_List_SeedsCannedSetOnce(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	s := NewRecommendationService(db)
	ctx := context.Background()

	got, err := s.List(ctx, u.ID, testToday)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if p := priorities(got); len(p) != 3 || p[0] != "High" || p[1] != "Medium" || p[2] != "Watch" {
		t.Fatalf("priorities = %v", p)
	}
	for _, r := range got {
		if r.ZoneID == nil {
			t.Fatalf("seeded recommendation %q has no zone", r.Title)
		}
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, err := repo.GetZone(ctx, db, u.ID, name); err != nil {
			t.Fatalf("zone %s missing: %v", name, err)
		}
	}

	inserts := countInserts(t, db)
	again, err := s.List(ctx, u.ID, testToday)
	if err != nil {
		t.Fatalf("List again: %v", err)
	}
	if *inserts != 0 {
		t.Fatalf("second read inserted %d rows", *inserts)
	}
	if len(again) != 3 || again[0].ID != got[0].ID {
		t.Fatalf("second read differs")
	}

	// Re-seeding the same titles is a no-op.
	n, err := repo.InsertRecommendationsIfAbsent(ctx, db, []domain.Recommendation{{UserID: u.ID, Title: got[0].Title, Priority: "Watch", Status: "active"}})
	if err != nil || n != 0 {
		t.Fatalf("reseed: n=%d err=%v", n, err)
	}
	if c := countRows(t, db, &domain.Recommendation{}, u.ID); c != 3 {
		t.Fatalf("row count = %d, want 3", c)
	}
}

func TestRecommendationService_List_OrdersByPriorityTier(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Recommendation{
		{UserID: u.ID, Title: "w", Priority: "Watch", Status: "active", CreatedAt: base},
		{UserID: u.ID, Title: "x", Priority: "Low", Status: "active", CreatedAt: base},
		{UserID: u.ID, Title: "h", Priority: "High", Status: "active", CreatedAt: base},
		{UserID: u.ID, Title: "m-old", Priority: "Medium", Status: "active", CreatedAt: base},
		{UserID: u.ID, Title: "m-new", Priority: "Medium", Status: "active", CreatedAt: base.Add(time.Hour)},
	}
	must(t, db.Create(&rows).Error)

	got, err := NewRecommendationService(db).List(ctx, u.ID, testToday)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var titles []string
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	want := []string{"h", "m-new", "m-old", "w", "x"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v", titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}
}

func TestRecommendationService_List_WindowAndStatusFilter(t *testing.T) {
	db := newSvcDB(t)
	u := seedCurrentUser(t, db)
	ctx := context.Background()
	today := domain.DateOf(testToday)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	rows := []domain.Recommendation{
		{UserID: u.ID, Title: "expired", Priority: "High", Status: "active", TimeWindowEnd: &yesterday},
		{UserID: u.ID, Title: "future", Priority: "High", Status: "active", TimeWindowStart: &tomorrow},
		{UserID: u.ID, Title: "inactive", Priority: "High", Status: "inactive"},
		{UserID: u.ID, Title: "open", Priority: "Watch", Status: "active"},
		{UserID: u.ID, Title: "today", Priority: "Medium", Status: "active", TimeWindowStart: &today, TimeWindowEnd: &today},
	}
	must(t, db.Create(&rows).Error)

	got, err := NewRecommendationService(db).List(ctx, u.ID, testToday)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Title != "today" || got[1].Title != "open" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestRecommendationService_List_Legacy(t *testing.T) {
	db := newSvcDB(t)
	seedLegacyUser(t, db, "user_1", "old@farm.test", "pw")

	got, err := NewRecommendationService(db).List(context.Background(), "user_1", testToday)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != 1 || got[0].Priority != "High" {
		t.Fatalf("legacy recommendations = %+v", got)
	}
	if n := countRows(t, db, &domain.Recommendation{}, "user_1"); n != 0 {
		t.Fatalf("legacy recommendations persisted %d rows", n)
	}
}
