package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/http/middleware"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
	"github.com/tbourn/farm-dashboard-backend/internal/services"
)

// ---------- fakes ----------

type fakeDashboard struct {
	view *services.DashboardView
	err  error
}

func (f fakeDashboard) Get(context.Context, string) (*services.DashboardView, error) {
	return f.view, f.err
}

type fakeTimeSeries struct {
	forecast []domain.WeatherForecast
	soil     services.SoilReading
	err      error
	gotToday time.Time
}

func (f *fakeTimeSeries) Weather(_ context.Context, _ string, today time.Time) ([]domain.WeatherForecast, error) {
	f.gotToday = today
	return f.forecast, f.err
}

func (f *fakeTimeSeries) Soil(_ context.Context, _ string, today time.Time) (services.SoilReading, error) {
	f.gotToday = today
	return f.soil, f.err
}

type fakeRecs struct {
	recs []domain.Recommendation
	err  error
}

func (f fakeRecs) List(context.Context, string, time.Time) ([]domain.Recommendation, error) {
	return f.recs, f.err
}

type fakeAuth struct {
	profile  domain.UserProfile
	replayed bool
	err      error
	gotKey   string
	gotIn    services.SignUpInput
}

func (f *fakeAuth) SignUp(_ context.Context, key string, in services.SignUpInput) (domain.UserProfile, bool, error) {
	f.gotKey, f.gotIn = key, in
	return f.profile, f.replayed, f.err
}

func (f *fakeAuth) SignIn(context.Context, string, string) (domain.UserProfile, error) {
	return f.profile, f.err
}

type fakeLocation struct {
	profile   domain.UserProfile
	err       error
	gotLoc    repo.FarmLocation
	refreshed string
}

func (f *fakeLocation) UpdateFarmLocation(_ context.Context, _ string, loc repo.FarmLocation) (domain.UserProfile, error) {
	f.gotLoc = loc
	return f.profile, f.err
}

func (f *fakeLocation) Refresh(_ context.Context, id string) error {
	f.refreshed = id
	return f.err
}

// ---------- harness ----------

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type deps struct {
	dash fakeDashboard
	ts   *fakeTimeSeries
	recs fakeRecs
	auth *fakeAuth
	loc  *fakeLocation
}

func newDeps() *deps {
	return &deps{ts: &fakeTimeSeries{}, auth: &fakeAuth{}, loc: &fakeLocation{}}
}

func (d *deps) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(d.dash, d.ts, d.recs, d.auth, d.loc).WithClock(func() time.Time { return fixedNow })
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/signup", h.SignUp)
	r.POST("/signin", h.SignIn)
	r.GET("/dashboard/:id", h.GetDashboard)
	r.GET("/weather-forecast/:id", h.GetWeatherForecast)
	r.GET("/soil-conditions/:id", h.GetSoilConditions)
	r.GET("/ai-recommendations/:id", h.GetRecommendations)
	r.PUT("/farm-location/:id", h.UpdateFarmLocation)
	r.POST("/nasa-refresh/:id", h.RefreshNASAData)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func strp(s string) *string { return &s }

// ---------- error mapping ----------

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{fmt.Errorf("%w: All fields are required", services.ErrValidation), 400, ErrCodeBadRequest, "All fields are required"},
		{services.ErrConflict, 400, ErrCodeConflict, "User already exists"},
		{services.ErrIdempotencyMismatch, 422, ErrCodeIdempotencyKey, "Idempotency-Key was already used with a different request"},
		{services.ErrLegacyProfile, 400, ErrCodeLegacyProfile, services.ErrLegacyProfile.Error()},
		{services.ErrInvalidCredentials, 401, ErrCodeUnauthorized, "Invalid credentials"},
		{services.ErrUserNotFound, 404, ErrCodeNotFound, "User not found"},
		{&services.DependencyError{Op: "dashboard", Err: errors.New("disk")}, 500, ErrCodeDependency, "upstream dependency failed"},
		{errors.New("boom"), 500, ErrCodeInternal, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			d := newDeps()
			d.dash.err = tc.err
			w := do(t, d.router(), http.MethodGet, "/dashboard/x", "")
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			er := decode[ErrorResponse](t, w)
			if er.Code != tc.code || er.Error != tc.msg || er.RequestID == "" {
				t.Fatalf("body = %+v", er)
			}
		})
	}
}

// ---------- auth ----------

func TestSignUp_CreatedAndReplay(t *testing.T) {
	d := newDeps()
	d.auth.profile = domain.UserProfile{ID: "u-1", FirstName: "Ada", LastName: "Okafor", Email: "ada@example.com"}
	r := d.router()

	w := do(t, r, http.MethodPost, "/signup",
		`{"firstName":"ada","lastName":"okafor","email":"ada@example.com","password":"pw","username":"ada"}`,
		middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatal("fresh sign-up must not be marked replayed")
	}
	if d.auth.gotKey != "k-1" || d.auth.gotIn.Username == nil || *d.auth.gotIn.Username != "ada" {
		t.Fatalf("service input = %q %+v", d.auth.gotKey, d.auth.gotIn)
	}
	got := decode[map[string]any](t, w)
	for k, want := range map[string]any{
		"message": "User created successfully", "userId": "u-1", "id": "u-1",
		"firstName": "Ada", "lastName": "Okafor", "email": "ada@example.com",
	} {
		if got[k] != want {
			t.Fatalf("%s = %v, want %v", k, got[k], want)
		}
	}

	d.auth.replayed = true
	w = do(t, r, http.MethodPost, "/signup", `{"firstName":"a","lastName":"b","email":"c","password":"d"}`,
		middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated || w.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay: status=%d header=%q", w.Code, w.Header().Get(middleware.HeaderIdempotencyReplayed))
	}
}

func TestSignUp_BadJSON(t *testing.T) {
	d := newDeps()
	w := do(t, d.router(), http.MethodPost, "/signup", `{"firstName":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSignIn(t *testing.T) {
	d := newDeps()
	d.auth.profile = domain.UserProfile{ID: "legacy-7", FirstName: "Jo", LastName: "Mwangi", Email: "jo@example.com"}
	w := do(t, d.router(), http.MethodPost, "/signin", `{"email":"jo@example.com","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[SignInResponse](t, w)
	if got.Message != "Login successful" || got.User.UserID != "legacy-7" || got.User.ID != "legacy-7" {
		t.Fatalf("body = %+v", got)
	}

	d.auth.err = services.ErrInvalidCredentials
	if w := do(t, d.router(), http.MethodPost, "/signin", `{"email":"x","password":"y"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

// ---------- dashboard ----------

func TestGetDashboard_RankOnlyForCurrent(t *testing.T) {
	view := func(id domain.Identity) *services.DashboardView {
		return &services.DashboardView{
			Identity:        id,
			FirstName:       "Ada",
			CreditPoints:    1247,
			CurrentRank:     strp("Gold"),
			FarmHealth:      85,
			ActiveNeighbors: 4,
			NearestMarket:   services.MarketView{Name: "Central Farmers Market", Distance: "12km"},
		}
	}

	d := newDeps()
	d.dash.view = view(domain.Current("3f2b8c1e-7d4a-4b9e-9f11-2c3d4e5f6a7b"))
	got := decode[map[string]any](t, do(t, d.router(), http.MethodGet, "/dashboard/3f2b8c1e-7d4a-4b9e-9f11-2c3d4e5f6a7b", ""))
	if got["currentRank"] != "Gold" || got["creditPoints"] != float64(1247) || got["farmHealth"] != float64(85) {
		t.Fatalf("current body = %v", got)
	}
	market, _ := got["nearestMarket"].(map[string]any)
	if market["name"] != "Central Farmers Market" || market["distance"] != "12km" {
		t.Fatalf("market = %v", market)
	}

	d.dash.view = view(domain.Legacy("legacy-7"))
	got = decode[map[string]any](t, do(t, d.router(), http.MethodGet, "/dashboard/legacy-7", ""))
	if _, present := got["currentRank"]; present {
		t.Fatalf("legacy body must omit currentRank: %v", got)
	}
}

// ---------- time series ----------

func forecastWeek() []domain.WeatherForecast {
	out := make([]domain.WeatherForecast, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, domain.WeatherForecast{
			ForecastDate:             domain.DateOf(fixedNow).AddDate(0, 0, i),
			TemperatureMax:           28,
			TemperatureMin:           18,
			WeatherCondition:         "Sunny",
			Humidity:                 65,
			PrecipitationProbability: float64(i * 10),
		})
	}
	return out
}

func TestGetWeatherForecast(t *testing.T) {
	d := newDeps()
	d.ts.forecast = forecastWeek()
	r := d.router()

	days := decode[[]ForecastDay](t, do(t, r, http.MethodGet, "/weather-forecast/u1", ""))
	if len(days) != 7 || days[0].Date != "2026-03-10" || days[6].Date != "2026-03-16" {
		t.Fatalf("days = %+v", days)
	}
	if days[2].RainChance != 20 || days[0].High != 28 || days[0].Condition != "Sunny" {
		t.Fatalf("mapping wrong: %+v", days[2])
	}
	if !d.ts.gotToday.Equal(domain.DateOf(fixedNow)) {
		t.Fatalf("today = %v", d.ts.gotToday)
	}

	tests := map[string]int{"3": 3, "1": 1, "0": 7, "99": 7, "x": 7}
	for q, want := range tests {
		got := decode[[]ForecastDay](t, do(t, r, http.MethodGet, "/weather-forecast/u1?days="+q, ""))
		if len(got) != want {
			t.Errorf("days=%s: got %d entries, want %d", q, len(got), want)
		}
	}
}

func TestGetWeatherForecast_EmptyIsArray(t *testing.T) {
	d := newDeps()
	w := do(t, d.router(), http.MethodGet, "/weather-forecast/u1", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetSoilConditions(t *testing.T) {
	d := newDeps()
	d.ts.soil = services.SoilReading{Moisture: 78, Nitrogen: 65, PH: 6.5, Temperature: 22}
	got := decode[SoilResponse](t, do(t, d.router(), http.MethodGet, "/soil-conditions/legacy-7", ""))
	if got != (SoilResponse{Moisture: 78, Nitrogen: 65, PH: 6.5, Temperature: 22}) {
		t.Fatalf("soil = %+v", got)
	}

	d.ts.err = services.ErrUserNotFound
	if w := do(t, d.router(), http.MethodGet, "/soil-conditions/ghost", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

// ---------- recommendations ----------

func TestGetRecommendations(t *testing.T) {
	d := newDeps()
	d.recs.recs = []domain.Recommendation{
		{ID: 3, Priority: domain.PriorityHigh, Title: "Irrigate", Description: "d1", RecommendationType: "irrigation"},
		{ID: 1, Priority: domain.PriorityWatch, Title: "Pests", Description: "d2", RecommendationType: "pest"},
	}
	got := decode[RecommendationsResponse](t, do(t, d.router(), http.MethodGet, "/ai-recommendations/u1", ""))
	if len(got.Recommendations) != 2 {
		t.Fatalf("len = %d", len(got.Recommendations))
	}
	first := got.Recommendations[0]
	if first.ID != 3 || first.Priority != "High" || first.Type != "irrigation" || got.Recommendations[1].Title != "Pests" {
		t.Fatalf("body = %+v", got)
	}
}

// ---------- farm location ----------

func TestUpdateFarmLocation(t *testing.T) {
	d := newDeps()
	lat, lon := -1.29, 36.82
	d.loc.profile = domain.UserProfile{ID: "u1", Email: "a@b.c", FarmLatitude: &lat, FarmLongitude: &lon}
	r := d.router()

	w := do(t, r, http.MethodPut, "/farm-location/u1", `{"latitude":-1.29,"longitude":36.82,"farmName":"Sunrise"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if d.loc.gotLoc.Latitude != lat || d.loc.gotLoc.FarmName == nil || *d.loc.gotLoc.FarmName != "Sunrise" {
		t.Fatalf("service input = %+v", d.loc.gotLoc)
	}
	got := decode[ProfileResponse](t, w)
	if got.ID != "u1" || got.FarmLatitude == nil || *got.FarmLatitude != lat {
		t.Fatalf("body = %+v", got)
	}

	if w := do(t, r, http.MethodPut, "/farm-location/u1", `{"latitude":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing longitude: status = %d", w.Code)
	}

	d.loc.err = services.ErrLegacyProfile
	if w := do(t, r, http.MethodPut, "/farm-location/legacy-7", `{"latitude":1,"longitude":2}`); w.Code != http.StatusBadRequest {
		t.Fatalf("legacy: status = %d", w.Code)
	}
}

func TestRefreshNASAData(t *testing.T) {
	d := newDeps()
	w := do(t, d.router(), http.MethodPost, "/nasa-refresh/u1", "")
	if w.Code != http.StatusAccepted || d.loc.refreshed != "u1" {
		t.Fatalf("status=%d refreshed=%q", w.Code, d.loc.refreshed)
	}
	if got := decode[RefreshResponse](t, w); got.Status != "accepted" {
		t.Fatalf("body = %+v", got)
	}

	d.loc.err = services.ErrUserNotFound
	if w := do(t, d.router(), http.MethodPost, "/nasa-refresh/ghost", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
