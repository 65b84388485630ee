// Package defaults produces the placeholder records served when a user has no
// stored data yet. Every function is pure: the same inputs always yield the
// same payload, because backfill persists these values and then re-reads
// them, and two concurrent backfills must agree on the content.
package defaults

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// Dashboard fallbacks for current-schema users.
const (
	CreditPoints         = 1247
	CreditRank           = "Gold"
	PointsToNextRank     = 253
	MonthlyChangePercent = 12.5
	FarmHealth           = 85.0
	ActiveNeighbors      = 0
	MarketName           = "Green Valley Market"
	MarketDistanceKm     = 12.0
)

// Dashboard values for legacy-schema users, which have no satellite tables
// for health, neighbors or markets.
const (
	LegacyFarmHealth      = 94.0
	LegacyActiveNeighbors = 23
)

// Soil values. Nitrogen and pH are constants for every user; moisture and
// temperature are the legacy tuple and the fallback when a stored sample has
// no reading.
const (
	SoilMoisture    = 78.0
	SoilNitrogen    = 65.0
	SoilPH          = 6.5
	SoilTemperature = 22.0

	SampleMoistureFraction = 0.25
	SampleTemperature      = 22.5
	SampleSurfaceWetness   = 78.0
)

// ForecastDays is the length of the synthetic forecast for current users.
const ForecastDays = 7

// LegacyForecastDays is the length of the synthetic forecast for legacy users.
const LegacyForecastDays = 4

var forecastConditions = []string{"Clear skies", "Partly cloudy", "Light rain", "Windy", "Sunny"}

// Credits returns the default credit row for userID.
func Credits(userID string) domain.CreditMetrics {
	return domain.CreditMetrics{
		UserID:               userID,
		TotalPoints:          CreditPoints,
		CurrentRank:          CreditRank,
		PointsToNextRank:     PointsToNextRank,
		MonthlyChangePercent: MonthlyChangePercent,
	}
}

// Market is a named market at a distance.
type Market struct {
	Name       string
	DistanceKm float64
}

// NearestMarket returns the market reported when no market row exists.
func NearestMarket() Market {
	return Market{Name: MarketName, DistanceKm: MarketDistanceKm}
}

// Forecast returns the 7-day synthetic forecast for userID starting at today.
// Temperatures and humidity decay linearly day over day; the condition label
// walks a fixed list and stays on its last entry once exhausted.
func Forecast(userID string, today time.Time) []domain.WeatherForecast {
	day := domain.DateOf(today)
	out := make([]domain.WeatherForecast, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		f := float64(i)
		out = append(out, domain.WeatherForecast{
			UserID:                   userID,
			ForecastDate:             day.AddDate(0, 0, i),
			TemperatureMax:           28 - f*0.5,
			TemperatureMin:           18 - f*0.5,
			WeatherCondition:         forecastConditions[min(i, len(forecastConditions)-1)],
			PrecipitationProbability: 10 + f*5,
			Humidity:                 65 - f*2,
			WindSpeed:                5 + f*0.5,
		})
	}
	return out
}

// LegacyForecast returns the shorter synthetic forecast served to legacy
// users: the leading days of Forecast.
func LegacyForecast(userID string, today time.Time) []domain.WeatherForecast {
	return Forecast(userID, today)[:LegacyForecastDays]
}

// SoilSample returns the default sample for userID in zoneID on today.
func SoilSample(userID string, zoneID uint, today time.Time) domain.SoilSample {
	moisture, temp, wet := SampleMoistureFraction, SampleTemperature, SampleSurfaceWetness
	return domain.SoilSample{
		UserID:              userID,
		ZoneID:              zoneID,
		Date:                domain.DateOf(today),
		SoilMoisture0To5cm:  &moisture,
		SoilTemperature0To5: &temp,
		SurfaceWetness:      &wet,
	}
}

// Zone names used by backfill and ingestion.
const (
	SoilZoneName      = "A"
	IngestionZoneName = "Default Zone"
)

// RecommendationZones returns the three zones the canned recommendations
// reference, in recommendation order.
func RecommendationZones(userID string) []domain.FarmZone {
	return []domain.FarmZone{
		zone(userID, "A", "Wheat", 5.0, "active", "#10B981"),
		zone(userID, "B", "Corn", 3.5, "active", "#10B981"),
		zone(userID, "C", "Vegetables", 2.0, "active", "#F59E0B"),
	}
}

// SoilZone returns the zone the default soil sample is attached to.
func SoilZone(userID string) domain.FarmZone {
	return RecommendationZones(userID)[0]
}

// IngestionZone returns the catch-all zone NASA soil data is attached to.
func IngestionZone(userID string) domain.FarmZone {
	z := zone(userID, IngestionZoneName, "", 0, "active", "#10B981")
	z.CropType = strPtr("Unassigned")
	return z
}

func zone(userID, name, crop string, area float64, status, color string) domain.FarmZone {
	z := domain.FarmZone{
		UserID:       userID,
		ZoneName:     name,
		AreaHectares: area,
		Status:       status,
		ColorCode:    color,
	}
	if crop != "" {
		z.CropType = strPtr(crop)
	}
	return z
}

type advisory struct {
	title, description, kind, priority string
	datasets, insight                  string
	crop                               string
	impact                             float64
}

var advisories = []advisory{
	{
		title:       "Optimal planting window for tomatoes",
		description: "Soil conditions and weather patterns indicate ideal conditions for the next 5 days. Market demand is high with prices at $4.50/kg.",
		kind:        "planting",
		priority:    domain.PriorityHigh,
		datasets:    `["POWER", "SMAP", "MODIS"]`,
		insight:     `{"price": 4.50, "unit": "kg", "demand": "high"}`,
		crop:        "Tomatoes",
		impact:      85.5,
	},
	{
		title:       "Consider collaboration with nearby farmers",
		description: "Neighboring farms are planting complementary crops. Coordinating can optimize pest control and earn credit points.",
		kind:        "collaboration",
		priority:    domain.PriorityMedium,
		datasets:    `["MODIS", "POWER"]`,
		insight:     `{"potential_points": 150}`,
		impact:      72.0,
	},
	{
		title:       "Pest risk increasing for corn fields",
		description: "Satellite data shows increased activity in the region. Consider preventive measures within 48 hours.",
		kind:        "pest_control",
		priority:    domain.PriorityWatch,
		datasets:    `["MODIS", "FIRMS"]`,
		insight:     `{"risk_level": "high", "action": "preventive_treatment"}`,
		crop:        "Corn",
		impact:      65.0,
	},
}

// Recommendations returns the three canned advisories for userID. zoneIDs,
// when it has three entries, links each advisory to the matching zone of
// RecommendationZones; otherwise the advisories carry no zone.
func Recommendations(userID string, zoneIDs []uint) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(advisories))
	for i, a := range advisories {
		r := domain.Recommendation{
			UserID:             userID,
			Title:              a.title,
			Description:        a.description,
			RecommendationType: a.kind,
			Priority:           a.priority,
			Status:             domain.RecommendationActive,
			NasaDatasetsUsed:   datatypes.JSON(a.datasets),
			MarketInsight:      datatypes.JSON(a.insight),
			ExpectedImpactScore: func(v float64) *float64 {
				return &v
			}(a.impact),
		}
		if a.crop != "" {
			r.CropSuggestion = strPtr(a.crop)
		}
		if len(zoneIDs) == len(advisories) {
			id := zoneIDs[i]
			r.ZoneID = &id
		}
		out = append(out, r)
	}
	return out
}

// LegacyRecommendations returns the canned advisories for a legacy user with
// stable 1-based ids, since they are never persisted.
func LegacyRecommendations(userID string) []domain.Recommendation {
	out := Recommendations(userID, nil)
	for i := range out {
		out[i].ID = uint(i + 1)
	}
	return out
}

func strPtr(s string) *string { return &s }
