// Package domain defines the persistence models for farm profiles, credits,
// zones, time series and recommendations. These types are mapped with GORM
// and form the core data layer of the dashboard backend.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User is a current-schema farm profile, keyed by a UUID.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Username / Email: optional unique handles.
//   - FarmLatitude / FarmLongitude: farm coordinates; both must be set before
//     the NASA ingestion pipeline can run for the user.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID               string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	Username         *string   `json:"username,omitempty"  gorm:"type:varchar(255);uniqueIndex:ux_users_username"`
	Email            string    `json:"email"               gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	FirstName        string    `json:"first_name"          gorm:"type:varchar(255)"`
	LastName         string    `json:"last_name"           gorm:"type:varchar(255)"`
	FarmName         *string   `json:"farm_name,omitempty" gorm:"type:varchar(255)"`
	FarmLatitude     *float64  `json:"farm_latitude,omitempty"`
	FarmLongitude    *float64  `json:"farm_longitude,omitempty"`
	FarmSizeHectares *float64  `json:"farm_size_hectares,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// HasCoordinates reports whether both farm coordinates are present.
func (u User) HasCoordinates() bool {
	return u.FarmLatitude != nil && u.FarmLongitude != nil
}

// LegacyUser is a row of the original flat user table. Its identifier is an
// opaque string that predates the UUID scheme, and Password holds the hex
// SHA-256 digest of the user's password.
type LegacyUser struct {
	UserID    string    `json:"userId"    gorm:"column:user_id;type:varchar(64);primaryKey"`
	FirstName string    `json:"firstName" gorm:"type:varchar(255)"`
	LastName  string    `json:"lastName"  gorm:"type:varchar(255)"`
	Email     string    `json:"email"     gorm:"type:varchar(255);not null;uniqueIndex:ux_legacy_users_email"`
	Password  string    `json:"-"         gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"-"`
}

// TableName returns the database table name for LegacyUser.
func (LegacyUser) TableName() string { return "legacy_users" }

// CreditMetrics holds the per-user credit standing. At most one row exists
// per user; the user id is an opaque string so legacy ids fit as well.
type CreditMetrics struct {
	ID                   uint      `json:"-"                      gorm:"primaryKey"`
	UserID               string    `json:"user_id"                gorm:"type:varchar(64);not null;uniqueIndex:ux_user_credits_user"`
	TotalPoints          int       `json:"total_points"           gorm:"not null;default:0"`
	CurrentRank          string    `json:"current_rank"           gorm:"type:varchar(50);not null;default:'Bronze'"`
	PointsToNextRank     int       `json:"points_to_next_rank"    gorm:"not null;default:500"`
	MonthlyChangePercent float64   `json:"monthly_change_percent" gorm:"not null;default:0"`
	LastUpdated          time.Time `json:"last_updated"           gorm:"autoUpdateTime"`
}

// TableName returns the database table name for CreditMetrics.
func (CreditMetrics) TableName() string { return "user_credits" }

// FarmZone is a named sub-area of a user's farm. (user_id, zone_name) is unique.
type FarmZone struct {
	ID           uint      `json:"id"            gorm:"primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_farm_zones_user_name,priority:1"`
	ZoneName     string    `json:"zone_name"     gorm:"type:varchar(32);not null;uniqueIndex:ux_farm_zones_user_name,priority:2"`
	CropType     *string   `json:"crop_type"     gorm:"type:varchar(100)"`
	AreaHectares float64   `json:"area_hectares"`
	Status       string    `json:"status"        gorm:"type:varchar(50);not null;default:'active'"`
	ColorCode    string    `json:"color_code"    gorm:"type:varchar(7);not null;default:'#10B981'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for FarmZone.
func (FarmZone) TableName() string { return "farm_zones" }

// FarmNeighbor is a nearby farm the user may collaborate with.
type FarmNeighbor struct {
	ID                  uint      `json:"id"                   gorm:"primaryKey"`
	UserID              string    `json:"user_id"              gorm:"type:varchar(64);not null;uniqueIndex:ux_farm_neighbors_user_name,priority:1"`
	NeighborName        string    `json:"neighbor_name"        gorm:"type:varchar(255);not null;uniqueIndex:ux_farm_neighbors_user_name,priority:2"`
	DistanceKm          float64   `json:"distance_km"`
	FarmType            string    `json:"farm_type"            gorm:"type:varchar(100)"`
	CollaborationStatus string    `json:"collaboration_status" gorm:"type:varchar(50);not null;default:'potential'"`
	CreatedAt           time.Time `json:"created_at"`
}

// TableName returns the database table name for FarmNeighbor.
func (FarmNeighbor) TableName() string { return "farm_neighbors" }

// FarmHealthMetric is the per-user, per-day health score row.
type FarmHealthMetric struct {
	ID                   uint           `json:"id"                     gorm:"primaryKey"`
	UserID               string         `json:"user_id"                gorm:"type:varchar(64);not null;uniqueIndex:ux_farm_health_user_date,priority:1"`
	Date                 time.Time      `json:"date"                   gorm:"type:date;not null;uniqueIndex:ux_farm_health_user_date,priority:2"`
	OverallHealthScore   *float64       `json:"overall_health_score"`
	SoilHealthScore      *float64       `json:"soil_health_score"`
	CropHealthScore      *float64       `json:"crop_health_score"`
	WaterEfficiencyScore *float64       `json:"water_efficiency_score"`
	NasaDataSources      datatypes.JSON `json:"nasa_data_sources"`
	CreatedAt            time.Time      `json:"created_at"`
}

// TableName returns the database table name for FarmHealthMetric.
func (FarmHealthMetric) TableName() string { return "farm_health_metrics" }

// MarketData is a market location shared by all users.
type MarketData struct {
	ID              uint           `json:"id"               gorm:"primaryKey"`
	MarketName      string         `json:"market_name"      gorm:"type:varchar(255);not null"`
	Latitude        *float64       `json:"latitude"`
	Longitude       *float64       `json:"longitude"`
	DistanceKm      float64        `json:"distance_km"      gorm:"index"`
	CommodityPrices datatypes.JSON `json:"commodity_prices"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName returns the database table name for MarketData.
func (MarketData) TableName() string { return "market_data" }

// WeatherForecast is one forecast day for a user. (user_id, forecast_date) is unique.
type WeatherForecast struct {
	ID                       uint      `json:"id"                        gorm:"primaryKey"`
	UserID                   string    `json:"user_id"                   gorm:"type:varchar(64);not null;uniqueIndex:ux_forecast_user_date,priority:1"`
	ForecastDate             time.Time `json:"forecast_date"             gorm:"type:date;not null;uniqueIndex:ux_forecast_user_date,priority:2"`
	TemperatureMax           float64   `json:"temperature_max"`
	TemperatureMin           float64   `json:"temperature_min"`
	WeatherCondition         string    `json:"weather_condition"         gorm:"type:varchar(100)"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
	Humidity                 float64   `json:"humidity"`
	WindSpeed                float64   `json:"wind_speed"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// TableName returns the database table name for WeatherForecast.
func (WeatherForecast) TableName() string { return "nasa_weather_forecast" }

// WeatherObservation is one day of ingested agro-climate weather for a user.
// Nil fields mean the provider had no observation for that day.
type WeatherObservation struct {
	ID               uint      `json:"id"                 gorm:"primaryKey"`
	UserID           string    `json:"user_id"            gorm:"type:varchar(64);not null;uniqueIndex:ux_weather_data_user_date,priority:1"`
	Date             time.Time `json:"date"               gorm:"type:date;not null;uniqueIndex:ux_weather_data_user_date,priority:2"`
	Temperature2mAvg *float64  `json:"temperature_2m_avg" gorm:"column:temperature_2m_avg"`
	Temperature2mMax *float64  `json:"temperature_2m_max" gorm:"column:temperature_2m_max"`
	Temperature2mMin *float64  `json:"temperature_2m_min" gorm:"column:temperature_2m_min"`
	Precipitation    *float64  `json:"precipitation"`
	RelativeHumidity *float64  `json:"relative_humidity"`
	WindSpeed10m     *float64  `json:"wind_speed_10m"     gorm:"column:wind_speed_10m"`
	Eto              *float64  `json:"eto"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for WeatherObservation.
func (WeatherObservation) TableName() string { return "nasa_weather_data" }

// SoilSample is a per-user, per-zone, per-day soil reading.
// (user_id, zone_id, date) is unique.
type SoilSample struct {
	ID                  uint      `json:"id"                     gorm:"primaryKey"`
	UserID              string    `json:"user_id"                gorm:"type:varchar(64);not null;uniqueIndex:ux_soil_user_zone_date,priority:1"`
	ZoneID              uint      `json:"zone_id"                gorm:"not null;uniqueIndex:ux_soil_user_zone_date,priority:2"`
	Date                time.Time `json:"date"                   gorm:"type:date;not null;uniqueIndex:ux_soil_user_zone_date,priority:3"`
	SoilMoisture0To5cm  *float64  `json:"soil_moisture_0_5cm"    gorm:"column:soil_moisture_0_5cm"`
	SoilTemperature0To5 *float64  `json:"soil_temperature_0_5cm" gorm:"column:soil_temperature_0_5cm"`
	SurfaceWetness      *float64  `json:"surface_wetness"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"             gorm:"index"`

	Zone FarmZone `json:"-" gorm:"foreignKey:ZoneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SoilSample.
func (SoilSample) TableName() string { return "nasa_soil_data" }

// Recommendation priority tiers, highest first.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityWatch  = "Watch"
)

// Recommendation statuses.
const (
	RecommendationActive   = "active"
	RecommendationInactive = "inactive"
)

// Recommendation is a templated advisory for a user. (user_id, title) is
// unique, so titles double as natural keys when re-seeding.
//
// TimeWindowStart / TimeWindowEnd bound the days on which the advisory is
// served; a nil bound is open.
type Recommendation struct {
	ID                  uint           `json:"id"                    gorm:"primaryKey"`
	UserID              string         `json:"user_id"               gorm:"type:varchar(64);not null;uniqueIndex:ux_recommendations_user_title,priority:1"`
	ZoneID              *uint          `json:"zone_id,omitempty"`
	Title               string         `json:"title"                 gorm:"type:varchar(255);not null;uniqueIndex:ux_recommendations_user_title,priority:2"`
	Description         string         `json:"description"           gorm:"type:text"`
	RecommendationType  string         `json:"recommendation_type"   gorm:"type:varchar(100)"`
	Priority            string         `json:"priority"              gorm:"type:varchar(20);not null;default:'Low'"`
	Status              string         `json:"status"                gorm:"type:varchar(20);not null;default:'active';index"`
	NasaDatasetsUsed    datatypes.JSON `json:"nasa_datasets_used"`
	CropSuggestion      *string        `json:"crop_suggestion,omitempty" gorm:"type:varchar(100)"`
	MarketInsight       datatypes.JSON `json:"market_insight"`
	TimeWindowStart     *time.Time     `json:"time_window_start,omitempty" gorm:"type:date"`
	TimeWindowEnd       *time.Time     `json:"time_window_end,omitempty"   gorm:"type:date"`
	ExpectedImpactScore *float64       `json:"expected_impact_score,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// TableName returns the database table name for Recommendation.
func (Recommendation) TableName() string { return "nasa_ai_recommendations" }
