package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// ListForecast returns at most days forecast rows for userID dated in
// [from, from+days), ordered by date ascending. from is truncated to its day.
func ListForecast(ctx context.Context, db *gorm.DB, userID string, from time.Time, days int) ([]domain.WeatherForecast, error) {
	start := domain.DateOf(from)
	end := start.AddDate(0, 0, days)
	var out []domain.WeatherForecast
	err := db.WithContext(ctx).
		Where("user_id = ? AND forecast_date >= ? AND forecast_date < ?", userID, start, end).
		Order("forecast_date ASC").
		Limit(days).
		Find(&out).Error
	return out, err
}

// InsertForecastIfAbsent inserts the rows whose (user_id, forecast_date) is
// not stored yet and reports how many were written.
func InsertForecastIfAbsent(ctx context.Context, db *gorm.DB, rows []domain.WeatherForecast) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Clauses(onConflictDoNothing("user_id", "forecast_date")).Create(&rows)
	return res.RowsAffected, res.Error
}

// UpsertWeatherObservations writes ingested daily weather, replacing any
// stored reading for the same (user_id, date).
func UpsertWeatherObservations(ctx context.Context, db *gorm.DB, rows []domain.WeatherObservation) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(onConflictUpdate(
			[]string{"user_id", "date"},
			"temperature_2m_avg", "temperature_2m_max", "temperature_2m_min",
			"precipitation", "relative_humidity", "wind_speed_10m", "eto", "updated_at",
		)).
		Create(&rows).Error
}

// ListWeatherObservations returns ingested weather for userID dated in
// [from, to], ordered by date ascending.
func ListWeatherObservations(ctx context.Context, db *gorm.DB, userID string, from, to time.Time) ([]domain.WeatherObservation, error) {
	var out []domain.WeatherObservation
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, domain.DateOf(from), domain.DateOf(to)).
		Order("date ASC").
		Find(&out).Error
	return out, err
}
