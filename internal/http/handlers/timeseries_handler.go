package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/farm-dashboard-backend/internal/utils"
)

// maxForecastDays bounds the ?days window of GET /weather-forecast/{id}.
const maxForecastDays = 7

// ForecastDay is one entry of the weather forecast.
type ForecastDay struct {
	Date       string  `json:"date"       example:"2026-03-10"`
	High       float64 `json:"high"       example:"28"`
	Low        float64 `json:"low"        example:"18"`
	Condition  string  `json:"condition"  example:"Sunny"`
	Humidity   float64 `json:"humidity"   example:"65"`
	RainChance float64 `json:"rainChance" example:"10"`
}

// SoilResponse is returned by GET /soil-conditions/{id}.
type SoilResponse struct {
	Moisture    float64 `json:"moisture"    example:"78"`
	Nitrogen    float64 `json:"nitrogen"    example:"65"`
	PH          float64 `json:"ph"          example:"6.5"`
	Temperature float64 `json:"temperature" example:"22"`
}

// GetWeatherForecast godoc
// @ID          getWeatherForecast
// @Summary     Weather forecast
// @Description Returns up to 7 forecast days starting today, ordered by date. Current profiles with no stored forecast get a default week persisted on first read.
// @Tags        TimeSeries
// @Produce     json
//
// @Param       id    path   string  true   "Profile id"
// @Param       days  query  int     false  "Number of days (1..7)"  default(7)
//
// @Success     200  {array}   handlers.ForecastDay
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weather-forecast/{id} [get]
func (h *Handlers) GetWeatherForecast(c *gin.Context) {
	days := utils.IntInRange(c.Query("days"), 1, maxForecastDays, maxForecastDays)

	rows, err := h.tsSvc.Weather(c.Request.Context(), c.Param("id"), h.today())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(rows) > days {
		rows = rows[:days]
	}
	out := make([]ForecastDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, ForecastDay{
			Date:       r.ForecastDate.UTC().Format("2006-01-02"),
			High:       r.TemperatureMax,
			Low:        r.TemperatureMin,
			Condition:  r.WeatherCondition,
			Humidity:   r.Humidity,
			RainChance: r.PrecipitationProbability,
		})
	}
	ok(c, http.StatusOK, out)
}

// GetSoilConditions godoc
// @ID          getSoilConditions
// @Summary     Soil conditions
// @Description Returns the latest soil reading, persisting a default sample when a current profile has none.
// @Tags        TimeSeries
// @Produce     json
//
// @Param       id  path  string  true  "Profile id"
//
// @Success     200  {object}  handlers.SoilResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /soil-conditions/{id} [get]
func (h *Handlers) GetSoilConditions(c *gin.Context) {
	s, err := h.tsSvc.Soil(c.Request.Context(), c.Param("id"), h.today())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, SoilResponse{
		Moisture:    s.Moisture,
		Nitrogen:    s.Nitrogen,
		PH:          s.PH,
		Temperature: s.Temperature,
	})
}
