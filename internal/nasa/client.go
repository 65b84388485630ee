// Package nasa is a client for the NASA POWER daily point API, which serves
// agro-climate parameters for a coordinate over a date range.
package nasa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tbourn/farm-dashboard-backend/internal/config"
)

// Parameters requested on every fetch.
const (
	ParamT2M         = "T2M"         // mean air temperature at 2 m, °C
	ParamT2MMax      = "T2M_MAX"     // max air temperature at 2 m, °C
	ParamT2MMin      = "T2M_MIN"     // min air temperature at 2 m, °C
	ParamPrecip      = "PRECTOTCORR" // corrected precipitation, mm/day
	ParamRH2M        = "RH2M"        // relative humidity at 2 m, %
	ParamWS10M       = "WS10M"       // wind speed at 10 m, m/s
	ParamEvapotransp = "EVPTRNS"     // evapotranspiration, mm/day
	ParamSkinTemp    = "TS"          // earth skin temperature, °C
	ParamGWETTop     = "GWETTOP"     // surface soil wetness, 0..1
	ParamGWETRoot    = "GWETROOT"    // root zone soil wetness, 0..1
)

// DefaultParameters is the parameter set the ingestion pipeline consumes.
var DefaultParameters = []string{
	ParamT2M, ParamT2MMax, ParamT2MMin, ParamPrecip, ParamRH2M, ParamWS10M,
	ParamEvapotransp, ParamSkinTemp, ParamGWETTop, ParamGWETRoot,
}

var (
	// ErrUnexpectedStatus wraps any non-2xx provider response.
	ErrUnexpectedStatus = errors.New("nasa power: unexpected status code")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("nasa power: circuit breaker open")
)

// Client fetches daily series. It makes exactly one GET per call; there
// are no retries, and a failed call aborts the caller's run.
type Client struct {
	baseURL    string
	apiKey     string
	params     []string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds a client from cfg. hc may be nil, in which case a client
// with cfg.Timeout is used.
func NewClient(cfg config.NASAConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nasa-power",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "?"),
		apiKey:     cfg.APIKey,
		params:     DefaultParameters,
		httpClient: hc,
		breaker:    cb,
	}
}

type dailyResponse struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}

// FetchDaily returns the daily series for (lat, lon) between start and end
// inclusive. Null readings are dropped, so Series.Value reports them as
// missing just like fill values.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) (Series, error) {
	q := url.Values{}
	q.Set("parameters", strings.Join(c.params, ","))
	q.Set("community", "AG")
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("start", start.UTC().Format(dateLayout))
	q.Set("end", end.UTC().Format(dateLayout))
	q.Set("format", "JSON")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Series{}, err
	}
	req.Header.Set("Accept", "application/json")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Series{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return Series{}, err
	}
	resp, ok := result.(*http.Response)
	if !ok {
		return Series{}, errors.New("nasa power: unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	var payload dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Series{}, fmt.Errorf("nasa power: decode: %w", err)
	}

	values := make(map[string]map[string]float64, len(payload.Properties.Parameter))
	for param, byDay := range payload.Properties.Parameter {
		m := make(map[string]float64, len(byDay))
		for day, v := range byDay {
			if v != nil {
				m[day] = *v
			}
		}
		values[param] = m
	}
	return NewSeries(values), nil
}
