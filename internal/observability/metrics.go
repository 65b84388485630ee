package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Backfill outcomes.
const (
	BackfillHit    = "hit"    // stored rows served as-is
	BackfillSeeded = "seeded" // defaults synthesized and persisted
	BackfillLegacy = "legacy" // defaults served without persistence
)

// Ingestion run results.
const (
	IngestSuccess = "success"
	IngestSkipped = "skipped"
	IngestFailed  = "failed"
)

var (
	backfills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_backfill_total",
			Help: "Backfill reads by data family and outcome.",
		},
		[]string{"family", "outcome"},
	)

	ingestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_ingestion_runs_total",
			Help: "NASA POWER ingestion runs by result.",
		},
		[]string{"result"},
	)

	ingestRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_ingestion_records_total",
			Help: "Rows upserted by NASA POWER ingestion, by table.",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(backfills, ingestRuns, ingestRecords)
}

// ObserveBackfill counts one backfill read of family with outcome.
func ObserveBackfill(family, outcome string) {
	backfills.WithLabelValues(family, outcome).Inc()
}

// ObserveIngestion counts one ingestion run and the rows it wrote.
func ObserveIngestion(result string, weatherRows, soilRows int) {
	ingestRuns.WithLabelValues(result).Inc()
	if weatherRows > 0 {
		ingestRecords.WithLabelValues("nasa_weather_data").Add(float64(weatherRows))
	}
	if soilRows > 0 {
		ingestRecords.WithLabelValues("nasa_soil_data").Add(float64(soilRows))
	}
}
