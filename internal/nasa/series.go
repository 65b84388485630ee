package nasa

import (
	"sort"
	"time"
)

// FillValue is the provider's "no observation" sentinel. Any value at or
// below it is treated as missing.
const FillValue = -999.0

// dateLayout is the provider's per-day key format.
const dateLayout = "20060102"

// Series is a daily agro-climate time series keyed by parameter name and
// calendar day. It is never persisted as-is; callers read sanitized values
// through Value.
type Series struct {
	values map[string]map[string]float64
}

// NewSeries builds a Series from parameter -> YYYYMMDD -> value.
func NewSeries(values map[string]map[string]float64) Series {
	if values == nil {
		values = map[string]map[string]float64{}
	}
	return Series{values: values}
}

// Value returns the reading of param on day, or nil when the provider had no
// observation: the key is absent or the value is a fill value.
func (s Series) Value(param string, day time.Time) *float64 {
	byDay, ok := s.values[param]
	if !ok {
		return nil
	}
	v, ok := byDay[day.UTC().Format(dateLayout)]
	if !ok || v <= FillValue {
		return nil
	}
	return &v
}

// Dates returns every day present for any parameter, ascending. Keys that
// are not YYYYMMDD are ignored.
func (s Series) Dates() []time.Time {
	seen := make(map[string]struct{})
	for _, byDay := range s.values {
		for k := range byDay {
			seen[k] = struct{}{}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for k := range seen {
		d, err := time.ParseInLocation(dateLayout, k, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Empty reports whether the series holds no dated values.
func (s Series) Empty() bool { return len(s.Dates()) == 0 }
