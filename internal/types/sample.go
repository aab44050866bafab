package types

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrMalformedTimestamp is returned when a sample timestamp matches none of the
// tolerated layouts.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// timestampLayouts are tried in order. Mobile clients have shipped every one of
// these at some point.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// LocationSample is a single GPS fix captured during a tracked session.
// Altitude is optional; Timestamp is kept as delivered by the session store.
type LocationSample struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Time parses the sample timestamp
func (s LocationSample) Time() (time.Time, error) {
	return ParseTimestamp(s.Timestamp)
}

// Valid reports whether the coordinates are finite and within range.
func (s LocationSample) Valid() bool {
	if math.IsNaN(s.Latitude) || math.IsNaN(s.Longitude) ||
		math.IsInf(s.Latitude, 0) || math.IsInf(s.Longitude, 0) {
		return false
	}
	return s.Latitude >= -90 && s.Latitude <= 90 && s.Longitude >= -180 && s.Longitude <= 180
}

// ParseTimestamp parses an ISO-8601 style timestamp using the tolerated layouts.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// FormatTimestamp renders t the way interpolated render points carry it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// SortSamples returns a copy of samples ordered by capture time. When every
// timestamp parses the parsed instants are compared; otherwise the raw strings
// are compared, which still orders well-formed ISO-8601 values correctly.
// The sort is stable so equal timestamps keep their arrival order.
func SortSamples(samples []LocationSample) []LocationSample {
	sorted := make([]LocationSample, len(samples))
	copy(sorted, samples)

	parsed := make([]time.Time, len(sorted))
	allParsed := true
	for i := range sorted {
		t, err := sorted[i].Time()
		if err != nil {
			allParsed = false
			break
		}
		parsed[i] = t
	}

	if !allParsed {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp < sorted[j].Timestamp
		})
		return sorted
	}

	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return parsed[idx[i]].Before(parsed[idx[j]])
	})

	out := make([]LocationSample, len(sorted))
	for i, k := range idx {
		out[i] = sorted[k]
	}
	return out
}

// Float64 returns a pointer to v. Handy for optional fields.
func Float64(v float64) *float64 {
	return &v
}
