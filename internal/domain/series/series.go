package series

import (
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of observations, ascending by date.
// History is append-only: new observations extend the series, recorded
// values are never rewritten.
type Series []Point

// Day normalizes a timestamp to UTC midnight so observations from
// different providers key to the same calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Sort orders the series ascending by date in place.
func (s Series) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// Through returns the prefix of the series with dates on or before asOf.
// The returned slice aliases the original backing array.
func (s Series) Through(asOf time.Time) Series {
	n := sort.Search(len(s), func(i int) bool { return s[i].Date.After(asOf) })
	return s[:n]
}

// Last returns the final observation and false if the series is empty.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// LastOn returns the most recent observation on or before asOf. This is
// the forward-fill lookup: a value is known from its release date until
// the next release, never earlier.
func (s Series) LastOn(asOf time.Time) (Point, bool) {
	return s.Through(asOf).Last()
}

// Values extracts the raw values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Returns computes simple period-over-period returns. The result has
// len(s)-1 points, each dated at the later observation.
func (s Series) Returns() Series {
	if len(s) < 2 {
		return nil
	}
	out := make(Series, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, Point{Date: s[i].Date, Value: s[i].Value/prev - 1})
	}
	return out
}

// Changes computes period-over-period differences, dated at the later
// observation.
func (s Series) Changes() Series {
	if len(s) < 2 {
		return nil
	}
	out := make(Series, len(s)-1)
	for i := 1; i < len(s); i++ {
		out[i-1] = Point{Date: s[i].Date, Value: s[i].Value - s[i-1].Value}
	}
	return out
}
