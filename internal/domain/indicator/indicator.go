package indicator

import (
	"time"

	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// Category groups macro indicators by the part of the economy they read.
type Category string

const (
	CategoryGrowth    Category = "growth"
	CategoryLabor     Category = "labor"
	CategoryInflation Category = "inflation"
	CategoryRates     Category = "rates"
	CategorySentiment Category = "sentiment"
	CategoryHousing   Category = "housing"
)

// Trend is the short-run direction of an indicator.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// Status labels where the current reading sits in its own history.
// High/low say nothing about good/bad: a high unemployment print and a
// high sentiment print both report StatusHigh. Economic direction is
// applied downstream by the scorer.
type Status string

const (
	StatusHigh   Status = "high"
	StatusLow    Status = "low"
	StatusNormal Status = "normal"
)

// Indicator is a macro series with identity metadata. The series is
// append-only; revisions of recorded values are out of scope.
type Indicator struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category Category      `json:"category"`
	Series   series.Series `json:"-"`
}

// Snapshot is the normalized read of one indicator as of a date.
// Available is false when the history is too short for percentile and
// trend to mean anything; consumers must treat the snapshot as
// not-available rather than reading the zero values.
type Snapshot struct {
	IndicatorID string    `json:"id"`
	AsOf        time.Time `json:"as_of"`
	Value       float64   `json:"value"`
	Trend       Trend     `json:"trend"`
	Percentile  float64   `json:"percentile"`
	Status      Status    `json:"status"`
	ZScore      float64   `json:"zscore"`
	Available   bool      `json:"available"`
}
