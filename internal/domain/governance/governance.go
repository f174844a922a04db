package governance

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

func (l AlertLevel) String() string {
	switch l {
	case AlertInfo:
		return "info"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Alert is a process-wide governance alert with a simple open/closed
// lifecycle.
type Alert struct {
	ID          uuid.UUID  `json:"id"`
	Level       AlertLevel `json:"level"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func NewAlert(level AlertLevel, title, description, source string) *Alert {
	return &Alert{
		ID:          uuid.New(),
		Level:       level,
		Title:       title,
		Description: description,
		Source:      source,
		CreatedAt:   time.Now(),
	}
}

// Resolve closes the alert. Resolving a resolved alert is an error.
func (a *Alert) Resolve() error {
	if a.Resolved {
		return fmt.Errorf("alert %s is already resolved", a.ID)
	}
	now := time.Now()
	a.Resolved = true
	a.ResolvedAt = &now
	return nil
}

type Trend int

const (
	TrendStable Trend = iota
	TrendIncreasing
	TrendDecreasing
)

func (t Trend) String() string {
	switch t {
	case TrendIncreasing:
		return "increasing"
	case TrendDecreasing:
		return "decreasing"
	default:
		return "stable"
	}
}

// trendThreshold is the relative change beyond which a metric is
// considered to be moving.
const trendThreshold = 0.05

// Metric is a named governance measurement keyed by metric name.
type Metric struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Trend     Trend     `json:"trend"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update records a new value and recomputes the trend against the
// previous one. A change of more than 5% in either direction flips the
// trend; anything within the band is stable.
func (m *Metric) Update(value float64) {
	m.Trend = computeTrend(m.Value, value)
	m.Value = value
	m.UpdatedAt = time.Now()
}

func computeTrend(previous, current float64) Trend {
	if previous == 0 {
		return TrendStable
	}
	change := (current - previous) / math.Abs(previous)
	switch {
	case change > trendThreshold:
		return TrendIncreasing
	case change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
