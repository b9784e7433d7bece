package domain

import (
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"
)

// AlertLevel is the single overall tier assigned to one snapshot.
type AlertLevel string

const (
	AlertNone    AlertLevel = "none"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "danger"
	AlertSevere  AlertLevel = "severe"
)

// Rank orders alert levels by implied risk, none=0 through severe=3.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertDanger:
		return 2
	case AlertSevere:
		return 3
	default:
		return 0
	}
}

// Thresholds holds the percent-of-frame floors that trigger each alert level.
// Legend colors occupy a small, concentrated share of the frame even during
// severe events, so the floors are fractions of a percent rather than
// majority coverage.
type Thresholds struct {
	Red    float64
	Orange float64
	Yellow float64
}

// DefaultThresholds returns the calibrated trigger floors.
func DefaultThresholds() Thresholds {
	return Thresholds{Red: 0.1, Orange: 0.5, Yellow: 1.0}
}

// Decide applies the alert policy in priority order, first match wins:
// red ⇒ severe, orange ⇒ danger, yellow ⇒ warning. Comparisons are strict
// and use unrounded percentages.
func (t Thresholds) Decide(yellowPct, orangePct, redPct float64) AlertLevel {
	switch {
	case redPct > t.Red:
		return AlertSevere
	case orangePct > t.Orange:
		return AlertDanger
	case yellowPct > t.Yellow:
		return AlertWarning
	default:
		return AlertNone
	}
}

// ColorBandMeasurement is one legend color's measured share of a frame plus
// the intensity band it stands for. Rate bounds are carried numerically so
// provider unit normalization can scale them before serialization.
type ColorBandMeasurement struct {
	Color        string
	Percent      float64 // of total pixels, rounded to 2 decimals for reporting
	DBZLow       float64
	DBZHigh      float64
	MMPerHourMin float64
	MMPerHourMax float64
	OpenEnded    bool // top of the scale: labels render "45+" / "15.0+"
}

// NewMeasurement pairs a measured percent with a scale band.
func NewMeasurement(band IntensityBand, percent float64) ColorBandMeasurement {
	return ColorBandMeasurement{
		Color:        band.ColorName,
		Percent:      percent,
		DBZLow:       band.DBZLow,
		DBZHigh:      band.DBZHigh,
		MMPerHourMin: band.MMPerHourMin,
		MMPerHourMax: band.MMPerHourMax,
		OpenEnded:    band.TopBand(),
	}
}

// DBZRange renders the reflectivity label, e.g. "35-40" or "45+".
func (m ColorBandMeasurement) DBZRange() string {
	low := strconv.FormatFloat(m.DBZLow, 'f', -1, 64)
	if m.OpenEnded {
		return low + "+"
	}
	return low + "-" + strconv.FormatFloat(m.DBZHigh, 'f', -1, 64)
}

// MMPerHourRange renders the rate label, e.g. "2.5-8.0" or "15.0+".
func (m ColorBandMeasurement) MMPerHourRange() string {
	low := strconv.FormatFloat(m.MMPerHourMin, 'f', 1, 64)
	if m.OpenEnded {
		return low + "+"
	}
	return low + "-" + strconv.FormatFloat(m.MMPerHourMax, 'f', 1, 64)
}

// bandWire is the per-color object in the persisted layout.
type bandWire struct {
	Percent   float64 `json:"percent"`
	DBZRange  string  `json:"dbz_range"`
	MMPerHour string  `json:"mm_per_hour"`
}

// MarshalJSON emits the fixed wire shape {percent, dbz_range, mm_per_hour}.
func (m ColorBandMeasurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(bandWire{
		Percent:   m.Percent,
		DBZRange:  m.DBZRange(),
		MMPerHour: m.MMPerHourRange(),
	})
}

// UnmarshalJSON parses the wire shape back, recovering the numeric bounds
// from the range labels. Open-ended labels recover only the lower bound.
func (m *ColorBandMeasurement) UnmarshalJSON(data []byte) error {
	var w bandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Percent = w.Percent

	dbzLow, dbzHigh, open, err := parseRangeLabel(w.DBZRange)
	if err != nil {
		return fmt.Errorf("parse dbz_range: %w", err)
	}
	m.DBZLow, m.DBZHigh, m.OpenEnded = dbzLow, dbzHigh, open

	mmLow, mmHigh, _, err := parseRangeLabel(w.MMPerHour)
	if err != nil {
		return fmt.Errorf("parse mm_per_hour: %w", err)
	}
	m.MMPerHourMin, m.MMPerHourMax = mmLow, mmHigh
	return nil
}

// parseRangeLabel reads "low-high" or "low+" labels.
func parseRangeLabel(s string) (low, high float64, open bool, err error) {
	if rest, ok := strings.CutSuffix(s, "+"); ok {
		low, err = strconv.ParseFloat(rest, 64)
		return low, 0, true, err
	}
	lowStr, highStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, false, fmt.Errorf("malformed range label %q", s)
	}
	if low, err = strconv.ParseFloat(lowStr, 64); err != nil {
		return 0, 0, false, err
	}
	high, err = strconv.ParseFloat(highStr, 64)
	return low, high, false, err
}

// SourceAnalysis is the classification outcome for one provider snapshot.
// Immutable once created; Measurements hold yellow, orange, red in that order.
type SourceAnalysis struct {
	Provider           string
	Timestamp          time.Time
	Measurements       []ColorBandMeasurement
	AlertLevel         AlertLevel
	HasSignificantRain bool
}

// NormalizeRates returns a copy with every measurement's rate bounds scaled
// by the provider's unit factor. A factor of 1 returns the input unchanged.
// The alert level is pixel-fraction derived and is deliberately untouched.
func (a SourceAnalysis) NormalizeRates(factor float64) SourceAnalysis {
	if factor == 1 {
		return a
	}
	scaled := make([]ColorBandMeasurement, len(a.Measurements))
	for i, m := range a.Measurements {
		m.MMPerHourMin *= factor
		m.MMPerHourMax *= factor
		scaled[i] = m
	}
	a.Measurements = scaled
	return a
}

// Measurement returns the band measured for the given legend color.
func (a SourceAnalysis) Measurement(color string) (ColorBandMeasurement, bool) {
	for _, m := range a.Measurements {
		if m.Color == color {
			return m, true
		}
	}
	return ColorBandMeasurement{}, false
}

// analysisWire pins the persisted field and band order. The band keys are a
// compatibility contract with the dashboard; keep them exactly as-is.
type analysisWire struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Analysis  struct {
		Yellow ColorBandMeasurement `json:"yellow"`
		Orange ColorBandMeasurement `json:"orange"`
		Red    ColorBandMeasurement `json:"red"`
	} `json:"analysis"`
	AlertLevel         AlertLevel `json:"alert_level"`
	HasSignificantRain bool       `json:"has_significant_rain"`
}

const analysisSource = "color_analysis"

func (a SourceAnalysis) MarshalJSON() ([]byte, error) {
	w := analysisWire{
		Timestamp:          a.Timestamp,
		Source:             analysisSource,
		AlertLevel:         a.AlertLevel,
		HasSignificantRain: a.HasSignificantRain,
	}
	for _, m := range a.Measurements {
		switch m.Color {
		case "yellow":
			w.Analysis.Yellow = m
		case "orange":
			w.Analysis.Orange = m
		case "red":
			w.Analysis.Red = m
		}
	}
	return json.Marshal(w)
}

func (a *SourceAnalysis) UnmarshalJSON(data []byte) error {
	var w analysisWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	w.Analysis.Yellow.Color = "yellow"
	w.Analysis.Orange.Color = "orange"
	w.Analysis.Red.Color = "red"

	a.Timestamp = w.Timestamp
	a.Measurements = []ColorBandMeasurement{w.Analysis.Yellow, w.Analysis.Orange, w.Analysis.Red}
	a.AlertLevel = w.AlertLevel
	a.HasSignificantRain = w.HasSignificantRain
	return nil
}

// SourceResult is the tagged per-provider entry in an aggregate: either a
// successful analysis (with the archived screenshot it came from) or an
// error marker. Classification failures that happened after a successful
// capture keep the screenshot for postmortem calibration.
type SourceResult struct {
	Screenshot string          `json:"screenshot,omitempty"`
	Analysis   *SourceAnalysis `json:"analysis,omitempty"`
	Err        string          `json:"error,omitempty"`
}

// Failed reports whether the entry is an error marker.
func (r SourceResult) Failed() bool {
	return r.Err != ""
}

// AggregateResult is the full output artifact of one orchestration run:
// exactly one entry per requested provider, stamped with the run's
// completion time. It overwrites the previous result in the store.
type AggregateResult struct {
	Timestamp time.Time               `json:"timestamp"`
	Sources   map[string]SourceResult `json:"sources"`
}

// HighestAlertLevel returns the maximum alert level across all successful
// source entries, or none when every entry failed.
func (r AggregateResult) HighestAlertLevel() AlertLevel {
	highest := AlertNone
	for _, src := range r.Sources {
		if src.Analysis != nil && src.Analysis.AlertLevel.Rank() > highest.Rank() {
			highest = src.Analysis.AlertLevel
		}
	}
	return highest
}

// Snapshot is one captured radar frame plus the archived file it was saved
// to. The path is the opaque identifier reported as "screenshot".
type Snapshot struct {
	Image image.Image
	Path  string
}
