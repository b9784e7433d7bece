// Package classify measures the legend-color coverage of rendered radar
// frames and derives an alert level from it.
package classify

import (
	"errors"
	"image"
	"log/slog"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rainalert/radar-monitor/internal/domain"
)

// Windows holds the hue/saturation/value calibration for the legend colors.
// Hue is in degrees on the 0–360 wheel; saturation and value are 0–1. All
// bounds are inclusive. The windows are calibration constants tied to a
// specific rendering and legend, so they are configuration, not algorithm.
type Windows struct {
	YellowHueLow  float64
	YellowHueHigh float64
	OrangeHueLow  float64
	OrangeHueHigh float64

	// Red hue wraps around zero, so it is matched as the union of two
	// windows: one anchored at hue 0 and one just below 360. Both are
	// required; a single interval cannot express a circular range.
	RedHueLow      float64
	RedHueHigh     float64
	RedWrapHueLow  float64
	RedWrapHueHigh float64

	// SatMin and ValMin exclude washed-out background pixels (base map,
	// land, UI chrome) that share a legend hue but lack its saturation.
	SatMin float64
	ValMin float64
}

// DefaultWindows returns the calibration for the current provider legends:
// yellow 40–60°, orange 20–40°, red 0–20° ∪ 340–360°, saturation and value
// at least 100/255.
func DefaultWindows() Windows {
	return Windows{
		YellowHueLow:   40,
		YellowHueHigh:  60,
		OrangeHueLow:   20,
		OrangeHueHigh:  40,
		RedHueLow:      0,
		RedHueHigh:     20,
		RedWrapHueLow:  340,
		RedWrapHueHigh: 360,
		SatMin:         100.0 / 255.0,
		ValMin:         100.0 / 255.0,
	}
}

// Classifier turns a raster radar frame into a SourceAnalysis.
type Classifier struct {
	windows    Windows
	thresholds domain.Thresholds
	clock      clockwork.Clock
	logger     *slog.Logger
}

// New creates a Classifier with the given calibration.
func New(windows Windows, thresholds domain.Thresholds, clock clockwork.Clock, logger *slog.Logger) *Classifier {
	return &Classifier{
		windows:    windows,
		thresholds: thresholds,
		clock:      clock,
		logger:     logger,
	}
}

// Classify measures the yellow, orange, and red coverage of img and applies
// the alert policy. The three band measurements are always present in the
// result, triggered or not. Classifying the same image twice yields
// identical fractions and the same alert level.
func (c *Classifier) Classify(img image.Image, provider string) (domain.SourceAnalysis, error) {
	if img == nil {
		return domain.SourceAnalysis{}, &domain.ImageLoadError{Source: provider, Cause: errors.New("nil image")}
	}
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return domain.SourceAnalysis{}, &domain.ImageLoadError{Source: provider, Cause: errors.New("empty image")}
	}

	var yellow, orange, red int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			col, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue // fully transparent pixel
			}
			h, s, v := col.Hsv()
			if s < c.windows.SatMin || v < c.windows.ValMin {
				continue
			}
			// Windows are matched independently: a pixel exactly on a
			// shared boundary hue counts in both adjacent bands.
			if h >= c.windows.YellowHueLow && h <= c.windows.YellowHueHigh {
				yellow++
			}
			if h >= c.windows.OrangeHueLow && h <= c.windows.OrangeHueHigh {
				orange++
			}
			if (h >= c.windows.RedHueLow && h <= c.windows.RedHueHigh) ||
				(h >= c.windows.RedWrapHueLow && h <= c.windows.RedWrapHueHigh) {
				red++
			}
		}
	}

	yellowPct := float64(yellow) / float64(total) * 100
	orangePct := float64(orange) / float64(total) * 100
	redPct := float64(red) / float64(total) * 100

	// Decide on unrounded fractions; round only for reporting.
	level := c.thresholds.Decide(yellowPct, orangePct, redPct)

	analysis := domain.SourceAnalysis{
		Provider:  provider,
		Timestamp: c.clock.Now(),
		Measurements: []domain.ColorBandMeasurement{
			measurement("yellow", yellowPct),
			measurement("orange", orangePct),
			measurement("red", redPct),
		},
		AlertLevel:         level,
		HasSignificantRain: level != domain.AlertNone,
	}

	c.logger.Info("analysis complete",
		"provider", provider,
		"alert_level", level,
		"yellow_pct", analysis.Measurements[0].Percent,
		"orange_pct", analysis.Measurements[1].Percent,
		"red_pct", analysis.Measurements[2].Percent,
	)
	return analysis, nil
}

func measurement(color string, pct float64) domain.ColorBandMeasurement {
	band, _ := domain.BandByColor(color)
	return domain.NewMeasurement(band, round2(pct))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
