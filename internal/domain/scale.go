package domain

// SeverityTier labels the risk implied by a reflectivity band.
type SeverityTier string

const (
	TierLight   SeverityTier = "light"
	TierWarning SeverityTier = "warning"
	TierDanger  SeverityTier = "danger"
	TierSevere  SeverityTier = "severe"
)

// IntensityBand maps one reflectivity range to the legend color that renders
// it, the precipitation rate it implies, and a severity tier. Bands are
// ordered by DBZLow ascending and do not overlap; together they cover the
// tracked range from the lowest threshold (20 dBZ) up to the instrument
// ceiling (100 dBZ).
type IntensityBand struct {
	DBZLow       float64
	DBZHigh      float64
	ColorName    string
	MMPerHourMin float64
	MMPerHourMax float64
	Tier         SeverityTier
}

// instrumentCeiling is the top of the detectable dBZ range. The band that
// reaches it renders open-ended labels ("45+", "15.0+") since the upper
// bound is an instrument limit, not a meteorological one.
const instrumentCeiling = 100

// intensityScale is the fixed dBZ → rate conversion table. Read-only after
// process start; shared freely across concurrent analyses.
var intensityScale = []IntensityBand{
	{DBZLow: 20, DBZHigh: 30, ColorName: "lightblue", MMPerHourMin: 0.5, MMPerHourMax: 1.5, Tier: TierLight},
	{DBZLow: 30, DBZHigh: 35, ColorName: "green", MMPerHourMin: 1.5, MMPerHourMax: 2.5, Tier: TierLight},
	{DBZLow: 35, DBZHigh: 40, ColorName: "yellow", MMPerHourMin: 2.5, MMPerHourMax: 8.0, Tier: TierWarning},
	{DBZLow: 40, DBZHigh: 45, ColorName: "orange", MMPerHourMin: 8.0, MMPerHourMax: 15.0, Tier: TierDanger},
	{DBZLow: 45, DBZHigh: 100, ColorName: "red", MMPerHourMin: 15.0, MMPerHourMax: 300.0, Tier: TierSevere},
}

// IntensityScale returns the conversion table in ascending dBZ order.
// Callers must not modify the returned slice.
func IntensityScale() []IntensityBand {
	return intensityScale
}

// LookupBand returns the band containing dbz, matching DBZLow <= dbz < DBZHigh.
// The second return is false below the lowest tracked threshold or at and
// above the instrument ceiling; that is a valid "no meaningful precipitation"
// outcome, not an error. The table has five entries, so a linear scan is fine.
func LookupBand(dbz float64) (IntensityBand, bool) {
	for _, b := range intensityScale {
		if dbz >= b.DBZLow && dbz < b.DBZHigh {
			return b, true
		}
	}
	return IntensityBand{}, false
}

// BandByColor returns the band rendered with the given legend color name.
func BandByColor(color string) (IntensityBand, bool) {
	for _, b := range intensityScale {
		if b.ColorName == color {
			return b, true
		}
	}
	return IntensityBand{}, false
}

// TopBand reports whether the band reaches the instrument ceiling.
func (b IntensityBand) TopBand() bool {
	return b.DBZHigh >= instrumentCeiling
}
