// Package domain models radar map snapshot analysis.
//
// # How the analysis works
//
// The service never decodes radar reflectivity data. It works on rendered
// radar map images: each provider paints precipitation intensity with a
// fixed legend palette, so the share of the frame occupied by each legend
// color is a visual proxy for how much heavy rain the radar currently sees.
// This is inherently approximate, but it is stable across providers that
// publish no machine-readable feed.
//
// # Reflectivity scale
//
// dBZ is a logarithmic unit of radar reflectivity used as a proxy for
// precipitation rate. The fixed conversion table:
//
//	20–30 dBZ  lightblue  0.5–1.5 mm/h    light
//	30–35 dBZ  green      1.5–2.5 mm/h    light
//	35–40 dBZ  yellow     2.5–8.0 mm/h    warning
//	40–45 dBZ  orange     8.0–15.0 mm/h   danger
//	45+  dBZ   red        15.0+ mm/h      severe
//
// Reflectivity below 20 dBZ is untracked (no meaningful precipitation);
// 100 dBZ is the instrument ceiling. The top band reports open-ended
// labels ("45+", "15.0+") because its upper bound is an instrument limit.
//
// # Alert policy
//
// Only the three strongest colors are measured. Trigger floors are
// fractions of a percent of the frame because storm cells are spatially
// concentrated even during severe events. First match wins:
//
//	red    > 0.1% of frame  ⇒ severe
//	orange > 0.5% of frame  ⇒ danger
//	yellow > 1.0% of frame  ⇒ warning
//	otherwise               ⇒ none
//
// # Provider rate units
//
// Provider legends do not agree on rate units: windy renders mm/hour
// directly while govmap renders mm per 10 minutes. Each provider carries a
// RateUnitFactor (6 for govmap) that is multiplied into the reported
// mm/hour bounds during orchestration. The factor never influences the
// alert decision, which is purely pixel-fraction based.
//
// # Persisted layout
//
// AggregateResult serializes to the JSON layout consumed by the dashboard:
// a top-level timestamp plus one entry per provider holding the archived
// screenshot path and the analysis object with fixed yellow/orange/red
// keys. The layout is a compatibility contract; field names, band keys,
// and range label formats must not change.
package domain
