package domain

import "time"

// Provider describes one named radar map source.
type Provider struct {
	ID   string
	Name string
	URL  string

	// SettleWait is how long the rendered map needs after navigation before
	// the radar overlay is fully painted and safe to capture.
	SettleWait time.Duration

	// RateUnitFactor converts the provider legend's native rate unit to
	// mm/hour. The govmap legend encodes mm per 10 minutes, so its factor
	// is 6. Applied to reported rate bounds only; the alert decision is
	// pixel-fraction based and never depends on it.
	RateUnitFactor float64
}

// Known provider identifiers.
const (
	ProviderWindy  = "windy"
	ProviderGovmap = "govmap"
)

// providers is the fixed registry of known radar map sources.
var providers = map[string]Provider{
	ProviderWindy: {
		ID:             ProviderWindy,
		Name:           "Windy weather radar",
		URL:            "https://www.windy.com/-Weather-radar-radar?radar,32.399,34.869,7",
		SettleWait:     5 * time.Second,
		RateUnitFactor: 1,
	},
	ProviderGovmap: {
		ID:             ProviderGovmap,
		Name:           "GovMap national radar",
		URL:            "https://www.govmap.gov.il/?c=219143.61,618345.06&app=app12",
		SettleWait:     8 * time.Second,
		RateUnitFactor: 6,
	},
}

// ProviderByID looks up a provider in the registry.
func ProviderByID(id string) (Provider, bool) {
	p, ok := providers[id]
	return p, ok
}

// ProviderIDs returns the identifiers of all known providers.
func ProviderIDs() []string {
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	return ids
}
