package scoring

import "encoding/json"

// wireZoneEntry is the JSON wire shape of one ZoneEntry row, per the serialized result
// contract: zone names are title-cased, and hr_min is null for the Off zone.
type wireZoneEntry struct {
	Zone           string  `json:"zone"`
	Minutes        float64 `json:"minutes"`
	StaminaGained  float64 `json:"stamina_gained"`
	StrengthGained float64 `json:"strength_gained"`
	HRMin          *int    `json:"hr_min"`
	HRMax          int     `json:"hr_max"`
}

// wireScoringResult is the JSON wire shape of a ScoringResult.
type wireScoringResult struct {
	StaminaGained  float64         `json:"stamina_gained"`
	StrengthGained float64         `json:"strength_gained"`
	ZoneBreakdown  []wireZoneEntry `json:"zone_breakdown"`
}

// MarshalJSON renders the result per the wire contract: zone names title-cased, zero-minute
// zones already omitted by Score, StrengthGained fixed at 0.0.
func (r ScoringResult) MarshalJSON() ([]byte, error) {
	breakdown := make([]wireZoneEntry, 0, len(r.ZoneBreakdown))
	for _, entry := range r.ZoneBreakdown {
		breakdown = append(breakdown, wireZoneEntry{
			Zone:           entry.Zone.String(),
			Minutes:        entry.Minutes,
			StaminaGained:  entry.StaminaGained,
			StrengthGained: entry.StrengthGained,
			HRMin:          entry.HRMin,
			HRMax:          entry.HRMax,
		})
	}
	return json.Marshal(wireScoringResult{ //nolint:wrapcheck // json.Marshal errors carry enough context on their own.
		StaminaGained:  r.StaminaGained,
		StrengthGained: r.StrengthGained,
		ZoneBreakdown:  breakdown,
	})
}
