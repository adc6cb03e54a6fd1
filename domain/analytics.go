package domain

import "time"

// Level selects how much of the analytics pipeline runs for a request.
// The level is part of the cache key, so tiers are cached independently.
type Level string

const (
	LevelBasic    Level = "basic"    // operational metrics only
	LevelStandard Level = "standard" // + revenue forecast
	LevelFull     Level = "full"     // + customer segmentation
)

// NormalizeLevel maps unknown tier strings to the standard tier.
func NormalizeLevel(s string) Level {
	switch Level(s) {
	case LevelBasic, LevelStandard, LevelFull:
		return Level(s)
	default:
		return LevelStandard
	}
}

// AnalyticsPayload is the assembled response for one store, window and
// tier. Sections missing from lower tiers are nil.
type AnalyticsPayload struct {
	StoreID      string              `json:"storeId"`
	Months       int                 `json:"months"`
	Level        Level               `json:"level"`
	Revenue      []RevenuePoint      `json:"revenue"`
	Operational  OperationalMetrics  `json:"operational"`
	Forecast     *RevenueForecast    `json:"forecast,omitempty"`
	Segmentation *SegmentationResult `json:"segmentation,omitempty"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}
