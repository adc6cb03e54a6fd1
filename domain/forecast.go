package domain

// Confidence is a self-assessed forecast quality label.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Trend classifies the direction of a revenue series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// ForecastResult is the shared output shape of every forecast algorithm.
// Next3Months/Next6Months may be nil when an algorithm only produces a
// single-step forecast; the ensemble falls back to NextMonth then.
type ForecastResult struct {
	NextMonth   float64    `json:"nextMonth"`
	Next3Months []float64  `json:"next3Months,omitempty"`
	Next6Months []float64  `json:"next6Months,omitempty"`
	Confidence  Confidence `json:"confidence"`
	Trend       Trend      `json:"trend,omitempty"`
}

// ConfidenceInterval is a 95% interval around the blended next-month
// forecast, derived from historical variance.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// AlgorithmReport is the per-algorithm diagnostics attached to an
// ensemble forecast.
type AlgorithmReport struct {
	Name       string     `json:"name"`
	NextMonth  float64    `json:"nextMonth"`
	Weight     float64    `json:"weight"`
	Confidence Confidence `json:"confidence"`
}

// RevenueForecast is the blended ensemble output returned to callers.
type RevenueForecast struct {
	NextMonth          float64            `json:"nextMonth"`
	Next3Months        []float64          `json:"next3Months"`
	Next6Months        []float64          `json:"next6Months"`
	GrowthRate         float64            `json:"growthRate"`
	Trend              Trend              `json:"trend"`
	Confidence         Confidence         `json:"confidence"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
	Algorithms         []AlgorithmReport  `json:"algorithms"`
	BestAlgorithm      string             `json:"bestAlgorithm,omitempty"`
	BestAlgorithmError float64            `json:"bestAlgorithmError,omitempty"`
	DataPoints         int                `json:"dataPoints"`
	Error              string             `json:"error,omitempty"`
}

// EmptyForecast returns the zero-valued fallback shape used when the
// series is too short or the computation failed.
func EmptyForecast(dataPoints int, errMsg string) RevenueForecast {
	return RevenueForecast{
		Next3Months: []float64{0, 0, 0},
		Next6Months: []float64{0, 0, 0, 0, 0, 0},
		Trend:       TrendStable,
		Confidence:  ConfidenceLow,
		Algorithms:  []AlgorithmReport{},
		DataPoints:  dataPoints,
		Error:       errMsg,
	}
}
