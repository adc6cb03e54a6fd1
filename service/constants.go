package service

const (
	// Forecasting.
	SmoothingAlpha      = 0.3   // exponential smoothing factor
	MovingAverageWindow = 3     // trailing window
	SeasonalMinPoints   = 12    // full year of monthly data
	PolynomialMinPoints = 4     // degree-2 fit needs 4 points
	MinForecastPoints   = 3     // below this the whole forecast short-circuits
	PolyDetEpsilon      = 1e-10 // near-singular determinant guard
	ConfidenceZ         = 1.96  // 95% normal interval

	// Ensemble base weights, renormalized after data-volume adjustment.
	WeightLinear          = 0.25
	WeightExponential     = 0.2
	WeightSeasonal        = 0.3
	WeightSeasonalSparse  = 0.1 // <12 points
	WeightMovingAverage   = 0.15
	WeightPolynomial      = 0.1
	WeightPolynomialShort = 0.05 // <6 points

	// Trend thresholds on growth rate, in percent.
	GrowthIncreasing = 5.0
	GrowthDecreasing = -5.0

	// Segmentation.
	LostAfterDays      = 180
	ChurnHighAfterDays = 90
	ChurnMediumDays    = 31
	LowPercentile      = 33.0
	HighPercentile     = 67.0
	MaxRecommendations = 5

	// Output sanitization bounds for percentage-like fields.
	PercentFloor   = -100.0
	PercentCeiling = 1000.0
)
