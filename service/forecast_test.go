package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-analytics/domain"
)

// monthlySeries builds consecutive monthly revenue points ending last
// month.
func monthlySeries(values ...float64) []domain.RevenuePoint {
	n := len(values)
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	points := make([]domain.RevenuePoint, n)
	for i, v := range values {
		points[i] = domain.RevenuePoint{Month: first.AddDate(0, i, 0), Revenue: v}
	}
	return points
}

func TestLinearRegression_SteadyGrowth(t *testing.T) {
	result := linearRegression{}.forecast(monthlySeries(100, 110, 120, 130, 140, 150))

	assert.Equal(t, domain.TrendIncreasing, result.Trend)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence, "perfect linear fit has R^2 = 1")
	assert.InDelta(t, 160, result.NextMonth, 5)
	require.Len(t, result.Next6Months, 6)
	assert.InDelta(t, 220, result.Next6Months[5], 5)
}

func TestLinearRegression_TooFewPoints(t *testing.T) {
	result := linearRegression{}.forecast(monthlySeries(42))

	assert.Equal(t, 42.0, result.NextMonth, "below the minimum the last value passes through")
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
}

func TestExponentialSmoothing_FlatForecast(t *testing.T) {
	result := exponentialSmoothing{alpha: SmoothingAlpha}.forecast(monthlySeries(100, 100, 100, 100))

	assert.Equal(t, 100.0, result.NextMonth)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence, "zero residuals mean zero MAPE")
	// No trend extrapolation: the multi-month forecasts repeat the level.
	assert.Equal(t, []float64{100, 100, 100}, result.Next3Months)
	assert.Equal(t, result.NextMonth, result.Next6Months[5])
}

func TestMovingAverage_TrailingWindow(t *testing.T) {
	result := movingAverage{window: MovingAverageWindow}.forecast(monthlySeries(10, 20, 120, 130, 140))

	assert.Equal(t, 130.0, result.NextMonth, "only the last three points participate")
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
}

func TestPolynomialRegression_FitsQuadratic(t *testing.T) {
	// y = x^2: 0 1 4 9 16 25, next is 36.
	result := polynomialRegression{}.forecast(monthlySeries(0, 1, 4, 9, 16, 25))

	assert.InDelta(t, 36, result.NextMonth, 0.5)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
	assert.Equal(t, domain.TrendIncreasing, result.Trend)
}

func TestSeasonalAverage_NeedsFullYear(t *testing.T) {
	short := seasonalAverage{}.forecast(monthlySeries(1, 2, 3, 4, 5))
	assert.Equal(t, 5.0, short.NextMonth, "short series passes the last value through")
	assert.Equal(t, domain.ConfidenceLow, short.Confidence)

	// Two full years: every calendar month covered twice.
	values := make([]float64, 24)
	for i := range values {
		values[i] = 100 + float64(i%12)
	}
	full := seasonalAverage{}.forecast(monthlySeries(values...))
	assert.Equal(t, domain.ConfidenceHigh, full.Confidence)
	assert.Greater(t, full.NextMonth, 0.0)
}

func TestForecast_InsufficientData(t *testing.T) {
	svc := NewForecastService()

	result := svc.Forecast(monthlySeries(100, 200))

	assert.Equal(t, 0.0, result.NextMonth)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
	assert.Equal(t, domain.TrendStable, result.Trend)
	assert.Equal(t, 2, result.DataPoints)
	assert.Empty(t, result.Error, "too little data is expected, not an error")
}

func TestForecast_SteadyGrowthEnsemble(t *testing.T) {
	svc := NewForecastService()

	result := svc.Forecast(monthlySeries(100, 110, 120, 130, 140, 150))

	assert.Greater(t, result.GrowthRate, 0.0)
	assert.Equal(t, domain.TrendIncreasing, result.Trend)
	assert.Greater(t, result.NextMonth, 140.0)
	assert.Less(t, result.NextMonth, 165.0)
	assert.GreaterOrEqual(t, result.ConfidenceInterval.Lower, 0.0)
	assert.Greater(t, result.ConfidenceInterval.Upper, result.NextMonth)
}

func TestForecast_WeightsSumToOne(t *testing.T) {
	svc := NewForecastService()

	for _, n := range []int{3, 5, 7, 14} {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(100 + 10*i)
		}
		result := svc.Forecast(monthlySeries(values...))

		sum := 0.0
		for _, report := range result.Algorithms {
			sum += report.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights must renormalize for %d points", n)
	}
}

func TestForecast_NonNegativeOutput(t *testing.T) {
	svc := NewForecastService()

	for name, values := range map[string][]float64{
		"all zero":  {0, 0, 0, 0, 0, 0},
		"declining": {800, 700, 600, 500, 400, 300, 200, 100},
	} {
		result := svc.Forecast(monthlySeries(values...))

		assert.GreaterOrEqual(t, result.NextMonth, 0.0, name)
		for _, v := range result.Next3Months {
			assert.GreaterOrEqual(t, v, 0.0, name)
		}
		for _, v := range result.Next6Months {
			assert.GreaterOrEqual(t, v, 0.0, name)
		}
		assert.GreaterOrEqual(t, result.ConfidenceInterval.Lower, 0.0, name)
	}
}

func TestForecast_BacktestPicksLinearOnLinearData(t *testing.T) {
	svc := NewForecastService()

	result := svc.Forecast(monthlySeries(100, 110, 120, 130, 140, 150))

	assert.Equal(t, "linear", result.BestAlgorithm, "linear predicts the held-out point exactly")
	assert.InDelta(t, 0, result.BestAlgorithmError, 0.01)
}

type explodingAlgorithm struct{}

func (explodingAlgorithm) name() string { return "exploding" }

func (explodingAlgorithm) forecast([]domain.RevenuePoint) domain.ForecastResult {
	panic("index out of range")
}

func TestForecast_RecoversFromAlgorithmPanic(t *testing.T) {
	svc := &ForecastService{algorithms: []forecastAlgorithm{explodingAlgorithm{}}}

	result := svc.Forecast(monthlySeries(100, 110, 120, 130))

	assert.Contains(t, result.Error, "revenue forecast failed")
	assert.Equal(t, 4, result.DataPoints)
	assert.Equal(t, 0.0, result.NextMonth)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
	assert.Equal(t, domain.TrendStable, result.Trend)
}

func TestForecast_Deterministic(t *testing.T) {
	svc := NewForecastService()
	points := monthlySeries(120, 80, 140, 90, 160, 110, 180, 130)

	first := svc.Forecast(points)
	second := svc.Forecast(points)

	assert.Equal(t, first, second)
}
