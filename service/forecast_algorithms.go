package service

import (
	"math"

	"marketplace-analytics/domain"
)

// forecastAlgorithm is the contract shared by the five forecasting
// strategies blended by ForecastService.
type forecastAlgorithm interface {
	name() string
	forecast(points []domain.RevenuePoint) domain.ForecastResult
}

func seriesValues(points []domain.RevenuePoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Revenue
	}
	return values
}

func seriesMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 standard deviation of the series.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := seriesMean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func repeatValue(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// passThrough is the degenerate result an algorithm returns below its
// minimum data requirement: the last observed value, repeated.
func passThrough(values []float64) domain.ForecastResult {
	last := 0.0
	if len(values) > 0 {
		last = values[len(values)-1]
	}
	return domain.ForecastResult{
		NextMonth:   last,
		Next3Months: repeatValue(last, 3),
		Next6Months: repeatValue(last, 6),
		Confidence:  domain.ConfidenceLow,
		Trend:       domain.TrendStable,
	}
}

// linearRegression fits ordinary least squares over the point index.
type linearRegression struct{}

func (linearRegression) name() string { return "linear" }

func (linearRegression) forecast(points []domain.RevenuePoint) domain.ForecastResult {
	values := seriesValues(points)
	n := len(values)
	if n < 2 {
		return passThrough(values)
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	// R^2 against the mean model.
	mean := sumY / fn
	var ssRes, ssTot float64
	for i, y := range values {
		fitted := intercept + slope*float64(i)
		ssRes += (y - fitted) * (y - fitted)
		ssTot += (y - mean) * (y - mean)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	confidence := domain.ConfidenceLow
	if r2 > 0.8 {
		confidence = domain.ConfidenceHigh
	} else if r2 > 0.5 {
		confidence = domain.ConfidenceMedium
	}

	trend := domain.TrendStable
	if slope > 0 {
		trend = domain.TrendIncreasing
	} else if slope < 0 {
		trend = domain.TrendDecreasing
	}

	project := func(ahead int) float64 {
		return intercept + slope*float64(n-1+ahead)
	}
	next3 := make([]float64, 3)
	next6 := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v := project(i + 1)
		if i < 3 {
			next3[i] = v
		}
		next6[i] = v
	}

	return domain.ForecastResult{
		NextMonth:   project(1),
		Next3Months: next3,
		Next6Months: next6,
		Confidence:  confidence,
		Trend:       trend,
	}
}

// exponentialSmoothing applies single exponential smoothing with a fixed
// factor. The multi-month forecasts are flat repetitions of the smoothed
// level; the method carries no trend term, which is kept as-is.
type exponentialSmoothing struct {
	alpha float64
}

func (exponentialSmoothing) name() string { return "exponential" }

func (e exponentialSmoothing) forecast(points []domain.RevenuePoint) domain.ForecastResult {
	values := seriesValues(points)
	n := len(values)
	if n < 2 {
		return passThrough(values)
	}

	alpha := e.alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = SmoothingAlpha
	}

	// One-step-ahead residuals: the forecast for point i is the level
	// after point i-1.
	level := values[0]
	var mapeSum float64
	mapeCount := 0
	for i := 1; i < n; i++ {
		if values[i] != 0 {
			mapeSum += math.Abs(values[i]-level) / math.Abs(values[i])
			mapeCount++
		}
		level = alpha*values[i] + (1-alpha)*level
	}

	confidence := domain.ConfidenceLow
	if mapeCount > 0 {
		mape := mapeSum / float64(mapeCount)
		if mape < 0.1 {
			confidence = domain.ConfidenceHigh
		} else if mape < 0.3 {
			confidence = domain.ConfidenceMedium
		}
	}

	return domain.ForecastResult{
		NextMonth:   level,
		Next3Months: repeatValue(level, 3),
		Next6Months: repeatValue(level, 6),
		Confidence:  confidence,
		Trend:       domain.TrendStable,
	}
}

// movingAverage forecasts the trailing-window mean, flat.
type movingAverage struct {
	window int
}

func (movingAverage) name() string { return "movingAverage" }

func (m movingAverage) forecast(points []domain.RevenuePoint) domain.ForecastResult {
	values := seriesValues(points)
	n := len(values)
	if n < 2 {
		return passThrough(values)
	}

	window := m.window
	if window <= 0 {
		window = MovingAverageWindow
	}
	if window > n {
		window = n
	}
	avg := seriesMean(values[n-window:])

	return domain.ForecastResult{
		NextMonth:   avg,
		Next3Months: repeatValue(avg, 3),
		Next6Months: repeatValue(avg, 6),
		Confidence:  domain.ConfidenceMedium,
		Trend:       domain.TrendStable,
	}
}

// polynomialRegression fits a degree-2 polynomial via the closed-form
// normal equations, falling back to linear regression when the system is
// near-singular.
type polynomialRegression struct{}

func (polynomialRegression) name() string { return "polynomial" }

func (polynomialRegression) forecast(points []domain.RevenuePoint) domain.ForecastResult {
	values := seriesValues(points)
	n := len(values)
	if n < PolynomialMinPoints {
		return passThrough(values)
	}

	// Normal equations for y = a*x^2 + b*x + c over x = 0..n-1.
	var s0, s1, s2, s3, s4, sy, sxy, sxxy float64
	s0 = float64(n)
	for i, y := range values {
		x := float64(i)
		x2 := x * x
		s1 += x
		s2 += x2
		s3 += x2 * x
		s4 += x2 * x2
		sy += y
		sxy += x * y
		sxxy += x2 * y
	}

	det := s4*(s2*s0-s1*s1) - s3*(s3*s0-s1*s2) + s2*(s3*s1-s2*s2)
	if math.Abs(det) < PolyDetEpsilon {
		return linearRegression{}.forecast(points)
	}

	a := (sxxy*(s2*s0-s1*s1) - s3*(sxy*s0-sy*s1) + s2*(sxy*s1-sy*s2)) / det
	b := (s4*(sxy*s0-sy*s1) - sxxy*(s3*s0-s1*s2) + s2*(s3*sy-s2*sxy)) / det
	c := (s4*(s2*sy-s1*sxy) - s3*(s3*sy-s1*sxxy) + sxxy*(s3*s1-s2*s2)) / det

	fit := func(x float64) float64 { return a*x*x + b*x + c }

	mean := sy / s0
	var ssRes, ssTot float64
	for i, y := range values {
		d := y - fit(float64(i))
		ssRes += d * d
		ssTot += (y - mean) * (y - mean)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	confidence := domain.ConfidenceLow
	if r2 > 0.8 {
		confidence = domain.ConfidenceHigh
	} else if r2 > 0.5 {
		confidence = domain.ConfidenceMedium
	}

	// Trend from the fitted slope at the series end.
	slopeAtEnd := 2*a*float64(n-1) + b
	trend := domain.TrendStable
	if slopeAtEnd > 0 {
		trend = domain.TrendIncreasing
	} else if slopeAtEnd < 0 {
		trend = domain.TrendDecreasing
	}

	next3 := make([]float64, 3)
	next6 := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v := fit(float64(n + i))
		if i < 3 {
			next3[i] = v
		}
		next6[i] = v
	}

	return domain.ForecastResult{
		NextMonth:   fit(float64(n)),
		Next3Months: next3,
		Next6Months: next6,
		Confidence:  confidence,
		Trend:       trend,
	}
}

// seasonalAverage buckets revenue by calendar month and forecasts the
// next month as that month's historical average. It only produces a
// single-step forecast; the ensemble falls back to NextMonth for the
// multi-month blends.
type seasonalAverage struct{}

func (seasonalAverage) name() string { return "seasonal" }

func (seasonalAverage) forecast(points []domain.RevenuePoint) domain.ForecastResult {
	if len(points) < SeasonalMinPoints {
		return passThrough(seriesValues(points))
	}

	var sums [13]float64
	var counts [13]int
	for _, p := range points {
		m := int(p.Month.Month())
		sums[m] += p.Revenue
		counts[m]++
	}

	covered := 0
	for m := 1; m <= 12; m++ {
		if counts[m] > 0 {
			covered++
		}
	}
	confidence := domain.ConfidenceMedium
	if covered == 12 {
		confidence = domain.ConfidenceHigh
	}

	next := int(points[len(points)-1].Month.AddDate(0, 1, 0).Month())
	forecast := 0.0
	if counts[next] > 0 {
		forecast = sums[next] / float64(counts[next])
	} else {
		forecast = seriesMean(seriesValues(points))
	}

	return domain.ForecastResult{
		NextMonth:  forecast,
		Confidence: confidence,
	}
}
