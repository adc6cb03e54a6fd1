package service

import (
	"fmt"
	"log"
	"math"

	"marketplace-analytics/domain"
)

// roundTo2Decimals rounds a float64 to 2 decimal places.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if v < PercentFloor {
		return PercentFloor
	}
	if v > PercentCeiling {
		return PercentCeiling
	}
	return v
}

var confidenceScores = map[domain.Confidence]float64{
	domain.ConfidenceHigh:   0.9,
	domain.ConfidenceMedium: 0.6,
	domain.ConfidenceLow:    0.3,
}

// ForecastService blends a fixed list of forecasting strategies into a
// single revenue forecast.
type ForecastService struct {
	algorithms []forecastAlgorithm
}

// NewForecastService creates the ensemble with its five strategies.
func NewForecastService() *ForecastService {
	return &ForecastService{
		algorithms: []forecastAlgorithm{
			linearRegression{},
			exponentialSmoothing{alpha: SmoothingAlpha},
			seasonalAverage{},
			movingAverage{window: MovingAverageWindow},
			polynomialRegression{},
		},
	}
}

// baseWeight returns the data-volume-adjusted base weight for an
// algorithm, before renormalization.
func baseWeight(name string, dataPoints int) float64 {
	switch name {
	case "linear":
		return WeightLinear
	case "exponential":
		return WeightExponential
	case "seasonal":
		if dataPoints < SeasonalMinPoints {
			return WeightSeasonalSparse
		}
		return WeightSeasonal
	case "movingAverage":
		return WeightMovingAverage
	case "polynomial":
		if dataPoints < 6 {
			return WeightPolynomialShort
		}
		return WeightPolynomial
	}
	return 0
}

// monthAt returns an algorithm's forecast for a given month ahead
// (1-based), falling back to NextMonth when the multi-month array is
// absent or too short.
func monthAt(result domain.ForecastResult, ahead int) float64 {
	if ahead <= 3 && len(result.Next3Months) >= ahead {
		return result.Next3Months[ahead-1]
	}
	if len(result.Next6Months) >= ahead {
		return result.Next6Months[ahead-1]
	}
	return result.NextMonth
}

// Forecast runs every algorithm over the monthly revenue series and
// blends the results. Fewer than MinForecastPoints months short-circuits
// into the zero, low-confidence result; a panic during computation is
// converted into the same fallback with its Error field set, so callers
// always receive a fully-shaped forecast.
func (s *ForecastService) Forecast(points []domain.RevenuePoint) (forecast domain.RevenueForecast) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("revenue forecast failed: %v", r)
			forecast = domain.EmptyForecast(len(points), fmt.Sprintf("revenue forecast failed: %v", r))
		}
	}()

	n := len(points)
	if n < MinForecastPoints {
		return domain.EmptyForecast(n, "")
	}
	values := seriesValues(points)

	results := make([]domain.ForecastResult, len(s.algorithms))
	weights := make([]float64, len(s.algorithms))
	totalWeight := 0.0
	for i, alg := range s.algorithms {
		results[i] = alg.forecast(points)
		weights[i] = baseWeight(alg.name(), n)
		totalWeight += weights[i]
	}
	for i := range weights {
		weights[i] /= totalWeight
	}

	var nextMonth, confidenceScore float64
	next3 := make([]float64, 3)
	next6 := make([]float64, 6)
	var movingAvgNext float64
	reports := make([]domain.AlgorithmReport, len(s.algorithms))
	for i, alg := range s.algorithms {
		w := weights[i]
		nextMonth += w * results[i].NextMonth
		for m := 1; m <= 6; m++ {
			v := w * monthAt(results[i], m)
			if m <= 3 {
				next3[m-1] += v
			}
			next6[m-1] += v
		}
		confidenceScore += w * confidenceScores[results[i].Confidence]
		if alg.name() == "movingAverage" {
			movingAvgNext = results[i].NextMonth
		}
		reports[i] = domain.AlgorithmReport{
			Name:       alg.name(),
			NextMonth:  roundTo2Decimals(results[i].NextMonth),
			Weight:     w,
			Confidence: results[i].Confidence,
		}
	}

	growthRate := 0.0
	if movingAvgNext != 0 {
		growthRate = roundTo2Decimals((nextMonth - movingAvgNext) / movingAvgNext * 100)
	}
	growthRate = clampPercent(growthRate)

	trend := domain.TrendStable
	if growthRate > GrowthIncreasing {
		trend = domain.TrendIncreasing
	} else if growthRate < GrowthDecreasing {
		trend = domain.TrendDecreasing
	}

	confidence := domain.ConfidenceLow
	if confidenceScore > 0.75 {
		confidence = domain.ConfidenceHigh
	} else if confidenceScore > 0.5 {
		confidence = domain.ConfidenceMedium
	}

	stdDev := sampleStdDev(values)
	interval := domain.ConfidenceInterval{
		Lower: roundTo2Decimals(clampNonNegative(nextMonth - ConfidenceZ*stdDev)),
		Upper: roundTo2Decimals(clampNonNegative(nextMonth + ConfidenceZ*stdDev)),
	}

	for i := range next3 {
		next3[i] = roundTo2Decimals(clampNonNegative(next3[i]))
	}
	for i := range next6 {
		next6[i] = roundTo2Decimals(clampNonNegative(next6[i]))
	}

	best, bestErr := s.backtest(points)

	return domain.RevenueForecast{
		NextMonth:          roundTo2Decimals(clampNonNegative(nextMonth)),
		Next3Months:        next3,
		Next6Months:        next6,
		GrowthRate:         growthRate,
		Trend:              trend,
		Confidence:         confidence,
		ConfidenceInterval: interval,
		Algorithms:         reports,
		BestAlgorithm:      best,
		BestAlgorithmError: bestErr,
		DataPoints:         n,
	}
}

// backtest scores every algorithm by re-running it without the final
// month and comparing its one-step forecast against that held-out value.
// Lowest absolute percentage error wins. Deterministic by construction.
func (s *ForecastService) backtest(points []domain.RevenuePoint) (string, float64) {
	n := len(points)
	if n < MinForecastPoints+1 {
		return "", 0
	}
	train := points[:n-1]
	holdout := points[n-1].Revenue

	bestName := ""
	bestErr := math.Inf(1)
	for _, alg := range s.algorithms {
		predicted := alg.forecast(train).NextMonth
		err := math.Abs(predicted - holdout)
		if holdout != 0 {
			err = err / math.Abs(holdout) * 100
		}
		if err < bestErr {
			bestErr = err
			bestName = alg.name()
		}
	}
	return bestName, roundTo2Decimals(bestErr)
}
