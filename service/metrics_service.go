package service

import (
	"fmt"
	"log"
	"math"

	"marketplace-analytics/domain"
)

// MetricsService computes the operational health of a store from
// pre-aggregated transaction, impression and review counts.
type MetricsService struct{}

// NewMetricsService creates a metrics service.
func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// OperationalInput bundles the aggregates the metrics computation reads.
type OperationalInput struct {
	Statuses    domain.StatusCounts
	Customers   []domain.TransactionAggregate
	Impressions domain.ImpressionStats
	Reviews     domain.ReviewStats
	Processing  domain.ProcessingStats
}

// Compute derives the operational metrics and the composite health
// score. Empty inputs produce zeros, never NaN or Inf; a panic is
// converted into the all-zero fallback with its Error field set.
func (s *MetricsService) Compute(input OperationalInput) (metrics domain.OperationalMetrics) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("operational metrics failed: %v", r)
			metrics = domain.EmptyOperationalMetrics(fmt.Sprintf("operational metrics failed: %v", r))
		}
	}()

	total := input.Statuses.Total()
	metrics.TotalTransactions = total

	if total > 0 {
		metrics.FulfillmentRate = roundTo2Decimals(float64(input.Statuses.Completed) / float64(total) * 100)
		metrics.CancellationRate = roundTo2Decimals(float64(input.Statuses.Cancelled) / float64(total) * 100)
	}

	if len(input.Customers) > 0 {
		repeat := 0
		for _, c := range input.Customers {
			if c.TransactionCount > 1 {
				repeat++
			}
		}
		metrics.RepeatPurchaseRate = roundTo2Decimals(float64(repeat) / float64(len(input.Customers)) * 100)
	}

	if input.Impressions.UniqueSessions > 0 {
		metrics.ConversionRate = roundTo2Decimals(float64(input.Statuses.Completed) / float64(input.Impressions.UniqueSessions) * 100)
	}

	metrics.AvgProcessingHours = roundTo2Decimals(input.Processing.AvgHours)

	if input.Reviews.ReviewCount > 0 {
		metrics.SatisfactionScore = roundTo2Decimals(input.Reviews.AvgRating / 5 * 100)
	}

	metrics.HealthScore = healthScore(metrics)
	return metrics
}

// healthScore is the fixed weighted composite, clamped to [0, 100].
func healthScore(m domain.OperationalMetrics) int {
	processingScore := math.Max(0, 100-m.AvgProcessingHours/24*100)
	score := 0.3*m.FulfillmentRate +
		0.2*(100-m.CancellationRate) +
		0.3*m.SatisfactionScore +
		0.2*processingScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
