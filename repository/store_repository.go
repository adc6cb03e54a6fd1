package repository

import (
	"context"

	"marketplace-analytics/domain"
)

// StoreRepository fetches the pre-aggregated transactional inputs the
// analytics services consume. Implementations own the aggregation; the
// services only read the results.
type StoreRepository interface {
	// CustomerAggregates returns one row per customer who transacted
	// with the store inside the range.
	CustomerAggregates(ctx context.Context, storeID string, dr domain.DateRange) ([]domain.TransactionAggregate, error)

	// MonthlyRevenue returns completed revenue bucketed by calendar
	// month, oldest first, covering the last `months` months.
	MonthlyRevenue(ctx context.Context, storeID string, months int) ([]domain.RevenuePoint, error)

	// StatusCounts returns transaction counts by fulfillment status.
	StatusCounts(ctx context.Context, storeID string, dr domain.DateRange) (domain.StatusCounts, error)

	// ImpressionStats returns impression counters for the store page.
	ImpressionStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ImpressionStats, error)

	// ReviewStats returns the store's review count and average rating.
	ReviewStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ReviewStats, error)

	// ProcessingStats returns order processing-time aggregates in hours.
	ProcessingStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ProcessingStats, error)

	// StoreIDs lists every store with at least one transaction.
	StoreIDs(ctx context.Context) ([]string, error)
}
