package domain

import "time"

// TransactionAggregate is one row per customer, produced by a database
// aggregation over the store's orders and bookings. The analytics core
// treats it as immutable input.
type TransactionAggregate struct {
	CustomerID         string
	TotalSpent         float64
	TransactionCount   int
	AvgTransaction     float64
	MinTransaction     float64
	MaxTransaction     float64
	FirstPurchase      time.Time
	LastPurchase       time.Time
	UniquePurchaseDays int
	LifespanDays       int
}

// RevenuePoint is one calendar month of store revenue.
type RevenuePoint struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

// StatusCounts holds transaction counts bucketed by fulfillment status.
type StatusCounts struct {
	Completed int
	Cancelled int
	Pending   int
	Other     int
}

// Total returns the count across all statuses.
func (s StatusCounts) Total() int {
	return s.Completed + s.Cancelled + s.Pending + s.Other
}

// ImpressionStats holds impression counters for a store.
type ImpressionStats struct {
	TotalImpressions int
	UniqueSessions   int
}

// ReviewStats holds aggregated review ratings for a store.
type ReviewStats struct {
	ReviewCount int
	AvgRating   float64
}

// ProcessingStats holds order-processing duration aggregates.
type ProcessingStats struct {
	AvgHours float64
	MaxHours float64
}

// DateRange is an optional [Start, End) filter applied to upstream
// aggregation queries. A nil bound leaves that side open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// LastMonths returns a range covering the given number of whole months
// back from now.
func LastMonths(now time.Time, months int) DateRange {
	start := now.AddDate(0, -months, 0)
	return DateRange{Start: &start, End: &now}
}
