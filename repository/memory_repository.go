package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketplace-analytics/domain"
)

// Transaction is a raw marketplace order or booking, used to seed the
// in-memory repository.
type Transaction struct {
	StoreID    string
	CustomerID string
	Amount     float64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Impression is a raw store-page impression event.
type Impression struct {
	StoreID   string
	SessionID string
	CreatedAt time.Time
}

// Review is a raw store review.
type Review struct {
	StoreID   string
	Rating    float64
	CreatedAt time.Time
}

// MemoryRepository is an in-memory StoreRepository over raw events. It
// backs tests and the DSN-less development mode, aggregating in Go what
// MySQLRepository aggregates in SQL.
type MemoryRepository struct {
	mu           sync.RWMutex
	transactions []Transaction
	impressions  []Impression
	reviews      []Review
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// AddTransactions seeds raw transactions.
func (r *MemoryRepository) AddTransactions(txs ...Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, txs...)
}

// AddImpressions seeds raw impressions.
func (r *MemoryRepository) AddImpressions(imps ...Impression) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.impressions = append(r.impressions, imps...)
}

// AddReviews seeds raw reviews.
func (r *MemoryRepository) AddReviews(revs ...Review) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, revs...)
}

func inRange(t time.Time, dr domain.DateRange) bool {
	if dr.Start != nil && t.Before(*dr.Start) {
		return false
	}
	if dr.End != nil && !t.Before(*dr.End) {
		return false
	}
	return true
}

func (r *MemoryRepository) CustomerAggregates(_ context.Context, storeID string, dr domain.DateRange) ([]domain.TransactionAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type acc struct {
		agg  domain.TransactionAggregate
		days map[string]bool
	}
	byCustomer := map[string]*acc{}
	var order []string

	for _, tx := range r.transactions {
		if tx.StoreID != storeID || tx.Status != "completed" || !inRange(tx.CreatedAt, dr) {
			continue
		}
		a, ok := byCustomer[tx.CustomerID]
		if !ok {
			a = &acc{
				agg: domain.TransactionAggregate{
					CustomerID:     tx.CustomerID,
					MinTransaction: tx.Amount,
					MaxTransaction: tx.Amount,
					FirstPurchase:  tx.CreatedAt,
					LastPurchase:   tx.CreatedAt,
				},
				days: map[string]bool{},
			}
			byCustomer[tx.CustomerID] = a
			order = append(order, tx.CustomerID)
		}
		a.agg.TotalSpent += tx.Amount
		a.agg.TransactionCount++
		if tx.Amount < a.agg.MinTransaction {
			a.agg.MinTransaction = tx.Amount
		}
		if tx.Amount > a.agg.MaxTransaction {
			a.agg.MaxTransaction = tx.Amount
		}
		if tx.CreatedAt.Before(a.agg.FirstPurchase) {
			a.agg.FirstPurchase = tx.CreatedAt
		}
		if tx.CreatedAt.After(a.agg.LastPurchase) {
			a.agg.LastPurchase = tx.CreatedAt
		}
		a.days[tx.CreatedAt.UTC().Format("2006-01-02")] = true
	}

	sort.Strings(order)
	aggregates := make([]domain.TransactionAggregate, 0, len(order))
	for _, id := range order {
		a := byCustomer[id]
		a.agg.AvgTransaction = a.agg.TotalSpent / float64(a.agg.TransactionCount)
		a.agg.UniquePurchaseDays = len(a.days)
		a.agg.LifespanDays = int(a.agg.LastPurchase.Sub(a.agg.FirstPurchase).Hours() / 24)
		aggregates = append(aggregates, a.agg)
	}
	return aggregates, nil
}

func (r *MemoryRepository) MonthlyRevenue(_ context.Context, storeID string, months int) ([]domain.RevenuePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := time.Now().UTC().AddDate(0, -months, 0)
	byMonth := map[string]float64{}
	for _, tx := range r.transactions {
		if tx.StoreID != storeID || tx.Status != "completed" || tx.CreatedAt.Before(start) {
			continue
		}
		byMonth[tx.CreatedAt.UTC().Format("2006-01")] += tx.Amount
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]domain.RevenuePoint, 0, len(keys))
	for _, k := range keys {
		month, _ := time.Parse("2006-01", k)
		points = append(points, domain.RevenuePoint{Month: month, Revenue: byMonth[k]})
	}
	return points, nil
}

func (r *MemoryRepository) StatusCounts(_ context.Context, storeID string, dr domain.DateRange) (domain.StatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts domain.StatusCounts
	for _, tx := range r.transactions {
		if tx.StoreID != storeID || !inRange(tx.CreatedAt, dr) {
			continue
		}
		switch tx.Status {
		case "completed":
			counts.Completed++
		case "cancelled":
			counts.Cancelled++
		case "pending", "processing":
			counts.Pending++
		default:
			counts.Other++
		}
	}
	return counts, nil
}

func (r *MemoryRepository) ImpressionStats(_ context.Context, storeID string, dr domain.DateRange) (domain.ImpressionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := map[string]bool{}
	var stats domain.ImpressionStats
	for _, imp := range r.impressions {
		if imp.StoreID != storeID || !inRange(imp.CreatedAt, dr) {
			continue
		}
		stats.TotalImpressions++
		sessions[imp.SessionID] = true
	}
	stats.UniqueSessions = len(sessions)
	return stats, nil
}

func (r *MemoryRepository) ReviewStats(_ context.Context, storeID string, dr domain.DateRange) (domain.ReviewStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.ReviewStats
	sum := 0.0
	for _, rev := range r.reviews {
		if rev.StoreID != storeID || !inRange(rev.CreatedAt, dr) {
			continue
		}
		stats.ReviewCount++
		sum += rev.Rating
	}
	if stats.ReviewCount > 0 {
		stats.AvgRating = sum / float64(stats.ReviewCount)
	}
	return stats, nil
}

func (r *MemoryRepository) ProcessingStats(_ context.Context, storeID string, dr domain.DateRange) (domain.ProcessingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.ProcessingStats
	n := 0
	sum := 0.0
	for _, tx := range r.transactions {
		if tx.StoreID != storeID || tx.Status != "completed" || !inRange(tx.CreatedAt, dr) {
			continue
		}
		updated := tx.UpdatedAt
		if updated.IsZero() {
			updated = tx.CreatedAt
		}
		hours := updated.Sub(tx.CreatedAt).Hours()
		sum += hours
		n++
		if hours > stats.MaxHours {
			stats.MaxHours = hours
		}
	}
	if n > 0 {
		stats.AvgHours = sum / float64(n)
	}
	return stats, nil
}

func (r *MemoryRepository) StoreIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var ids []string
	for _, tx := range r.transactions {
		if !seen[tx.StoreID] {
			seen[tx.StoreID] = true
			ids = append(ids, tx.StoreID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
