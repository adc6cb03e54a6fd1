package repository

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"marketplace-analytics/domain"
)

// MySQLRepository implements StoreRepository over the marketplace
// transactional database. Every query aggregates server-side; raw rows
// never cross into the services.
type MySQLRepository struct {
	db *sqlx.DB
}

// NewMySQLRepository opens a pooled connection for the given DSN.
func NewMySQLRepository(dsn string) (*MySQLRepository, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &MySQLRepository{db: db}, nil
}

// Close releases the connection pool.
func (r *MySQLRepository) Close() error {
	return r.db.Close()
}

// rangeClause appends optional created_at bounds to a WHERE clause.
func rangeClause(dr domain.DateRange, args []any) (string, []any) {
	clause := ""
	if dr.Start != nil {
		clause += " AND created_at >= ?"
		args = append(args, dr.Start.UTC())
	}
	if dr.End != nil {
		clause += " AND created_at < ?"
		args = append(args, dr.End.UTC())
	}
	return clause, args
}

type customerAggregateRow struct {
	CustomerID         string    `db:"customer_id"`
	TotalSpent         float64   `db:"total_spent"`
	TransactionCount   int       `db:"transaction_count"`
	AvgTransaction     float64   `db:"avg_transaction"`
	MinTransaction     float64   `db:"min_transaction"`
	MaxTransaction     float64   `db:"max_transaction"`
	FirstPurchase      time.Time `db:"first_purchase"`
	LastPurchase       time.Time `db:"last_purchase"`
	UniquePurchaseDays int       `db:"unique_purchase_days"`
}

func (r *MySQLRepository) CustomerAggregates(ctx context.Context, storeID string, dr domain.DateRange) ([]domain.TransactionAggregate, error) {
	clause, args := rangeClause(dr, []any{storeID})
	query := `
		SELECT
			customer_id,
			SUM(amount)                  AS total_spent,
			COUNT(*)                     AS transaction_count,
			AVG(amount)                  AS avg_transaction,
			MIN(amount)                  AS min_transaction,
			MAX(amount)                  AS max_transaction,
			MIN(created_at)              AS first_purchase,
			MAX(created_at)              AS last_purchase,
			COUNT(DISTINCT DATE(created_at)) AS unique_purchase_days
		FROM transactions
		WHERE store_id = ? AND status = 'completed'` + clause + `
		GROUP BY customer_id
	`

	var rows []customerAggregateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("customer aggregates for store %s: %w", storeID, err)
	}

	aggregates := make([]domain.TransactionAggregate, 0, len(rows))
	for _, row := range rows {
		lifespan := int(row.LastPurchase.Sub(row.FirstPurchase).Hours() / 24)
		aggregates = append(aggregates, domain.TransactionAggregate{
			CustomerID:         row.CustomerID,
			TotalSpent:         row.TotalSpent,
			TransactionCount:   row.TransactionCount,
			AvgTransaction:     row.AvgTransaction,
			MinTransaction:     row.MinTransaction,
			MaxTransaction:     row.MaxTransaction,
			FirstPurchase:      row.FirstPurchase,
			LastPurchase:       row.LastPurchase,
			UniquePurchaseDays: row.UniquePurchaseDays,
			LifespanDays:       lifespan,
		})
	}
	return aggregates, nil
}

type monthlyRevenueRow struct {
	Month   string  `db:"month"`
	Revenue float64 `db:"revenue"`
}

func (r *MySQLRepository) MonthlyRevenue(ctx context.Context, storeID string, months int) ([]domain.RevenuePoint, error) {
	start := time.Now().UTC().AddDate(0, -months, 0)
	query := `
		SELECT
			DATE_FORMAT(created_at, '%Y-%m') AS month,
			SUM(amount)                      AS revenue
		FROM transactions
		WHERE store_id = ? AND status = 'completed' AND created_at >= ?
		GROUP BY month
		ORDER BY month ASC
	`

	var rows []monthlyRevenueRow
	if err := r.db.SelectContext(ctx, &rows, query, storeID, start); err != nil {
		return nil, fmt.Errorf("monthly revenue for store %s: %w", storeID, err)
	}

	points := make([]domain.RevenuePoint, 0, len(rows))
	for _, row := range rows {
		month, err := time.Parse("2006-01", row.Month)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", row.Month, err)
		}
		points = append(points, domain.RevenuePoint{Month: month, Revenue: row.Revenue})
	}
	return points, nil
}

func (r *MySQLRepository) StatusCounts(ctx context.Context, storeID string, dr domain.DateRange) (domain.StatusCounts, error) {
	clause, args := rangeClause(dr, []any{storeID})
	query := `
		SELECT status, COUNT(*) AS n
		FROM transactions
		WHERE store_id = ?` + clause + `
		GROUP BY status
	`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("status counts for store %s: %w", storeID, err)
	}
	defer rows.Close()

	var counts domain.StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.StatusCounts{}, err
		}
		switch status {
		case "completed":
			counts.Completed = n
		case "cancelled":
			counts.Cancelled = n
		case "pending", "processing":
			counts.Pending += n
		default:
			counts.Other += n
		}
	}
	return counts, rows.Err()
}

func (r *MySQLRepository) ImpressionStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ImpressionStats, error) {
	clause, args := rangeClause(dr, []any{storeID})
	query := `
		SELECT COUNT(*) AS total, COUNT(DISTINCT session_id) AS sessions
		FROM impressions
		WHERE store_id = ?` + clause

	var stats domain.ImpressionStats
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&stats.TotalImpressions, &stats.UniqueSessions); err != nil {
		return domain.ImpressionStats{}, fmt.Errorf("impressions for store %s: %w", storeID, err)
	}
	return stats, nil
}

func (r *MySQLRepository) ReviewStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ReviewStats, error) {
	clause, args := rangeClause(dr, []any{storeID})
	query := `
		SELECT COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg_rating
		FROM reviews
		WHERE store_id = ?` + clause

	var stats domain.ReviewStats
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&stats.ReviewCount, &stats.AvgRating); err != nil {
		return domain.ReviewStats{}, fmt.Errorf("reviews for store %s: %w", storeID, err)
	}
	return stats, nil
}

func (r *MySQLRepository) ProcessingStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ProcessingStats, error) {
	clause, args := rangeClause(dr, []any{storeID})
	// Orders without an update fall back to created_at, i.e. zero hours.
	query := `
		SELECT
			COALESCE(AVG(TIMESTAMPDIFF(SECOND, created_at, COALESCE(updated_at, created_at))), 0) / 3600 AS avg_hours,
			COALESCE(MAX(TIMESTAMPDIFF(SECOND, created_at, COALESCE(updated_at, created_at))), 0) / 3600 AS max_hours
		FROM transactions
		WHERE store_id = ? AND status = 'completed'` + clause

	var stats domain.ProcessingStats
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&stats.AvgHours, &stats.MaxHours); err != nil {
		return domain.ProcessingStats{}, fmt.Errorf("processing stats for store %s: %w", storeID, err)
	}
	return stats, nil
}

func (r *MySQLRepository) StoreIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT store_id FROM transactions ORDER BY store_id`); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return ids, nil
}
