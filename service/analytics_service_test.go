package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-analytics/domain"
	"marketplace-analytics/repository"
)

// stubStoreRepository serves canned aggregates and counts how often the
// revenue query runs, so cache behavior is observable.
type stubStoreRepository struct {
	revenue      []domain.RevenuePoint
	customers    []domain.TransactionAggregate
	fetchErr     error
	revenueCalls int
}

func (s *stubStoreRepository) CustomerAggregates(ctx context.Context, storeID string, dr domain.DateRange) ([]domain.TransactionAggregate, error) {
	return s.customers, s.fetchErr
}

func (s *stubStoreRepository) MonthlyRevenue(ctx context.Context, storeID string, months int) ([]domain.RevenuePoint, error) {
	s.revenueCalls++
	return s.revenue, s.fetchErr
}

func (s *stubStoreRepository) StatusCounts(ctx context.Context, storeID string, dr domain.DateRange) (domain.StatusCounts, error) {
	return domain.StatusCounts{Completed: 8, Cancelled: 1, Pending: 1}, s.fetchErr
}

func (s *stubStoreRepository) ImpressionStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ImpressionStats, error) {
	return domain.ImpressionStats{TotalImpressions: 100, UniqueSessions: 40}, s.fetchErr
}

func (s *stubStoreRepository) ReviewStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ReviewStats, error) {
	return domain.ReviewStats{ReviewCount: 5, AvgRating: 4.0}, s.fetchErr
}

func (s *stubStoreRepository) ProcessingStats(ctx context.Context, storeID string, dr domain.DateRange) (domain.ProcessingStats, error) {
	return domain.ProcessingStats{AvgHours: 6}, s.fetchErr
}

func (s *stubStoreRepository) StoreIDs(ctx context.Context) ([]string, error) {
	return []string{"store-1"}, s.fetchErr
}

func newStubRepo() *stubStoreRepository {
	return &stubStoreRepository{
		revenue: monthlySeries(100, 110, 120, 130, 140, 150),
		customers: []domain.TransactionAggregate{
			aggregate("a", 5, 10, 1000),
			aggregate("b", 40, 2, 150),
		},
	}
}

func TestAnalytics_FullLevelIncludesEverySection(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	payload, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelFull)

	require.NoError(t, err)
	assert.Equal(t, "store-1", payload.StoreID)
	assert.Equal(t, 6, payload.Months)
	assert.Len(t, payload.Revenue, 6)
	assert.NotZero(t, payload.Operational.HealthScore)
	require.NotNil(t, payload.Forecast)
	assert.Greater(t, payload.Forecast.NextMonth, 0.0)
	require.NotNil(t, payload.Segmentation)
	assert.Equal(t, 2, payload.Segmentation.TotalCustomers)
}

func TestAnalytics_BasicLevelSkipsForecastAndSegmentation(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	payload, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelBasic)

	require.NoError(t, err)
	assert.Nil(t, payload.Forecast)
	assert.Nil(t, payload.Segmentation)
	assert.NotZero(t, payload.Operational.TotalTransactions)
}

func TestAnalytics_StandardLevelSkipsSegmentationOnly(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	payload, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelStandard)

	require.NoError(t, err)
	assert.NotNil(t, payload.Forecast)
	assert.Nil(t, payload.Segmentation)
}

func TestAnalytics_ServesSecondCallFromCache(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	first, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelStandard)
	require.NoError(t, err)
	second, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelStandard)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.revenueCalls)
	assert.Same(t, first, second)
}

func TestAnalytics_DistinctLevelsCacheSeparately(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	_, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelBasic)
	require.NoError(t, err)
	_, err = svc.Analytics(context.Background(), "store-1", 6, domain.LevelFull)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.revenueCalls)
}

func TestAnalytics_InvalidateForcesRecompute(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	_, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelStandard)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background(), "store-1"))
	_, err = svc.Analytics(context.Background(), "store-1", 6, domain.LevelStandard)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.revenueCalls)
}

func TestAnalytics_ClampsMonths(t *testing.T) {
	repo := newStubRepo()
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	payload, err := svc.Analytics(context.Background(), "store-1", 0, domain.LevelBasic)
	require.NoError(t, err)
	assert.Equal(t, DefaultMonths, payload.Months)

	payload, err = svc.Analytics(context.Background(), "store-1", 500, domain.LevelBasic)
	require.NoError(t, err)
	assert.Equal(t, MaxMonths, payload.Months)
}

func TestAnalytics_FetchErrorSurfaces(t *testing.T) {
	repo := newStubRepo()
	repo.fetchErr = errors.New("connection refused")
	svc := NewAnalyticsService(repo, repository.NewMemoryCache(time.Minute, 10))

	payload, err := svc.Analytics(context.Background(), "store-1", 6, domain.LevelFull)

	assert.Nil(t, payload)
	require.Error(t, err)
	assert.ErrorContains(t, err, "store-1")
}

func TestAnalytics_RequiresStoreID(t *testing.T) {
	svc := NewAnalyticsService(newStubRepo(), repository.NewMemoryCache(time.Minute, 10))

	_, err := svc.Analytics(context.Background(), "", 6, domain.LevelBasic)

	assert.Error(t, err)
}
