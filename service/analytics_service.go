package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"marketplace-analytics/domain"
	"marketplace-analytics/repository"
)

const (
	DefaultMonths = 12
	MaxMonths     = 60
)

// AnalyticsService is the public entry point: a read-through cache in
// front of the forecasting, segmentation and metrics engines.
type AnalyticsService struct {
	repo         repository.StoreRepository
	cache        repository.CacheRepository
	forecast     *ForecastService
	segmentation *SegmentationService
	metrics      *MetricsService
	now          func() time.Time
}

// NewAnalyticsService wires the facade with its repository and cache.
func NewAnalyticsService(repo repository.StoreRepository, cache repository.CacheRepository) *AnalyticsService {
	return &AnalyticsService{
		repo:         repo,
		cache:        cache,
		forecast:     NewForecastService(),
		segmentation: NewSegmentationService(),
		metrics:      NewMetricsService(),
		now:          time.Now,
	}
}

// storeInputs is everything the synchronous computation needs, fetched
// up front.
type storeInputs struct {
	customers   []domain.TransactionAggregate
	revenue     []domain.RevenuePoint
	statuses    domain.StatusCounts
	impressions domain.ImpressionStats
	reviews     domain.ReviewStats
	processing  domain.ProcessingStats
}

// fetchInputs issues the independent aggregate queries concurrently and
// joins before returning.
func (s *AnalyticsService) fetchInputs(ctx context.Context, storeID string, months int) (*storeInputs, error) {
	dr := domain.LastMonths(s.now(), months)
	inputs := &storeInputs{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inputs.customers, err = s.repo.CustomerAggregates(ctx, storeID, dr)
		return err
	})
	g.Go(func() error {
		var err error
		inputs.revenue, err = s.repo.MonthlyRevenue(ctx, storeID, months)
		return err
	})
	g.Go(func() error {
		var err error
		inputs.statuses, err = s.repo.StatusCounts(ctx, storeID, dr)
		return err
	})
	g.Go(func() error {
		var err error
		inputs.impressions, err = s.repo.ImpressionStats(ctx, storeID, dr)
		return err
	})
	g.Go(func() error {
		var err error
		inputs.reviews, err = s.repo.ReviewStats(ctx, storeID, dr)
		return err
	})
	g.Go(func() error {
		var err error
		inputs.processing, err = s.repo.ProcessingStats(ctx, storeID, dr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch aggregates for store %s: %w", storeID, err)
	}
	return inputs, nil
}

// Analytics returns the analytics payload for a store, window and tier,
// serving from cache when a fresh entry exists. Computation failures in
// a section degrade that section to its fallback shape; only upstream
// fetch failures surface as errors.
func (s *AnalyticsService) Analytics(ctx context.Context, storeID string, months int, level domain.Level) (*domain.AnalyticsPayload, error) {
	if storeID == "" {
		return nil, errors.New("store id required")
	}
	if months <= 0 {
		months = DefaultMonths
	}
	if months > MaxMonths {
		months = MaxMonths
	}

	if payload, ok := s.cache.Get(ctx, storeID, months, level); ok {
		return payload, nil
	}

	inputs, err := s.fetchInputs(ctx, storeID, months)
	if err != nil {
		return nil, err
	}

	payload := &domain.AnalyticsPayload{
		StoreID:     storeID,
		Months:      months,
		Level:       level,
		Revenue:     inputs.revenue,
		GeneratedAt: s.now(),
	}

	payload.Operational = s.metrics.Compute(OperationalInput{
		Statuses:    inputs.statuses,
		Customers:   inputs.customers,
		Impressions: inputs.impressions,
		Reviews:     inputs.reviews,
		Processing:  inputs.processing,
	})

	if level != domain.LevelBasic {
		forecast := s.forecast.Forecast(inputs.revenue)
		payload.Forecast = &forecast
	}
	if level == domain.LevelFull {
		segmentation := s.segmentation.Segment(inputs.customers, s.now())
		payload.Segmentation = &segmentation
	}

	if err := s.cache.Set(ctx, storeID, months, level, payload); err != nil {
		log.Printf("Warning: failed to cache analytics for store %s: %v", storeID, err)
	}
	return payload, nil
}

// Invalidate drops cached payloads for one store, or for every store
// when storeID is empty.
func (s *AnalyticsService) Invalidate(ctx context.Context, storeID string) error {
	return s.cache.Clear(ctx, storeID)
}
