package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-analytics/domain"
)

func aggregate(id string, daysSinceLast, txCount int, totalSpent float64) domain.TransactionAggregate {
	now := time.Now().UTC()
	last := now.AddDate(0, 0, -daysSinceLast)
	return domain.TransactionAggregate{
		CustomerID:         id,
		TotalSpent:         totalSpent,
		TransactionCount:   txCount,
		AvgTransaction:     totalSpent / float64(txCount),
		FirstPurchase:      last.AddDate(0, 0, -90),
		LastPurchase:       last,
		UniquePurchaseDays: txCount,
		LifespanDays:       90,
	}
}

// sevenCustomerCohort is built so the 33rd/67th percentile thresholds
// land on known values: recency 10/20 days, frequency 5/7, monetary
// 500/700.
func sevenCustomerCohort() []domain.TransactionAggregate {
	return []domain.TransactionAggregate{
		aggregate("champ", 5, 10, 1000),
		aggregate("lost", 200, 1, 40),
		aggregate("hibernating", 170, 1, 45),
		aggregate("promising-a", 8, 5, 500),
		aggregate("potential", 10, 6, 800),
		aggregate("loyal", 15, 7, 700),
		aggregate("promising-b", 20, 8, 600),
	}
}

func TestSegment_ClassifiesCohort(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(sevenCustomerCohort(), time.Now().UTC())

	assert.Empty(t, result.Error)
	assert.Equal(t, 7, result.TotalCustomers)
	assert.Equal(t, 1, result.SegmentCounts[domain.SegmentChampions])
	assert.Equal(t, 1, result.SegmentCounts[domain.SegmentLoyalCustomers])
	assert.Equal(t, 1, result.SegmentCounts[domain.SegmentPotentialLoyalists])
	assert.Equal(t, 2, result.SegmentCounts[domain.SegmentPromisingCustomers])
	assert.Equal(t, 1, result.SegmentCounts[domain.SegmentHibernating])
	assert.Equal(t, 1, result.SegmentCounts[domain.SegmentLost])

	bySegment := map[string]domain.Segment{}
	for _, c := range result.Customers {
		bySegment[c.CustomerID] = c.Segment
	}
	assert.Equal(t, domain.SegmentChampions, bySegment["champ"])
	assert.Equal(t, domain.SegmentLost, bySegment["lost"], "inactive beyond the lost cutoff")
	assert.Equal(t, domain.SegmentHibernating, bySegment["hibernating"], "inactive but inside the lost cutoff")
	assert.Equal(t, domain.SegmentLoyalCustomers, bySegment["loyal"])
}

func TestSegment_ScoresAndLoyalty(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(sevenCustomerCohort(), time.Now().UTC())

	var champ, lost domain.CustomerProfile
	for _, c := range result.Customers {
		switch c.CustomerID {
		case "champ":
			champ = c
		case "lost":
			lost = c
		}
	}
	assert.Equal(t, domain.RFMScore{Recency: 5, Frequency: 5, Monetary: 5}, champ.Scores)
	assert.Equal(t, 100, champ.LoyaltyScore)
	assert.Equal(t, domain.RFMScore{Recency: 1, Frequency: 1, Monetary: 1}, lost.Scores)
	assert.Equal(t, 20, lost.LoyaltyScore)
}

func TestSegment_ChurnRiskBuckets(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(sevenCustomerCohort(), time.Now().UTC())

	assert.Equal(t, 2, result.ChurnRisk.High, "170 and 200 days inactive")
	assert.Equal(t, 0, result.ChurnRisk.Medium)
	assert.Equal(t, 5, result.ChurnRisk.Low)
}

func TestSegment_OpportunitiesAndRecommendations(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(sevenCustomerCohort(), time.Now().UTC())

	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, domain.SegmentPotentialLoyalists, result.Opportunities[0].Segment)
	assert.Equal(t, 1, result.Opportunities[0].Customers)
	assert.NotEmpty(t, result.Opportunities[0].Action)

	// Champions and hibernating are present, at-risk and new are not.
	require.Len(t, result.Recommendations, 2)
	assert.LessOrEqual(t, len(result.Recommendations), MaxRecommendations)
}

func TestSegment_PercentagesCoverEverySegment(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(sevenCustomerCohort(), time.Now().UTC())

	require.Len(t, result.SegmentPercentages, len(domain.Segments))
	sum := 0.0
	for _, pct := range result.SegmentPercentages {
		sum += pct
	}
	assert.InDelta(t, 100, sum, 0.1)
}

func TestSegment_EmptyCohort(t *testing.T) {
	svc := NewSegmentationService()

	result := svc.Segment(nil, time.Now().UTC())

	assert.Equal(t, 0, result.TotalCustomers)
	assert.Empty(t, result.Error)
	require.Len(t, result.SegmentCounts, len(domain.Segments), "every segment reports a zero count")
	for _, segment := range domain.Segments {
		assert.Equal(t, 0, result.SegmentCounts[segment])
	}
}

func TestSegment_Deterministic(t *testing.T) {
	svc := NewSegmentationService()
	cohort := sevenCustomerCohort()
	now := time.Now().UTC()

	assert.Equal(t, svc.Segment(cohort, now), svc.Segment(cohort, now))
}

func TestValueDistribution_EqualSpends(t *testing.T) {
	dist := valueDistribution([]float64{100, 100, 100})

	assert.Equal(t, 0.0, dist.GiniCoefficient, "equal spends mean perfect equality")
	assert.Equal(t, 100.0, dist.Median)
	assert.Equal(t, 100.0, dist.Top10Percent)
	assert.Equal(t, 100.0, dist.Bottom25Percent)
}

func TestValueDistribution_ConcentratedSpend(t *testing.T) {
	dist := valueDistribution([]float64{10, 10, 10, 970})

	assert.Greater(t, dist.GiniCoefficient, 0.5, "one customer carries nearly all revenue")
	assert.Equal(t, 10.0, dist.Median)
	assert.Equal(t, 970.0, dist.Top10Percent)
	assert.Equal(t, 10.0, dist.Bottom25Percent)
}
