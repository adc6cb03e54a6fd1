package service

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"marketplace-analytics/domain"
)

// SegmentationService scores customers on Recency/Frequency/Monetary
// dimensions against cohort percentiles and classifies each into one of
// eleven segments.
type SegmentationService struct{}

// NewSegmentationService creates a segmentation service.
func NewSegmentationService() *SegmentationService {
	return &SegmentationService{}
}

// rfmThresholds holds the percentile cutoffs for the current cohort.
// Recency is inverted: a smaller days-since value is better.
type rfmThresholds struct {
	recencyHigh   float64 // 33rd percentile of days-since-last-purchase
	recencyMedium float64 // 67th percentile
	frequencyLow  float64 // 33rd percentile of transaction count
	frequencyHigh float64 // 67th percentile
	monetaryLow   float64 // 33rd percentile of total spend
	monetaryHigh  float64 // 67th percentile
}

// percentile indexes an ascending-sorted slice at ceil(p/100*n)-1,
// clamped to the first element.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func cohortThresholds(recency, frequency, monetary []float64) rfmThresholds {
	sort.Float64s(recency)
	sort.Float64s(frequency)
	sort.Float64s(monetary)
	return rfmThresholds{
		recencyHigh:   percentile(recency, LowPercentile),
		recencyMedium: percentile(recency, HighPercentile),
		frequencyLow:  percentile(frequency, LowPercentile),
		frequencyHigh: percentile(frequency, HighPercentile),
		monetaryLow:   percentile(monetary, LowPercentile),
		monetaryHigh:  percentile(monetary, HighPercentile),
	}
}

func (t rfmThresholds) score(recencyDays, frequency, monetary float64) domain.RFMScore {
	score := domain.RFMScore{Recency: 1, Frequency: 1, Monetary: 1}
	if recencyDays <= t.recencyHigh {
		score.Recency = 5
	} else if recencyDays <= t.recencyMedium {
		score.Recency = 3
	}
	if frequency >= t.frequencyHigh {
		score.Frequency = 5
	} else if frequency >= t.frequencyLow {
		score.Frequency = 3
	}
	if monetary >= t.monetaryHigh {
		score.Monetary = 5
	} else if monetary >= t.monetaryLow {
		score.Monetary = 3
	}
	return score
}

// classify assigns exactly one segment. The rule order is load-bearing:
// the first match wins, and `lost` must fire before the hibernating
// fallback.
func classify(s domain.RFMScore, daysSinceLastPurchase int) domain.Segment {
	r, f, m := s.Recency, s.Frequency, s.Monetary
	switch {
	case s.Total() >= 13 && r >= 4 && f >= 4 && m >= 4:
		return domain.SegmentChampions
	case f >= 4 && m >= 4 && r >= 2:
		return domain.SegmentLoyalCustomers
	case r >= 4 && m >= 4:
		return domain.SegmentPotentialLoyalists
	case r >= 4 && f <= 2 && m <= 3:
		return domain.SegmentNewCustomers
	case r >= 3 && f >= 3 && m >= 3:
		return domain.SegmentPromisingCustomers
	case f >= 4 && m >= 4 && r <= 2:
		return domain.SegmentNeedsAttention
	case r >= 2 && f >= 2 && m >= 2:
		return domain.SegmentAboutToSleep
	case r <= 2 && f >= 3 && m >= 3:
		return domain.SegmentAtRisk
	case m >= 4 && r <= 2:
		return domain.SegmentCannotLoseThem
	case daysSinceLastPurchase > LostAfterDays:
		return domain.SegmentLost
	default:
		return domain.SegmentHibernating
	}
}

var opportunityActions = map[domain.Segment]string{
	domain.SegmentNewCustomers:       "Convert first-time buyers with a follow-up offer",
	domain.SegmentAtRisk:             "Win back lapsing high-value customers before they churn",
	domain.SegmentPotentialLoyalists: "Nudge recent big spenders toward a repeat purchase",
}

var segmentRecommendations = map[domain.Segment]string{
	domain.SegmentChampions:    "Reward your champions with early access and loyalty perks",
	domain.SegmentAtRisk:       "Send a personalized win-back campaign to at-risk customers",
	domain.SegmentNewCustomers: "Welcome new customers with an onboarding discount",
	domain.SegmentHibernating:  "Re-engage hibernating customers with a reactivation offer",
}

// Segment computes the full segmentation for one store's cohort at the
// given instant. Any panic during computation is converted into the
// zero-valued fallback with its Error field set; callers always receive
// a fully-shaped result.
func (s *SegmentationService) Segment(aggregates []domain.TransactionAggregate, now time.Time) (result domain.SegmentationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("segmentation failed: %v", r)
			result = domain.EmptySegmentation(fmt.Sprintf("segmentation failed: %v", r))
		}
	}()

	total := len(aggregates)
	if total == 0 {
		return domain.EmptySegmentation("")
	}

	recency := make([]float64, total)
	frequency := make([]float64, total)
	monetary := make([]float64, total)
	daysSince := make([]int, total)
	for i, agg := range aggregates {
		days := int(now.Sub(agg.LastPurchase).Hours() / 24)
		daysSince[i] = days
		recency[i] = float64(days)
		frequency[i] = float64(agg.TransactionCount)
		monetary[i] = agg.TotalSpent
	}
	thresholds := cohortThresholds(
		append([]float64(nil), recency...),
		append([]float64(nil), frequency...),
		append([]float64(nil), monetary...),
	)

	result = domain.EmptySegmentation("")
	result.TotalCustomers = total
	result.Customers = make([]domain.CustomerProfile, 0, total)

	for i, agg := range aggregates {
		score := thresholds.score(recency[i], frequency[i], monetary[i])
		segment := classify(score, daysSince[i])
		result.SegmentCounts[segment]++

		consistencyDen := math.Max(1, float64(agg.LifespanDays)/30)
		result.Customers = append(result.Customers, domain.CustomerProfile{
			CustomerID:          agg.CustomerID,
			Segment:             segment,
			Scores:              score,
			DaysSinceLastOrder:  daysSince[i],
			TotalSpent:          agg.TotalSpent,
			LoyaltyScore:        int(math.Round(float64(score.Total()) / 15 * 100)),
			PurchaseConsistency: roundTo2Decimals(float64(agg.UniquePurchaseDays) / consistencyDen),
		})

		switch {
		case daysSince[i] > ChurnHighAfterDays:
			result.ChurnRisk.High++
		case daysSince[i] >= ChurnMediumDays:
			result.ChurnRisk.Medium++
		default:
			result.ChurnRisk.Low++
		}
	}

	for _, segment := range domain.Segments {
		result.SegmentPercentages[segment] = roundTo2Decimals(float64(result.SegmentCounts[segment]) / float64(total) * 100)
	}

	result.ValueDistribution = valueDistribution(monetary)

	for _, segment := range []domain.Segment{domain.SegmentNewCustomers, domain.SegmentAtRisk, domain.SegmentPotentialLoyalists} {
		if result.SegmentCounts[segment] > 0 {
			result.Opportunities = append(result.Opportunities, domain.GrowthOpportunity{
				Segment:   segment,
				Customers: result.SegmentCounts[segment],
				Action:    opportunityActions[segment],
			})
		}
	}

	for _, segment := range []domain.Segment{domain.SegmentChampions, domain.SegmentAtRisk, domain.SegmentNewCustomers, domain.SegmentHibernating} {
		if len(result.Recommendations) >= MaxRecommendations {
			break
		}
		if result.SegmentCounts[segment] > 0 {
			result.Recommendations = append(result.Recommendations, segmentRecommendations[segment])
		}
	}

	return result
}

// valueDistribution summarizes the spend distribution, including the
// Gini coefficient over ascending-sorted spends:
// gini = sum((2(i+1)-n-1) * x_i) / (n * sum(x)).
func valueDistribution(spends []float64) domain.ValueDistribution {
	n := len(spends)
	if n == 0 {
		return domain.ValueDistribution{}
	}

	asc := append([]float64(nil), spends...)
	sort.Float64s(asc)

	totalSpend := 0.0
	weighted := 0.0
	for i, x := range asc {
		totalSpend += x
		weighted += float64(2*(i+1)-n-1) * x
	}
	gini := 0.0
	if totalSpend > 0 {
		gini = weighted / (float64(n) * totalSpend)
	}

	median := asc[n/2]
	if n%2 == 0 {
		median = (asc[n/2-1] + asc[n/2]) / 2
	}

	sumTop := func(count int) float64 {
		sum := 0.0
		for i := n - count; i < n; i++ {
			sum += asc[i]
		}
		return sum
	}
	sumBottom := func(count int) float64 {
		sum := 0.0
		for i := 0; i < count; i++ {
			sum += asc[i]
		}
		return sum
	}
	top10 := int(math.Ceil(float64(n) * 0.10))
	quarter := int(math.Ceil(float64(n) * 0.25))

	return domain.ValueDistribution{
		Top10Percent:    roundTo2Decimals(sumTop(top10)),
		Top25Percent:    roundTo2Decimals(sumTop(quarter)),
		Median:          roundTo2Decimals(median),
		Bottom25Percent: roundTo2Decimals(sumBottom(quarter)),
		GiniCoefficient: roundTo2Decimals(gini),
	}
}
