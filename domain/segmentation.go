package domain

// Segment is a named RFM customer segment.
type Segment string

const (
	SegmentChampions          Segment = "champions"
	SegmentLoyalCustomers     Segment = "loyalCustomers"
	SegmentPotentialLoyalists Segment = "potentialLoyalists"
	SegmentNewCustomers       Segment = "newCustomers"
	SegmentPromisingCustomers Segment = "promisingCustomers"
	SegmentNeedsAttention     Segment = "needsAttention"
	SegmentAboutToSleep       Segment = "aboutToSleep"
	SegmentAtRisk             Segment = "atRisk"
	SegmentCannotLoseThem     Segment = "cannotLoseThem"
	SegmentHibernating        Segment = "hibernating"
	SegmentLost               Segment = "lost"
)

// Segments lists every segment in classification priority order.
var Segments = []Segment{
	SegmentChampions,
	SegmentLoyalCustomers,
	SegmentPotentialLoyalists,
	SegmentNewCustomers,
	SegmentPromisingCustomers,
	SegmentNeedsAttention,
	SegmentAboutToSleep,
	SegmentAtRisk,
	SegmentCannotLoseThem,
	SegmentHibernating,
	SegmentLost,
}

// RFMScore holds the three per-dimension scores, each 1, 3 or 5.
type RFMScore struct {
	Recency   int `json:"recency"`
	Frequency int `json:"frequency"`
	Monetary  int `json:"monetary"`
}

// Total returns the summed score out of 15.
func (s RFMScore) Total() int {
	return s.Recency + s.Frequency + s.Monetary
}

// CustomerProfile is the per-customer segmentation output.
type CustomerProfile struct {
	CustomerID          string   `json:"customerId"`
	Segment             Segment  `json:"segment"`
	Scores              RFMScore `json:"scores"`
	DaysSinceLastOrder  int      `json:"daysSinceLastOrder"`
	TotalSpent          float64  `json:"totalSpent"`
	LoyaltyScore        int      `json:"loyaltyScore"`
	PurchaseConsistency float64  `json:"purchaseConsistency"`
}

// ValueDistribution summarizes how spend is distributed across the cohort.
type ValueDistribution struct {
	Top10Percent    float64 `json:"top10Percent"`
	Top25Percent    float64 `json:"top25Percent"`
	Median          float64 `json:"median"`
	Bottom25Percent float64 `json:"bottom25Percent"`
	GiniCoefficient float64 `json:"giniCoefficient"`
}

// ChurnRisk buckets customers by how long ago they last purchased.
type ChurnRisk struct {
	High   int `json:"high"`   // >90 days
	Medium int `json:"medium"` // 31-90 days
	Low    int `json:"low"`    // <=30 days
}

// GrowthOpportunity points at a segment worth targeting.
type GrowthOpportunity struct {
	Segment   Segment `json:"segment"`
	Customers int     `json:"customers"`
	Action    string  `json:"action"`
}

// SegmentationResult is the full customer segmentation payload.
type SegmentationResult struct {
	TotalCustomers     int                 `json:"totalCustomers"`
	SegmentCounts      map[Segment]int     `json:"segmentCounts"`
	SegmentPercentages map[Segment]float64 `json:"segmentPercentages"`
	Customers          []CustomerProfile   `json:"customers"`
	ValueDistribution  ValueDistribution   `json:"valueDistribution"`
	ChurnRisk          ChurnRisk           `json:"churnRisk"`
	Opportunities      []GrowthOpportunity `json:"opportunities"`
	Recommendations    []string            `json:"recommendations"`
	Error              string              `json:"error,omitempty"`
}

// EmptySegmentation returns the zero-valued fallback shape, optionally
// carrying an error message.
func EmptySegmentation(errMsg string) SegmentationResult {
	counts := make(map[Segment]int, len(Segments))
	percentages := make(map[Segment]float64, len(Segments))
	for _, seg := range Segments {
		counts[seg] = 0
		percentages[seg] = 0
	}
	return SegmentationResult{
		SegmentCounts:      counts,
		SegmentPercentages: percentages,
		Customers:          []CustomerProfile{},
		Opportunities:      []GrowthOpportunity{},
		Recommendations:    []string{},
		Error:              errMsg,
	}
}
