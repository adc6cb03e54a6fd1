package domain

// OperationalMetrics aggregates fulfillment and engagement health for a
// store over the requested window.
type OperationalMetrics struct {
	TotalTransactions  int     `json:"totalTransactions"`
	FulfillmentRate    float64 `json:"fulfillmentRate"`
	CancellationRate   float64 `json:"cancellationRate"`
	RepeatPurchaseRate float64 `json:"repeatPurchaseRate"`
	ConversionRate     float64 `json:"conversionRate"`
	AvgProcessingHours float64 `json:"avgProcessingHours"`
	SatisfactionScore  float64 `json:"satisfactionScore"`
	HealthScore        int     `json:"healthScore"`
	Error              string  `json:"error,omitempty"`
}

// EmptyOperationalMetrics returns the all-zero fallback shape.
func EmptyOperationalMetrics(errMsg string) OperationalMetrics {
	return OperationalMetrics{Error: errMsg}
}
