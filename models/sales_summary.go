package models

// SalesSummary is a read-only aggregation over the entitlement store.
// EstimatedPayout applies the gateway's published fee schedule and is a
// display figure only; the gateway computes the real settled amounts.
type SalesSummary struct {
	TotalSales        int            `json:"total_sales"`
	TotalRevenue      float64        `json:"total_revenue"`
	EstimatedPayout   float64        `json:"estimated_payout"`
	PayoutPercentage  float64        `json:"payout_percentage"`
	AverageOrderValue float64        `json:"average_order_value"`
	PerItemCounts     map[string]int `json:"per_item_counts"`
}
