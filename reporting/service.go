package reporting

import (
	"context"
	"fmt"

	"github.com/thefortthatholds/storefront/datastore"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/payments"
)

// Service aggregates the entitlement log into a sales dashboard. It is a pure
// read view; the payout figure is an estimate from the published fee schedule.
type Service struct {
	store datastore.EntitlementStore
	fees  payments.FeeSchedule
}

func NewService(store datastore.EntitlementStore, fees payments.FeeSchedule) *Service {
	return &Service{store: store, fees: fees}
}

// SalesSummary reflects store contents at call time.
func (s *Service) SalesSummary(ctx context.Context) (*models.SalesSummary, error) {
	entitlements, err := s.store.ListEntitlements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlements for summary: %w", err)
	}

	summary := &models.SalesSummary{
		PerItemCounts: make(map[string]int),
	}
	for _, ent := range entitlements {
		summary.TotalSales++
		summary.TotalRevenue += ent.AmountPaid
		summary.PerItemCounts[ent.ItemID]++
	}
	summary.TotalRevenue = payments.RoundToCents(summary.TotalRevenue)

	if summary.TotalSales > 0 {
		summary.EstimatedPayout = s.fees.EstimatedPayoutTotal(summary.TotalRevenue, summary.TotalSales)
		summary.AverageOrderValue = payments.RoundToCents(summary.TotalRevenue / float64(summary.TotalSales))
		if summary.TotalRevenue > 0 {
			summary.PayoutPercentage = payments.RoundToCents(summary.EstimatedPayout / summary.TotalRevenue * 100)
		}
	}
	return summary, nil
}
