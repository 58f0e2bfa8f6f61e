package payments

// FeeSchedule mirrors the gateway's published processing fees. Figures derived
// from it are display estimates only; the gateway is the source of truth for
// actual settled amounts.
type FeeSchedule struct {
	Rate  float64 // proportional fee, e.g. 0.029 for 2.9%
	Fixed float64 // fixed per-transaction fee in major units
}

// DefaultFeeSchedule is the card processing fee in the reference deployment:
// 2.9% + $0.30 per transaction.
var DefaultFeeSchedule = FeeSchedule{Rate: 0.029, Fixed: 0.30}

// Fee returns the estimated processing fee for a single charge.
func (f FeeSchedule) Fee(amount float64) float64 {
	return RoundToCents(amount*f.Rate + f.Fixed)
}

// EstimatedPayout returns the amount the creator keeps after the estimated fee.
func (f FeeSchedule) EstimatedPayout(amount float64) float64 {
	return RoundToCents(amount - f.Fee(amount))
}

// EstimatedPayoutTotal estimates the payout over a batch of sales, applying
// the fixed fee once per sale.
func (f FeeSchedule) EstimatedPayoutTotal(revenue float64, sales int) float64 {
	return RoundToCents(revenue - revenue*f.Rate - f.Fixed*float64(sales))
}
