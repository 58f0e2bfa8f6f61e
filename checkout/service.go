package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/thefortthatholds/storefront/catalog"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/payments"
)

const checkoutCurrency = "usd"

// Service validates purchase intents against the catalog and opens payment
// sessions with the gateway. It persists nothing, so every call is safe for
// the caller to retry.
type Service struct {
	catalog *catalog.Catalog
	gateway payments.Gateway
	fees    payments.FeeSchedule
	baseURL string
}

func NewService(cat *catalog.Catalog, gateway payments.Gateway, fees payments.FeeSchedule, baseURL string) *Service {
	return &Service{
		catalog: cat,
		gateway: gateway,
		fees:    fees,
		baseURL: baseURL,
	}
}

// SessionResult is returned to the storefront client. ExpectedPayout is an
// estimate from the published fee schedule, not a settled amount.
type SessionResult struct {
	SessionID      string  `json:"session_id"`
	RedirectURL    string  `json:"redirect_url"`
	ExpectedPayout float64 `json:"expected_payout"`
}

// CreateSession validates the quoted price against the catalog and delegates
// session creation to the gateway. The catalog price is always authoritative;
// a quote that disagrees with it fails models.ErrPriceMismatch so tampered
// client requests can never buy at the wrong price.
func (s *Service) CreateSession(ctx context.Context, itemID string, quotedPrice float64, customerEmail string) (*SessionResult, error) {
	item, err := s.catalog.Lookup(itemID)
	if err != nil {
		return nil, err
	}
	if quotedPrice != item.Price {
		return nil, fmt.Errorf("item %s quoted at %.2f, listed at %.2f: %w",
			itemID, quotedPrice, item.Price, models.ErrPriceMismatch)
	}

	lineItem := payments.LineItem{
		Name:        fmt.Sprintf("%s - %s", item.Title, item.Subtitle),
		Description: fmt.Sprintf("%d pages • DRM-free EPUB download", item.PageCount),
		UnitAmount:  payments.ToMinorUnits(item.Price),
		Currency:    checkoutCurrency,
	}

	metadata := map[string]string{
		"item_id":     item.ID,
		"request_key": uuid.NewString(),
	}
	if customerEmail != "" {
		metadata["customer_email"] = customerEmail
	}

	successURL := s.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}&item_id=" + item.ID
	cancelURL := s.baseURL + "/store"

	session, err := s.gateway.CreateSession(ctx, lineItem, successURL, cancelURL, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session for %s: %w", itemID, err)
	}

	expectedPayout := s.fees.EstimatedPayout(item.Price)
	log.Printf("INFO (Checkout): opened session %s for %s at $%.2f (est. payout $%.2f)",
		session.ID, item.ID, item.Price, expectedPayout)

	return &SessionResult{
		SessionID:      session.ID,
		RedirectURL:    session.RedirectURL,
		ExpectedPayout: expectedPayout,
	}, nil
}
