package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/thefortthatholds/storefront/catalog"
	"github.com/thefortthatholds/storefront/datastore"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/notify"
	"github.com/thefortthatholds/storefront/payments"
	"github.com/thefortthatholds/storefront/retry"
)

const (
	// tokenValidity is how long a freshly issued download link stays usable.
	tokenValidity = 7 * 24 * time.Hour

	// maxTokenAttempts bounds retries when a minted token collides with an
	// existing record. With 256-bit tokens a single collision is already
	// astronomically unlikely.
	maxTokenAttempts = 5

	notifySendTimeout = 2 * time.Minute
)

var notifyRetryConfig = retry.Config{
	MaxAttempts:    4,
	InitialBackoff: 2 * time.Second,
	MaxBackoff:     30 * time.Second,
	JitterFactor:   0.2,
}

// Service turns gateway payment confirmations into entitlements. Confirmation
// delivery is at-least-once, so processing is idempotent on the gateway
// session ID: redelivered events return the already-recorded entitlement
// without side effects.
type Service struct {
	catalog  *catalog.Catalog
	store    datastore.EntitlementStore
	notifier notify.Notifier
	fees     payments.FeeSchedule
	baseURL  string

	// now is stubbed in tests.
	now func() time.Time
}

func NewService(cat *catalog.Catalog, store datastore.EntitlementStore, notifier notify.Notifier, fees payments.FeeSchedule, baseURL string) *Service {
	return &Service{
		catalog:  cat,
		store:    store,
		notifier: notifier,
		fees:     fees,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// HandlePaymentConfirmed records the purchase and issues a download token.
// The entitlement is durably persisted before this returns, so the webhook
// layer can acknowledge the gateway; the customer notification is sent
// afterwards in the background and never affects the outcome.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, event *payments.ConfirmationEvent) (*models.Entitlement, error) {
	if event.SessionID == "" {
		return nil, fmt.Errorf("confirmation event missing session ID")
	}
	if event.ItemID == "" {
		return nil, fmt.Errorf("confirmation event %s missing item ID", event.SessionID)
	}

	item, err := s.catalog.Lookup(event.ItemID)
	if err != nil {
		return nil, fmt.Errorf("confirmation event %s: %w", event.SessionID, err)
	}

	amountPaid := payments.FromMinorUnits(event.AmountTotal)

	var ent *models.Entitlement
	for attempt := 1; ; attempt++ {
		candidate := &models.Entitlement{
			ID:               uuid.NewString(),
			ItemID:           event.ItemID,
			CustomerEmail:    event.CustomerEmail,
			AmountPaid:       amountPaid,
			DownloadToken:    mintToken(),
			GatewaySessionID: event.SessionID,
			CreatedAt:        s.now().UTC(),
			Consumed:         false,
		}

		created, err := s.store.CreateEntitlement(ctx, candidate)
		if errors.Is(err, datastore.ErrTokenCollision) {
			if attempt >= maxTokenAttempts {
				return nil, fmt.Errorf("gave up minting a unique download token after %d attempts: %w", attempt, err)
			}
			log.Printf("WARN (Fulfillment): download token collision on attempt %d for session %s, reminting", attempt, event.SessionID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to record entitlement for session %s: %w", event.SessionID, err)
		}

		if !created {
			// Redelivered confirmation; return the original record unchanged.
			existing, err := s.store.GetBySessionID(ctx, event.SessionID)
			if err != nil {
				return nil, fmt.Errorf("failed to load entitlement for duplicate session %s: %w", event.SessionID, err)
			}
			log.Printf("INFO (Fulfillment): duplicate confirmation for session %s, already recorded as %s", event.SessionID, existing.ID)
			return existing, nil
		}

		ent = candidate
		break
	}

	estimatedPayout := s.fees.EstimatedPayout(amountPaid)
	log.Printf("INFO (Fulfillment): sale complete: %s for $%.2f (est. fee $%.2f, est. payout $%.2f)",
		ent.ItemID, amountPaid, s.fees.Fee(amountPaid), estimatedPayout)

	// The notification happens outside the persistence step: a send failure is
	// retried out of band and must never roll back the entitlement.
	downloadLink := fmt.Sprintf("%s/download/%s/%s", s.baseURL, ent.ItemID, ent.DownloadToken)
	go s.sendNotification(ent.CustomerEmail, item.Title, downloadLink)

	return ent, nil
}

// TokenValidity reports how long issued download links stay valid.
func (s *Service) TokenValidity() time.Duration {
	return tokenValidity
}

func (s *Service) sendNotification(recipientEmail, itemTitle, downloadLink string) {
	if recipientEmail == "" {
		log.Printf("WARN (Fulfillment): no customer email on confirmation, skipping notification for %q", itemTitle)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifySendTimeout)
	defer cancel()

	err := retry.Do(ctx, notifyRetryConfig, func() error {
		return s.notifier.SendDownloadLink(ctx, recipientEmail, itemTitle, downloadLink, tokenValidity)
	})
	if err != nil {
		log.Printf("ERROR (Fulfillment): failed to send download link to %s: %v", recipientEmail, err)
		return
	}
	log.Printf("INFO (Fulfillment): download link sent to %s for %q", recipientEmail, itemTitle)
}
