package routehandlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/thefortthatholds/storefront/fulfillment"
	"github.com/thefortthatholds/storefront/payments"
	"github.com/thefortthatholds/storefront/webutil"
)

const (
	signatureHeader   = "Stripe-Signature"
	maxWebhookBody    = 1 << 20 // 1 MiB
	webhookAckPayload = `{"received":true}`
)

// PaymentWebhookHandler consumes the gateway's payment confirmation callbacks.
// A 200 response tells the gateway to stop redelivering, so it is only sent
// after the entitlement is durably recorded (or found already recorded);
// transient failures return 500 to request redelivery.
type PaymentWebhookHandler struct {
	Fulfillment   *fulfillment.Service
	webhookSecret string
}

func NewPaymentWebhookHandler(fulfillmentSvc *fulfillment.Service, webhookSecret string) *PaymentWebhookHandler {
	if webhookSecret == "" {
		log.Println("WARNING: webhook secret not set; payment confirmations will not be signature-checked.")
	}
	return &PaymentWebhookHandler{
		Fulfillment:   fulfillmentSvc,
		webhookSecret: webhookSecret,
	}
}

func (h *PaymentWebhookHandler) HandlePaymentConfirmation(w http.ResponseWriter, r *http.Request) error {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return webutil.ErrBadRequestWrap("Failed to read webhook payload", err)
	}
	defer r.Body.Close()

	if h.webhookSecret != "" {
		sig := r.Header.Get(signatureHeader)
		if err := payments.VerifySignature(payload, sig, h.webhookSecret, time.Now()); err != nil {
			return webutil.ErrBadRequestWrap("Invalid webhook signature", err)
		}
	}

	event, err := payments.ParseEvent(payload)
	if err != nil {
		return webutil.ErrBadRequestWrap("Invalid webhook payload", err)
	}

	if event.Type != payments.EventTypeSessionCompleted {
		// Not a confirmation; acknowledge so the gateway stops redelivering.
		log.Printf("INFO (Webhook): ignoring event type %q", event.Type)
		respondAck(w)
		return nil
	}

	ent, err := h.Fulfillment.HandlePaymentConfirmed(r.Context(), event)
	if err != nil {
		// Returned as 500 by the adapter; the gateway will redeliver.
		return fmt.Errorf("failed to process confirmation for session %s: %w", event.SessionID, err)
	}

	log.Printf("INFO (Webhook): acknowledged confirmation for session %s (entitlement %s)", event.SessionID, ent.ID)
	respondAck(w)
	return nil
}

func respondAck(w http.ResponseWriter) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(webhookAckPayload))
}
