package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thefortthatholds/storefront/catalog"
	"github.com/thefortthatholds/storefront/datastore"
	"github.com/thefortthatholds/storefront/fulfillment"
	"github.com/thefortthatholds/storefront/notify"
	"github.com/thefortthatholds/storefront/payments"
	"github.com/thefortthatholds/storefront/webutil"
)

const testWebhookSecret = "whsec_test"

func newWebhookServer(t *testing.T, secret string) (http.HandlerFunc, datastore.EntitlementStore) {
	t.Helper()
	store := datastore.NewMemoryEntitlementStore()
	svc := fulfillment.NewService(catalog.Default(), store, notify.LogNotifier{}, payments.DefaultFeeSchedule, "https://store.example")
	handler := webutil.MakeHandler(NewPaymentWebhookHandler(svc, secret).HandlePaymentConfirmation)
	return handler, store
}

func confirmationPayload(sessionID, itemID string) string {
	return fmt.Sprintf(`{
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"amount_total": 1999,
				"customer_details": {"email": "reader@example.com"},
				"metadata": {"item_id": %q}
			}
		}
	}`, sessionID, itemID)
}

func postWebhook(handler http.HandlerFunc, payload, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func signPayload(payload, secret string) string {
	ts := time.Now().Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, payments.ComputeSignature([]byte(payload), ts, secret))
}

func TestWebhookRecordsEntitlement(t *testing.T) {
	handler, store := newWebhookServer(t, testWebhookSecret)
	payload := confirmationPayload("cs_hook_1", "workbook-001")

	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Errorf("acknowledgement body missing: %s", rec.Body.String())
	}

	ent, err := store.GetBySessionID(context.Background(), "cs_hook_1")
	if err != nil {
		t.Fatalf("entitlement not recorded: %v", err)
	}
	if ent.AmountPaid != 19.99 || ent.ItemID != "workbook-001" {
		t.Errorf("unexpected entitlement %+v", ent)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	handler, store := newWebhookServer(t, testWebhookSecret)
	payload := confirmationPayload("cs_hook_1", "workbook-001")

	t.Run("missing header", func(t *testing.T) {
		rec := postWebhook(handler, payload, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := postWebhook(handler, payload, signPayload(payload, "whsec_other"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		sig := signPayload(payload, testWebhookSecret)
		tampered := strings.Replace(payload, "1999", "1", 1)
		rec := postWebhook(handler, tampered, sig)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	if _, err := store.GetBySessionID(context.Background(), "cs_hook_1"); err == nil {
		t.Fatal("rejected webhooks must not create entitlements")
	}
}

func TestWebhookDuplicateDeliveryAcknowledged(t *testing.T) {
	handler, store := newWebhookServer(t, testWebhookSecret)
	payload := confirmationPayload("cs_hook_dup", "workbook-001")

	for i := 0; i < 2; i++ {
		rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	entitlements, err := store.ListEntitlements(context.Background())
	if err != nil {
		t.Fatalf("ListEntitlements returned error: %v", err)
	}
	if len(entitlements) != 1 {
		t.Fatalf("expected 1 entitlement after duplicate delivery, got %d", len(entitlements))
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	handler, store := newWebhookServer(t, testWebhookSecret)
	payload := `{"type":"invoice.paid","data":{"object":{"id":"in_1"}}}`

	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack for ignored event", rec.Code)
	}

	entitlements, err := store.ListEntitlements(context.Background())
	if err != nil {
		t.Fatalf("ListEntitlements returned error: %v", err)
	}
	if len(entitlements) != 0 {
		t.Fatalf("ignored event created %d entitlements", len(entitlements))
	}
}

func TestWebhookFulfillmentFailureRequestsRedelivery(t *testing.T) {
	handler, _ := newWebhookServer(t, testWebhookSecret)
	payload := confirmationPayload("cs_hook_1", "no-such-item")

	rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 so the gateway redelivers", rec.Code)
	}
}

func TestWebhookWithoutSecretSkipsVerification(t *testing.T) {
	handler, store := newWebhookServer(t, "")
	payload := confirmationPayload("cs_hook_1", "workbook-001")

	rec := postWebhook(handler, payload, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when no secret is configured", rec.Code)
	}
	if _, err := store.GetBySessionID(context.Background(), "cs_hook_1"); err != nil {
		t.Fatalf("entitlement not recorded: %v", err)
	}
}
