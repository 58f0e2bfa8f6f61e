package payments

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(payload []byte, at time.Time, secret string) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(payload, ts, secret))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	now := time.Now()

	t.Run("valid signature passes", func(t *testing.T) {
		header := signedHeader(payload, now, testWebhookSecret)
		if err := VerifySignature(payload, header, testWebhookSecret, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		header := signedHeader(payload, now, testWebhookSecret)
		tampered := []byte(`{"type":"checkout.session.completed","extra":1}`)
		if err := VerifySignature(tampered, header, testWebhookSecret, now); err == nil {
			t.Fatal("expected signature mismatch, got nil")
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		header := signedHeader(payload, now, "whsec_other")
		if err := VerifySignature(payload, header, testWebhookSecret, now); err == nil {
			t.Fatal("expected signature mismatch, got nil")
		}
	})

	t.Run("stale timestamp fails even with valid digest", func(t *testing.T) {
		header := signedHeader(payload, now.Add(-10*time.Minute), testWebhookSecret)
		if err := VerifySignature(payload, header, testWebhookSecret, now); err == nil {
			t.Fatal("expected stale timestamp rejection, got nil")
		}
	})

	t.Run("missing header fails", func(t *testing.T) {
		if err := VerifySignature(payload, "", testWebhookSecret, now); err == nil {
			t.Fatal("expected error for missing header, got nil")
		}
	})

	t.Run("malformed header fails", func(t *testing.T) {
		for _, header := range []string{"t=notanumber,v1=abc", "v1=abc", "t=123", "garbage"} {
			if err := VerifySignature(payload, header, testWebhookSecret, now); err == nil {
				t.Errorf("expected error for header %q, got nil", header)
			}
		}
	})

	t.Run("extra v1 candidates are tried", func(t *testing.T) {
		ts := now.Unix()
		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", ts, ComputeSignature(payload, ts, testWebhookSecret))
		if err := VerifySignature(payload, header, testWebhookSecret, now); err != nil {
			t.Fatalf("expected one matching candidate to pass, got %v", err)
		}
	})
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"amount_total": 1999,
				"customer_details": {"email": "reader@example.com"},
				"metadata": {"item_id": "workbook-001", "request_key": "abc"}
			}
		}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if event.Type != EventTypeSessionCompleted {
		t.Errorf("unexpected type %q", event.Type)
	}
	if event.SessionID != "cs_test_123" {
		t.Errorf("unexpected session ID %q", event.SessionID)
	}
	if event.ItemID != "workbook-001" {
		t.Errorf("unexpected item ID %q", event.ItemID)
	}
	if event.CustomerEmail != "reader@example.com" {
		t.Errorf("unexpected email %q", event.CustomerEmail)
	}
	if event.AmountTotal != 1999 {
		t.Errorf("unexpected amount %d", event.AmountTotal)
	}
}

func TestParseEventRejectsBadPayloads(t *testing.T) {
	for _, payload := range []string{"", "not json", `{"data":{}}`} {
		if _, err := ParseEvent([]byte(payload)); err == nil {
			t.Errorf("expected error for payload %q, got nil", payload)
		}
	}
}

func TestParseEventIgnoresUnknownFields(t *testing.T) {
	payload := `{"type":"charge.refunded","data":{"object":{"id":"ch_1"}},"livemode":false}`
	event, err := ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if event.Type == EventTypeSessionCompleted {
		t.Error("refund event misparsed as session completion")
	}
	if !strings.HasPrefix(event.SessionID, "ch_") {
		t.Errorf("unexpected session ID %q", event.SessionID)
	}
}
