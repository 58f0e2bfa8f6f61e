package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventTypeSessionCompleted is the confirmation event the fulfillment flow
// consumes. Other event types are acknowledged and ignored.
const EventTypeSessionCompleted = "checkout.session.completed"

// signatureTolerance bounds how stale a signed webhook timestamp may be,
// limiting replay of captured payloads.
const signatureTolerance = 5 * time.Minute

// ConfirmationEvent is the flattened payment confirmation delivered by the
// gateway webhook. AmountTotal is in minor currency units. Delivery is
// at-least-once; consumers must deduplicate on SessionID.
type ConfirmationEvent struct {
	Type          string
	SessionID     string
	ItemID        string
	CustomerEmail string
	AmountTotal   int64
}

// ParseEvent decodes a raw webhook payload into a ConfirmationEvent.
func ParseEvent(payload []byte) (*ConfirmationEvent, error) {
	var raw struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID              string `json:"id"`
				AmountTotal     int64  `json:"amount_total"`
				CustomerDetails struct {
					Email string `json:"email"`
				} `json:"customer_details"`
				Metadata map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("webhook payload missing event type")
	}

	return &ConfirmationEvent{
		Type:          raw.Type,
		SessionID:     raw.Data.Object.ID,
		ItemID:        raw.Data.Object.Metadata["item_id"],
		CustomerEmail: raw.Data.Object.CustomerDetails.Email,
		AmountTotal:   raw.Data.Object.AmountTotal,
	}, nil
}

// VerifySignature checks the gateway's signature header against the shared
// webhook secret. The header carries a unix timestamp and one or more
// HMAC-SHA256 digests of "<timestamp>.<payload>":
//
//	t=1712345678,v1=5257a869e7...
//
// Timestamps outside the tolerance window are rejected even when the digest
// matches.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return fmt.Errorf("missing webhook signature header")
	}

	var timestamp int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed webhook signature timestamp: %w", err)
			}
			timestamp = parsed
		case "v1":
			candidates = append(candidates, value)
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return fmt.Errorf("malformed webhook signature header")
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("webhook signature timestamp outside tolerance")
	}

	expected := ComputeSignature(payload, timestamp, secret)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("webhook signature mismatch")
}

// ComputeSignature produces the hex HMAC-SHA256 digest the gateway signs
// payloads with. Exported for tests and local webhook replay tooling.
func ComputeSignature(payload []byte, timestamp int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
