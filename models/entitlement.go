package models

import "time"

// Entitlement is the durable record proving a customer paid for a catalog item
// and is owed exactly one file delivery. Records are append-only: the only
// mutation ever applied is the one-way consumed transition.
type Entitlement struct {
	ID               string     `json:"id"`
	ItemID           string     `json:"item_id"`
	CustomerEmail    string     `json:"customer_email"`
	AmountPaid       float64    `json:"amount_paid"`
	DownloadToken    string     `json:"-"` // Single-use credential, never exposed in API responses
	GatewaySessionID string     `json:"gateway_session_id"`
	CreatedAt        time.Time  `json:"created_at"`
	Consumed         bool       `json:"consumed"`
	ConsumedAt       *time.Time `json:"consumed_at,omitempty"`
}
