package payments

import "context"

// LineItem describes the single product line sent to the gateway when opening
// a checkout session. UnitAmount is in minor currency units (integer cents);
// the conversion from the catalog's major-unit price happens before a LineItem
// is built, and nowhere else.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Currency    string
}

// Session is the gateway's handle for a pending payment. The customer is
// redirected to RedirectURL to complete payment; ID later reappears in the
// confirmation event and is the idempotency key for fulfillment.
type Session struct {
	ID          string
	RedirectURL string
}

// Gateway is the consumed contract of the external payment provider. Creating
// a session has no effect on local state, so callers may safely retry it.
type Gateway interface {
	CreateSession(ctx context.Context, item LineItem, successURL, cancelURL string, metadata map[string]string) (*Session, error)
}
