package datastore

import (
	"context"
	"errors"
	"time"

	"github.com/thefortthatholds/storefront/models"
)

// ErrTokenCollision reports that an insert failed because the download token is
// already held by another entitlement. Callers should mint a fresh token and
// retry.
var ErrTokenCollision = errors.New("download token already in use")

// EntitlementStore is the durable record store for purchases. Both mutations
// (create-on-confirmation, consume-on-delivery) must be single atomic steps:
// CreateEntitlement is insert-if-absent keyed on the gateway session ID, and
// ConsumeEntitlement is a compare-and-set on the consumed flag. Read-then-write
// sequences are not sufficient for either.
type EntitlementStore interface {
	// CreateEntitlement persists the entitlement unless one already exists for
	// its gateway session ID. It reports created=false (and no error) when the
	// session was already recorded, so duplicate gateway callbacks collapse to
	// a no-op. Returns ErrTokenCollision if the download token is taken.
	CreateEntitlement(ctx context.Context, ent *models.Entitlement) (created bool, err error)

	// GetBySessionID returns the entitlement recorded for a gateway session.
	GetBySessionID(ctx context.Context, sessionID string) (*models.Entitlement, error)

	// GetByToken returns the entitlement for an (item, token) pair, or
	// models.ErrInvalidToken if no such record exists.
	GetByToken(ctx context.Context, itemID, token string) (*models.Entitlement, error)

	// ConsumeEntitlement atomically marks the entitlement consumed at the given
	// time. It reports consumed=false when the record exists but was already
	// consumed, and models.ErrInvalidToken when no record matches. Exactly one
	// of any number of concurrent calls for the same token observes true.
	ConsumeEntitlement(ctx context.Context, itemID, token string, at time.Time) (consumed bool, err error)

	// ListEntitlements returns every recorded entitlement, oldest first.
	ListEntitlements(ctx context.Context) ([]models.Entitlement, error)
}
