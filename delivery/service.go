package delivery

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/thefortthatholds/storefront/catalog"
	"github.com/thefortthatholds/storefront/datastore"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/storage"
)

// DefaultTokenValidity matches the validity promised in the purchase email.
const DefaultTokenValidity = 7 * 24 * time.Hour

const epubContentType = "application/epub+zip"

// Download is a ready-to-stream deliverable. Content is already open; the
// caller owns closing it.
type Download struct {
	Content     io.ReadCloser
	Size        int64
	FileName    string
	ContentType string
}

// Service validates presented download tokens and serves the purchased file,
// enforcing single use and expiry.
type Service struct {
	catalog  *catalog.Catalog
	store    datastore.EntitlementStore
	files    storage.FileStore
	validity time.Duration

	// now is stubbed in tests.
	now func() time.Time
}

func NewService(cat *catalog.Catalog, store datastore.EntitlementStore, files storage.FileStore, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return &Service{
		catalog:  cat,
		store:    store,
		files:    files,
		validity: validity,
		now:      time.Now,
	}
}

// ResolveDownload checks the presented token and, on success, consumes it and
// returns the opened file. The ordering matters for two reasons:
//
//  1. The file is opened before the consume step, so a missing asset
//     (models.ErrFileUnavailable) never burns the token; the customer paid and
//     can retry once the asset is restored.
//  2. The consume step is a single atomic compare-and-set in the store, so of
//     any number of concurrent presentations of the same token exactly one
//     receives the file and the rest fail models.ErrAlreadyConsumed.
func (s *Service) ResolveDownload(ctx context.Context, itemID, token string) (*Download, error) {
	ent, err := s.store.GetByToken(ctx, itemID, token)
	if err != nil {
		return nil, err
	}

	if ent.Consumed {
		return nil, fmt.Errorf("token for item %s: %w", itemID, models.ErrAlreadyConsumed)
	}
	if s.now().Sub(ent.CreatedAt) >= s.validity {
		return nil, fmt.Errorf("token for item %s issued %s: %w",
			itemID, ent.CreatedAt.Format(time.RFC3339), models.ErrTokenExpired)
	}

	item, err := s.catalog.Lookup(itemID)
	if err != nil {
		return nil, err
	}

	content, size, err := s.files.Open(item.FileRef)
	if err != nil {
		log.Printf("ERROR (Delivery): asset %s missing for paid entitlement %s: %v", item.FileRef, ent.ID, err)
		return nil, err
	}

	consumed, err := s.store.ConsumeEntitlement(ctx, itemID, token, s.now().UTC())
	if err != nil {
		content.Close()
		return nil, fmt.Errorf("failed to consume token for item %s: %w", itemID, err)
	}
	if !consumed {
		// Lost the race against a concurrent presentation of the same token.
		content.Close()
		return nil, fmt.Errorf("token for item %s: %w", itemID, models.ErrAlreadyConsumed)
	}

	log.Printf("INFO (Delivery): serving %s for entitlement %s", item.FileRef, ent.ID)
	return &Download{
		Content:     content,
		Size:        size,
		FileName:    item.FileRef,
		ContentType: epubContentType,
	}, nil
}
