package datastore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thefortthatholds/storefront/models"
)

func newEntitlement(sessionID, token string) *models.Entitlement {
	return &models.Entitlement{
		ID:               uuid.NewString(),
		ItemID:           "workbook-001",
		CustomerEmail:    "reader@example.com",
		AmountPaid:       19.99,
		DownloadToken:    token,
		GatewaySessionID: sessionID,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestMemoryStoreCreateIsInsertIfAbsent(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	created, err := store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_a"))
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	// Same session, different token: must collapse into the first record.
	created, err = store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_b"))
	if err != nil {
		t.Fatalf("duplicate insert returned error: %v", err)
	}
	if created {
		t.Fatal("duplicate session insert reported created=true")
	}

	ent, err := store.GetBySessionID(ctx, "cs_1")
	if err != nil {
		t.Fatalf("GetBySessionID returned error: %v", err)
	}
	if ent.DownloadToken != "tok_a" {
		t.Errorf("duplicate insert replaced the original record: token %q", ent.DownloadToken)
	}
}

func TestMemoryStoreTokenCollision(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	if _, err := store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_a")); err != nil {
		t.Fatalf("first insert returned error: %v", err)
	}
	_, err := store.CreateEntitlement(ctx, newEntitlement("cs_2", "tok_a"))
	if !errors.Is(err, ErrTokenCollision) {
		t.Fatalf("expected ErrTokenCollision, got %v", err)
	}
}

func TestMemoryStoreGetByToken(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	if _, err := store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_a")); err != nil {
		t.Fatalf("insert returned error: %v", err)
	}

	if _, err := store.GetByToken(ctx, "workbook-001", "tok_a"); err != nil {
		t.Errorf("GetByToken returned error: %v", err)
	}
	if _, err := store.GetByToken(ctx, "workbook-001", "tok_forged"); !errors.Is(err, models.ErrInvalidToken) {
		t.Errorf("forged token: expected ErrInvalidToken, got %v", err)
	}
	// Valid token presented against the wrong item must not match.
	if _, err := store.GetByToken(ctx, "workbook-002", "tok_a"); !errors.Is(err, models.ErrInvalidToken) {
		t.Errorf("wrong item: expected ErrInvalidToken, got %v", err)
	}
}

func TestMemoryStoreConsumeIsCompareAndSet(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	if _, err := store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_a")); err != nil {
		t.Fatalf("insert returned error: %v", err)
	}

	at := time.Now().UTC()
	consumed, err := store.ConsumeEntitlement(ctx, "workbook-001", "tok_a", at)
	if err != nil || !consumed {
		t.Fatalf("first consume: consumed=%v err=%v", consumed, err)
	}

	consumed, err = store.ConsumeEntitlement(ctx, "workbook-001", "tok_a", at)
	if err != nil {
		t.Fatalf("second consume returned error: %v", err)
	}
	if consumed {
		t.Fatal("second consume reported consumed=true; the transition must happen exactly once")
	}

	if _, err := store.ConsumeEntitlement(ctx, "workbook-001", "tok_missing", at); !errors.Is(err, models.ErrInvalidToken) {
		t.Fatalf("missing token: expected ErrInvalidToken, got %v", err)
	}

	ent, err := store.GetByToken(ctx, "workbook-001", "tok_a")
	if err != nil {
		t.Fatalf("GetByToken returned error: %v", err)
	}
	if !ent.Consumed || ent.ConsumedAt == nil {
		t.Errorf("consumed flag not recorded: %+v", ent)
	}
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	if _, err := store.CreateEntitlement(ctx, newEntitlement("cs_1", "tok_a")); err != nil {
		t.Fatalf("insert returned error: %v", err)
	}

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumed, err := store.ConsumeEntitlement(ctx, "workbook-001", "tok_a", time.Now().UTC())
			if err != nil {
				t.Errorf("concurrent consume returned error: %v", err)
				return
			}
			if consumed {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 successful consume out of %d, got %d", workers, successes)
	}
}

func TestMemoryStoreListOrdering(t *testing.T) {
	store := NewMemoryEntitlementStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, sessionID := range []string{"cs_1", "cs_2", "cs_3"} {
		ent := newEntitlement(sessionID, "tok_"+sessionID)
		ent.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.CreateEntitlement(ctx, ent); err != nil {
			t.Fatalf("insert %s returned error: %v", sessionID, err)
		}
	}

	entitlements, err := store.ListEntitlements(ctx)
	if err != nil {
		t.Fatalf("ListEntitlements returned error: %v", err)
	}
	if len(entitlements) != 3 {
		t.Fatalf("expected 3 entitlements, got %d", len(entitlements))
	}
	for i := 1; i < len(entitlements); i++ {
		if entitlements[i].CreatedAt.Before(entitlements[i-1].CreatedAt) {
			t.Fatal("entitlements not ordered oldest first")
		}
	}
}
