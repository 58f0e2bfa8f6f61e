package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thefortthatholds/storefront/models"
)

// MemoryEntitlementStore keeps entitlements in process memory under a single
// mutex. It preserves the same atomicity guarantees as the Postgres repository
// (insert-if-absent on session ID, compare-and-set on the consumed flag) but
// not durability; it backs local development and tests when no database is
// configured.
type MemoryEntitlementStore struct {
	mu        sync.Mutex
	bySession map[string]*models.Entitlement
	byToken   map[string]*models.Entitlement
	order     []string // session IDs in insertion order
}

func NewMemoryEntitlementStore() *MemoryEntitlementStore {
	return &MemoryEntitlementStore{
		bySession: make(map[string]*models.Entitlement),
		byToken:   make(map[string]*models.Entitlement),
	}
}

func (s *MemoryEntitlementStore) CreateEntitlement(_ context.Context, ent *models.Entitlement) (bool, error) {
	if ent.GatewaySessionID == "" {
		return false, fmt.Errorf("entitlement is missing a gateway session ID")
	}
	if ent.DownloadToken == "" {
		return false, fmt.Errorf("entitlement is missing a download token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySession[ent.GatewaySessionID]; exists {
		return false, nil
	}
	if _, exists := s.byToken[ent.DownloadToken]; exists {
		return false, fmt.Errorf("token %q: %w", ent.DownloadToken, ErrTokenCollision)
	}

	stored := *ent
	s.bySession[ent.GatewaySessionID] = &stored
	s.byToken[ent.DownloadToken] = &stored
	s.order = append(s.order, ent.GatewaySessionID)
	return true, nil
}

func (s *MemoryEntitlementStore) GetBySessionID(_ context.Context, sessionID string) (*models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.bySession[sessionID]
	if !ok {
		return nil, fmt.Errorf("entitlement not found: %w", sql.ErrNoRows)
	}
	copied := *ent
	return &copied, nil
}

func (s *MemoryEntitlementStore) GetByToken(_ context.Context, itemID, token string) (*models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.byToken[token]
	if !ok || ent.ItemID != itemID {
		return nil, models.ErrInvalidToken
	}
	copied := *ent
	return &copied, nil
}

func (s *MemoryEntitlementStore) ConsumeEntitlement(_ context.Context, itemID, token string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.byToken[token]
	if !ok || ent.ItemID != itemID {
		return false, models.ErrInvalidToken
	}
	if ent.Consumed {
		return false, nil
	}
	ent.Consumed = true
	consumedAt := at
	ent.ConsumedAt = &consumedAt
	return true, nil
}

func (s *MemoryEntitlementStore) ListEntitlements(_ context.Context) ([]models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Entitlement, 0, len(s.order))
	for _, sessionID := range s.order {
		out = append(out, *s.bySession[sessionID])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
