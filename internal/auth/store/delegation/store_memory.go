package delegation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// InMemory stores delegation grants for tests and dev mode. Consume holds
// the write lock across the check and the increment, giving the same
// at-most-max-uses guarantee as the conditional UPDATE in Postgres.
type InMemory struct {
	mu     sync.Mutex
	grants map[string]*models.DelegationGrant
}

func NewInMemory() *InMemory {
	return &InMemory{grants: make(map[string]*models.DelegationGrant)}
}

func (s *InMemory) Create(_ context.Context, grant *models.DelegationGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.grants[grant.Token]; exists {
		return fmt.Errorf("duplicate grant token: %w", sentinel.ErrConflict)
	}
	copied := *grant
	s.grants[copied.Token] = &copied
	return nil
}

func (s *InMemory) Consume(_ context.Context, tokenValue string, now time.Time) (*models.DelegationGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[tokenValue]
	if !ok {
		return nil, fmt.Errorf("delegation grant not found: %w", sentinel.ErrNotFound)
	}
	if !grant.Consumable(now) {
		return nil, fmt.Errorf("delegation grant inert: %w", sentinel.ErrExhausted)
	}

	grant.UsedCount++
	usedAt := now
	grant.UsedAt = &usedAt

	copied := *grant
	return &copied, nil
}

func (s *InMemory) FindByToken(_ context.Context, tokenValue string) (*models.DelegationGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[tokenValue]
	if !ok {
		return nil, fmt.Errorf("delegation grant not found: %w", sentinel.ErrNotFound)
	}
	copied := *grant
	return &copied, nil
}

func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deletedCount := 0
	for tokenValue, grant := range s.grants {
		if grant.ExpiresAt.Before(now) {
			delete(s.grants, tokenValue)
			deletedCount++
		}
	}
	return deletedCount, nil
}
