package guest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// InMemory stores guest sessions in a map for tests and dev mode. Unlike the
// Redis store there is no native TTL; the service checks expiry on read, so
// stale rows here are harmless.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]models.GuestSession
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string]models.GuestSession)}
}

func (s *InMemory) Create(_ context.Context, session *models.GuestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *InMemory) FindByToken(_ context.Context, tokenValue string) (*models.GuestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[tokenValue]
	if !ok {
		return nil, fmt.Errorf("guest session not found: %w", sentinel.ErrNotFound)
	}
	copied := session
	return &copied, nil
}
