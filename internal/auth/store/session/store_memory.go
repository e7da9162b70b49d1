package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested row does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemory stores sessions in maps for tests and dev mode.
type InMemory struct {
	mu       sync.RWMutex
	byToken  map[string]*models.Session
	byID     map[id.SessionID]*models.Session
	byRefesh map[string]*models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{
		byToken:  make(map[string]*models.Session),
		byID:     make(map[id.SessionID]*models.Session),
		byRefesh: make(map[string]*models.Session),
	}
}

func (s *InMemory) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byToken[session.Token]; exists {
		return fmt.Errorf("duplicate session token: %w", sentinel.ErrConflict)
	}
	copied := *session
	s.byToken[copied.Token] = &copied
	s.byID[copied.ID] = &copied
	if copied.RefreshToken != "" {
		s.byRefesh[copied.RefreshToken] = &copied
	}
	return nil
}

func (s *InMemory) FindByToken(_ context.Context, tokenValue string, kind models.PrincipalKind) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byToken[tokenValue]
	if !ok || session.PrincipalKind != kind {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (s *InMemory) FindByRefreshToken(_ context.Context, refreshToken string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byRefesh[refreshToken]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (s *InMemory) TouchLastUsed(_ context.Context, sessionID id.SessionID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.byID[sessionID]; ok {
		session.LastUsedAt = now
	}
	return nil
}

func (s *InMemory) Revoke(_ context.Context, tokenValue string, reason models.RevocationReason, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byToken[tokenValue]
	if !ok || session.RevokedAt != nil {
		return false, nil
	}
	session.ApplyRevocation(now, reason)
	return true, nil
}

func (s *InMemory) AdvanceAccessToken(_ context.Context, sessionID id.SessionID, newToken string, expiresAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[sessionID]
	if !ok || session.RevokedAt != nil {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	delete(s.byToken, session.Token)
	session.Token = newToken
	session.ExpiresAt = expiresAt
	session.LastUsedAt = now
	s.byToken[newToken] = session
	return nil
}

func (s *InMemory) RevokeAllForPrincipal(_ context.Context, principalID string, kind models.PrincipalKind, reason models.RevocationReason, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	revoked := 0
	for _, session := range s.byID {
		if session.PrincipalID != principalID || session.PrincipalKind != kind {
			continue
		}
		if session.RevokedAt != nil {
			continue
		}
		session.ApplyRevocation(now, reason)
		revoked++
	}
	return revoked, nil
}
