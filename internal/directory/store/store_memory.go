package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

// InMemory keeps principal records in maps for tests and dev mode.
// It intentionally favors clarity over performance.
type InMemory struct {
	mu         sync.RWMutex
	superusers map[id.SuperuserID]models.Superuser
	owners     map[id.TenantID]models.Owner
	tenants    map[id.TenantID]models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{
		superusers: make(map[id.SuperuserID]models.Superuser),
		owners:     make(map[id.TenantID]models.Owner),
		tenants:    make(map[id.TenantID]models.Tenant),
	}
}

// PutSuperuser inserts or replaces a superuser record. Seed/test helper.
func (s *InMemory) PutSuperuser(su models.Superuser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.superusers[su.ID] = su
}

// PutTenant inserts or replaces a tenant and its owner. Seed/test helper.
func (s *InMemory) PutTenant(tenant models.Tenant, owner models.Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.ID] = tenant
	s.owners[owner.ID] = owner
}

func (s *InMemory) FindSuperuserByUsername(_ context.Context, username string) (*models.Superuser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, su := range s.superusers {
		if su.Username == username {
			copied := su
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("superuser not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindSuperuserByID(_ context.Context, superuserID id.SuperuserID) (*models.Superuser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if su, ok := s.superusers[superuserID]; ok {
		copied := su
		return &copied, nil
	}
	return nil, fmt.Errorf("superuser not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindOwnerByEmail(_ context.Context, email string) (*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, owner := range s.owners {
		if owner.Email == email {
			copied := owner
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindTenantByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tenant, ok := s.tenants[tenantID]; ok {
		copied := tenant
		return &copied, nil
	}
	return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindTenantByAccessCode(_ context.Context, code string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.tenants {
		if tenant.GuestCode == code || tenant.AdminCode == code {
			copied := tenant
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) UpdateSubscriptionStatus(_ context.Context, tenantID id.TenantID, status models.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	tenant.SubscriptionStatus = status
	s.tenants[tenantID] = tenant
	return nil
}

func (s *InMemory) DeleteTenant(_ context.Context, tenantID id.TenantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenantID]; !ok {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tenants, tenantID)
	delete(s.owners, tenantID)
	return nil
}
