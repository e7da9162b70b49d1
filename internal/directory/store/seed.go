package store

import (
	"time"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/secrets"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

// SeedDevDirectory populates an in-memory directory with one superuser and
// one trial tenant so the server is usable without Postgres.
func SeedDevDirectory(s *InMemory) (*models.Superuser, *models.Tenant) {
	now := time.Now()

	godHash, _ := secrets.Hash("god-dev-password")
	su := models.Superuser{
		ID:           id.NewSuperuserID(),
		Username:     "admin",
		Email:        "admin@refletsdebonheur.example",
		PasswordHash: godHash,
		Active:       true,
		CreatedAt:    now,
	}
	s.PutSuperuser(su)

	ownerHash, _ := secrets.Hash("client-dev-password")
	tenantID := id.NewTenantID()
	tenant := models.Tenant{
		ID:                 tenantID,
		Name:               "Claire & Julien",
		Slug:               "claire-et-julien",
		ContactEmail:       "claire.julien@example.com",
		SubscriptionStatus: models.SubscriptionTrial,
		GuestCode:          "CJ2026",
		AdminCode:          "CJ2026-ADMIN",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	owner := models.Owner{
		ID:           tenantID,
		Email:        tenant.ContactEmail,
		PasswordHash: ownerHash,
		CreatedAt:    now,
	}
	s.PutTenant(tenant, owner)

	return &su, &tenant
}
