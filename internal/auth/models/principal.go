package models

import (
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

// PrincipalKind is the closed set of durable principal classes. Guests are
// deliberately not a member: they have no stored identity and use a separate
// lightweight session record.
type PrincipalKind string

const (
	// KindGod is a platform superuser.
	KindGod PrincipalKind = "god"
	// KindClient is a tenant owner (the couple's account).
	KindClient PrincipalKind = "client"
)

// IsValid reports whether the kind is a member of the closed set.
func (k PrincipalKind) IsValid() bool {
	switch k {
	case KindGod, KindClient:
		return true
	}
	return false
}

// OwnerPrincipal is the resolved tenant-owner identity returned to callers.
// Display fields are derived from the tenant record; the id doubles as the
// tenant id.
type OwnerPrincipal struct {
	ID                 id.TenantID
	TenantName         string
	Slug               string
	ContactEmail       string
	SubscriptionStatus directory.SubscriptionStatus
}

// Principal is the tagged union of authenticated identities. Exactly one of
// Superuser/Owner is set, matching Kind.
type Principal struct {
	Kind      PrincipalKind
	Superuser *directory.Superuser
	Owner     *OwnerPrincipal
}

// PrincipalID returns the string id of whichever variant is set.
func (p *Principal) PrincipalID() string {
	switch p.Kind {
	case KindGod:
		if p.Superuser != nil {
			return p.Superuser.ID.String()
		}
	case KindClient:
		if p.Owner != nil {
			return p.Owner.ID.String()
		}
	}
	return ""
}

// OwnerFromTenant derives the owner principal's display fields from the
// tenant record.
func OwnerFromTenant(tenant *directory.Tenant) *OwnerPrincipal {
	return &OwnerPrincipal{
		ID:                 tenant.ID,
		TenantName:         tenant.Name,
		Slug:               tenant.Slug,
		ContactEmail:       tenant.ContactEmail,
		SubscriptionStatus: tenant.SubscriptionStatus,
	}
}

// AccessType reports which code slot a guest matched; the gallery gates
// moderation features on it. The auth service only reports it.
type AccessType string

const (
	AccessGuest AccessType = "guest"
	AccessAdmin AccessType = "admin"
)

// GuestPrincipal is the ephemeral identity handed to gallery visitors.
// GuestID is client-scoped and minted at login; nothing about it is stored
// outside the guest session record.
type GuestPrincipal struct {
	GuestID     string
	DisplayName string
	TenantID    id.TenantID
	AccessType  AccessType
}
