// Package models holds the read models for the pre-existing principal
// tables (superusers, tenant_owners, tenants). The auth service reads these
// records; it never creates or mutates them, except for the admin paths that
// delete a client or change its subscription status.
package models

import (
	"time"

	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

// SubscriptionStatus gates tenant-owner login.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// IsValid reports whether the status is one of the closed set.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionTrial, SubscriptionExpired:
		return true
	}
	return false
}

// AllowsLogin reports whether a tenant owner with this status may log in.
// Expired subscriptions block login even with a correct secret.
func (s SubscriptionStatus) AllowsLogin() bool {
	return s == SubscriptionActive || s == SubscriptionTrial
}

// Superuser is a platform operator with global reach.
type Superuser struct {
	ID           id.SuperuserID
	Username     string
	Email        string // optional
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Tenant is one wedding site. The owning account shares the tenant's id, so
// the tenant row carries both the site display fields and the guest access
// code slots.
//
// GuestCode and AdminCode are the two shared access-code slots: the first
// admits regular guests, the second unlocks guestbook moderation and bulk
// download on the public site. Which slot matches determines the access type
// reported to the caller.
type Tenant struct {
	ID                 id.TenantID
	Name               string
	Slug               string
	ContactEmail       string
	SubscriptionStatus SubscriptionStatus
	GuestCode          string
	AdminCode          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Owner is the tenant-owner credential record. Owner.ID == Tenant.ID.
type Owner struct {
	ID           id.TenantID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
