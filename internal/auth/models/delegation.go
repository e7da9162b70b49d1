package models

import (
	"time"

	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

// DefaultGrantMaxUses is what the issue path always writes today. The field
// is general; stores honor any positive max.
const DefaultGrantMaxUses = 1

// DelegationGrant is a short-lived, limited-use token letting a superuser
// act as one tenant owner without that owner's credential.
//
// Invariants:
//   - consumable iff now < ExpiresAt and UsedCount < MaxUses
//   - consumption increments UsedCount atomically (store-enforced; two
//     concurrent consumers of a single-use grant cannot both succeed)
//   - a grant past expiry or exhaustion is permanently inert
type DelegationGrant struct {
	ID             id.GrantID
	IssuerID       id.SuperuserID
	TargetTenantID id.TenantID
	Token          string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	UsedCount      int
	MaxUses        int
	UsedAt         *time.Time
}

// Consumable reports whether a verify call at the given instant could
// succeed. The store performs the authoritative atomic check; this is for
// reads and tests.
func (g *DelegationGrant) Consumable(now time.Time) bool {
	return now.Before(g.ExpiresAt) && g.UsedCount < g.MaxUses
}
