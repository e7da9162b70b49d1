// Package domain holds typed identifiers shared across the service.
//
// IDs are distinct named types over uuid.UUID so a TenantID can never be
// passed where a SessionID is expected. Parsing enforces the invariant that
// IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
)

type (
	// SuperuserID identifies a platform superuser ("god" principal).
	SuperuserID uuid.UUID

	// TenantID identifies a wedding site. The owning account shares the
	// same id, so TenantID doubles as the tenant-owner principal id.
	TenantID uuid.UUID

	// SessionID identifies an issued session row.
	SessionID uuid.UUID

	// GrantID identifies a delegation grant.
	GrantID uuid.UUID
)

func (id SuperuserID) String() string { return uuid.UUID(id).String() }
func (id TenantID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string   { return uuid.UUID(id).String() }
func (id GrantID) String() string     { return uuid.UUID(id).String() }

func (id SuperuserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id GrantID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewSuperuserID returns a fresh random SuperuserID.
func NewSuperuserID() SuperuserID { return SuperuserID(uuid.New()) }

// NewTenantID returns a fresh random TenantID.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewGrantID returns a fresh random GrantID.
func NewGrantID() GrantID { return GrantID(uuid.New()) }

func parse(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseSuperuserID validates and converts a string into a SuperuserID.
func ParseSuperuserID(raw string) (SuperuserID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return SuperuserID{}, err
	}
	return SuperuserID(parsed), nil
}

// ParseTenantID validates and converts a string into a TenantID.
func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(parsed), nil
}

// ParseSessionID validates and converts a string into a SessionID.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(parsed), nil
}

// ParseGrantID validates and converts a string into a GrantID.
func ParseGrantID(raw string) (GrantID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return GrantID{}, err
	}
	return GrantID(parsed), nil
}
