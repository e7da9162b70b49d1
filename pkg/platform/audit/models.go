package audit

import "time"

// ActorKind identifies which class of principal performed an action.
type ActorKind string

const (
	ActorGod    ActorKind = "god"
	ActorClient ActorKind = "client"
	ActorGuest  ActorKind = "guest"
	// ActorSystem marks events with no human actor (cleanup sweeps).
	ActorSystem ActorKind = "system"
)

// Action names a security-relevant event. The set is closed; stores index on
// it and the Kafka sink routes on it.
type Action string

const (
	ActionGodLoginSuccess    Action = "god_login_success"
	ActionGodLoginFailed     Action = "god_login_failed"
	ActionClientLoginSuccess Action = "client_login_success"
	ActionClientLoginFailed  Action = "client_login_failed"
	ActionClientLoginBlocked Action = "client_login_blocked"
	ActionGuestLoginSuccess  Action = "guest_login_success"
	ActionGuestLoginFailed   Action = "guest_login_failed"
	ActionLogout             Action = "logout"
	ActionTokenRefreshed     Action = "token_refreshed"
	ActionDelegationIssued   Action = "delegation_issued"
	ActionDelegationUsed     Action = "delegation_used"
	ActionDelegationCleanup  Action = "delegation_cleanup"
	ActionClientDeleted      Action = "client_deleted"
	ActionStatusChanged      Action = "status_changed"
)

// securityActions mark the subset of events fanned out to the Kafka security
// topic in addition to durable storage. Failures and delegation activity are
// what monitoring cares about; routine successes stay store-only.
var securityActions = map[Action]bool{
	ActionGodLoginFailed:     true,
	ActionClientLoginFailed:  true,
	ActionClientLoginBlocked: true,
	ActionGuestLoginFailed:   true,
	ActionDelegationIssued:   true,
	ActionDelegationUsed:     true,
	ActionClientDeleted:      true,
}

// IsSecurity reports whether the action belongs on the security fan-out.
func (a Action) IsSecurity() bool { return securityActions[a] }

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Events are immutable once appended; no store exposes update or delete.
type Event struct {
	Timestamp time.Time
	Action    Action
	ActorKind ActorKind
	// ActorID is empty when the actor could not be resolved (failed logins
	// against unknown identifiers) or when the actor is the system.
	ActorID string
	// Details is a free-form human-readable summary (never parsed).
	Details   string
	RequestID string
	IP        string
}
