package models

// LoginResult is returned by a successful god/client login. The caller owns
// the tokens; nothing server-side caches them.
type LoginResult struct {
	Principal    *Principal
	Token        string
	RefreshToken string // client kind only
}

// GuestLoginResult is returned by a successful guest access-code login.
type GuestLoginResult struct {
	Principal  *GuestPrincipal
	Token      string
	AccessType AccessType
}

// RefreshResult carries the replacement access token. The refresh token is
// not rotated in the current design.
type RefreshResult struct {
	Token string
}

// DelegationResult carries an issued grant token.
type DelegationResult struct {
	Token string
}

// CleanupResult reports one sweep of expired delegation grants.
type CleanupResult struct {
	DeletedCount int
}
