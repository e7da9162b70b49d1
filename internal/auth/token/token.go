// Package token mints the opaque identifiers used for sessions and
// delegation grants.
//
// Tokens carry no recoverable structure: every lookup is an exact match
// against the store. Byte lengths are fixed per use so the output space makes
// collisions negligible.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// SessionTokenBytes sizes session and refresh tokens (64 hex chars).
	SessionTokenBytes = 32
	// GrantTokenBytes sizes delegation grant tokens.
	GrantTokenBytes = 32
	// GuestIdentifierBytes sizes ephemeral guest identifiers.
	GuestIdentifierBytes = 16
)

// Generator produces cryptographically unpredictable hex tokens.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns byteLength random bytes hex-encoded.
func (g *Generator) Generate(byteLength int) (string, error) {
	if byteLength < GuestIdentifierBytes {
		return "", fmt.Errorf("token length %d below minimum %d", byteLength, GuestIdentifierBytes)
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
