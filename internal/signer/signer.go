// Package signer computes the business-layer signature that binds a web login
// session to the credential that requested it. The signature is keyed by the
// credential's own secret, so rotating the secret invalidates every
// outstanding session token for that credential without a revocation list.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer produces deterministic keyed signatures over session context.
// The salt is process-wide, fixed configuration (not secret-derived); it
// separates structurally similar contexts across deployments.
type Signer struct {
	salt string
}

// New constructs a Signer with the configured signature salt.
func New(salt string) *Signer {
	return &Signer{salt: salt}
}

// Sign computes an HMAC-SHA256 over purpose, session id and client id, keyed
// by the credential secret. Pure function: same inputs always produce the
// same signature. Freshness comes from the session id and token expiry, not
// from the MAC.
func (s *Signer) Sign(sessionID, clientID, clientSecret, purpose string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(purpose + sessionID + clientID + s.salt))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches recomputes the signature and compares it in constant time.
func (s *Signer) Matches(signature, sessionID, clientID, clientSecret, purpose string) bool {
	expected := s.Sign(sessionID, clientID, clientSecret, purpose)
	return hmac.Equal([]byte(expected), []byte(signature))
}
