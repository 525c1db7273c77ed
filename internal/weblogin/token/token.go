// Package token mints and verifies web login session tokens. The token is a
// JWT signed with a process-wide transport key; it wraps the business-layer
// signature computed by internal/signer. Two independent layers: the
// transport signature proves the token was minted here and has not been
// edited or expired, the embedded business signature proves the presenting
// party's credential secret is still valid at verification time.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bluenumberfoundation/humanid-core/internal/app/randid"
	"github.com/bluenumberfoundation/humanid-core/internal/signer"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// Purpose enumerates the operations a session token can authorize. A token
// minted for one purpose must never validate for another.
type Purpose string

const (
	PurposeRequestLoginOTP Purpose = "request-login-otp"
	PurposeConsoleSession  Purpose = "console-session"
)

// Claims is the session token claim set. Subject carries the client id and
// ID (jti) the session id.
type Claims struct {
	Purpose   Purpose `json:"purpose"`
	Signature string  `json:"sig"`
	jwt.RegisteredClaims
}

// Codec mints and verifies session tokens.
type Codec struct {
	signingKey      []byte
	issuer          string
	defaultLifetime time.Duration
	signer          *signer.Signer
}

// New constructs a Codec. signingKey is the transport-level key; sig is the
// business-layer signer.
func New(signingKey, issuer string, defaultLifetime time.Duration, sig *signer.Signer) *Codec {
	return &Codec{
		signingKey:      []byte(signingKey),
		issuer:          issuer,
		defaultLifetime: defaultLifetime,
		signer:          sig,
	}
}

// MintInput carries the parameters for minting a session token. SessionID
// and Lifetime are optional; a fresh high-entropy id and the configured
// default lifetime are used when unset. A negative Lifetime mints a token
// that is already expired.
type MintInput struct {
	ClientID     string
	ClientSecret string
	Purpose      Purpose
	SessionID    string
	Lifetime     time.Duration
}

// MintResult is the minted token plus the metadata callers echo to partners.
type MintResult struct {
	Token     string
	SessionID string
	Purpose   Purpose
	ExpiresAt time.Time
}

// Mint creates a signed, time-bounded session token.
func (c *Codec) Mint(in MintInput) (*MintResult, error) {
	sessionID := in.SessionID
	if sessionID == "" {
		var err error
		sessionID, err = randid.SessionID()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate session id")
		}
	}

	lifetime := in.Lifetime
	if lifetime == 0 {
		lifetime = c.defaultLifetime
	}

	now := time.Now()
	expiresAt := now.Add(lifetime)
	claims := Claims{
		Purpose:   in.Purpose,
		Signature: c.signer.Sign(sessionID, in.ClientID, in.ClientSecret, string(in.Purpose)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.ClientID,
			ID:        sessionID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return &MintResult{Token: signed, SessionID: sessionID, Purpose: in.Purpose, ExpiresAt: expiresAt}, nil
}

// Verified is the claim set extracted from a transport-valid token.
type Verified struct {
	ClientID  string
	SessionID string
	Purpose   Purpose
	Signature string
}

// Verify checks the transport signature and expiry and extracts the claims.
// It does NOT check the business signature against a credential secret; the
// codec has no access to credential storage, so that is the caller's job.
func (c *Codec) Verify(tokenString string) (*Verified, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenInvalid, "session token has expired")
		}
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid session token claims")
	}
	if claims.Subject == "" || claims.ID == "" || claims.Purpose == "" || claims.Signature == "" {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "session token is missing required claims")
	}

	return &Verified{
		ClientID:  claims.Subject,
		SessionID: claims.ID,
		Purpose:   claims.Purpose,
		Signature: claims.Signature,
	}, nil
}
