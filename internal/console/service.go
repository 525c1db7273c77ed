// Package console authenticates console operators. Operator accounts are
// provisioned through configuration; a successful login issues a short-lived
// console session token through the same codec the web login flow uses.
package console

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/token"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// decoyPasswordHash is a real bcrypt hash (of no provisioned password) so
// the comparison burned for an unknown email costs the same bcrypt work as
// one for a known email.
var decoyPasswordHash = []byte("$2b$10$x3xiq6jFSmYaDNAzV.s1rOs7Wv9Z6qJVpUEMkm9bAzt1EsyX73Qom")

// Operator is a provisioned console account. PasswordHash is a bcrypt hash.
type Operator struct {
	Email        string
	PasswordHash string
}

// Service verifies operator logins.
type Service struct {
	operators []Operator
	codec     *token.Codec
	lifetime  time.Duration
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs the console auth service.
func New(operators []Operator, codec *token.Codec, lifetime time.Duration, opts ...Option) *Service {
	s := &Service{operators: operators, codec: codec, lifetime: lifetime}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is the issued console session.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks an operator's email and password. Unknown email and wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	authFailed := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	email = strings.ToLower(strings.TrimSpace(email))
	operator, ok := s.findOperator(email)
	if !ok {
		// Burn a bcrypt comparison anyway so the two failure modes take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword(decoyPasswordHash, []byte(password))
		return nil, authFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, authFailed
	}

	minted, err := s.codec.Mint(token.MintInput{
		ClientID: operator.Email,
		// Console sessions have no credential secret; the transport JWT
		// signature alone carries their integrity.
		ClientSecret: "",
		Purpose:      token.PurposeConsoleSession,
		Lifetime:     s.lifetime,
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "console.login", "email", operator.Email, "log_type", "audit")
	}
	return &LoginResult{Token: minted.Token, ExpiresAt: minted.ExpiresAt}, nil
}

// Authorize checks a presented console session token. Any token-shaped
// failure collapses into TOKEN_INVALID.
func (s *Service) Authorize(tokenString string) error {
	verified, err := s.codec.Verify(tokenString)
	if err != nil {
		return err
	}
	if verified.Purpose != token.PurposeConsoleSession {
		return dErrors.New(dErrors.CodeTokenInvalid, "session token purpose mismatch")
	}
	return nil
}

func (s *Service) findOperator(email string) (Operator, bool) {
	for _, op := range s.operators {
		if subtle.ConstantTimeCompare([]byte(op.Email), []byte(email)) == 1 {
			return op, true
		}
	}
	return Operator{}, false
}
