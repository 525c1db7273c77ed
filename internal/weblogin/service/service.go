// Package service orchestrates the redirect-based web login flow: it proves a
// partner's credential pair, mints purpose-bound session tokens, and verifies
// tokens presented back by the hosted login page.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/internal/signer"
	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/token"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// Default priority country when neither the caller nor the app config sets one.
const defaultPriorityCountry = "US"

// AppStore is the app lookup contract the orchestrator consumes.
type AppStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.App, error)
	FindByExtID(ctx context.Context, extID string) (*models.App, error)
}

// CredentialStore is the credential lookup contract the orchestrator consumes.
type CredentialStore interface {
	FindByClientID(ctx context.Context, clientID string) (*models.Credential, error)
}

// Service composes the signer, the token codec and the stores.
type Service struct {
	apps         AppStore
	credentials  CredentialStore
	codec        *token.Codec
	signer       *signer.Signer
	loginBaseURL string
	assetBaseURL string
	logger       *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs the web login orchestrator.
func New(apps AppStore, credentials CredentialStore, codec *token.Codec, sig *signer.Signer, loginBaseURL, assetBaseURL string, opts ...Option) *Service {
	s := &Service{
		apps:         apps,
		credentials:  credentials,
		codec:        codec,
		signer:       sig,
		loginBaseURL: loginBaseURL,
		assetBaseURL: assetBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetLoginURLInput carries the parameters for composing a hosted login URL.
// The credential has already been authenticated by the caller.
type GetLoginURLInput struct {
	AppExtID        string
	Credential      *models.Credential
	Language        string
	PriorityCountry string
}

// GetLoginURL mints a login session token and composes the hosted login page
// URL the partner redirects the end user to.
func (s *Service) GetLoginURL(ctx context.Context, in GetLoginURLInput) (string, error) {
	app, err := s.apps.FindByExtID(ctx, in.AppExtID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "app not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load app")
	}
	if err := app.WebConfigValid(); err != nil {
		return "", err
	}

	// Priority country: explicit argument > app config > default.
	priorityCountry := in.PriorityCountry
	if priorityCountry == "" && len(app.Config.PriorityCountry) > 0 {
		priorityCountry = app.Config.PriorityCountry[0]
	}
	if priorityCountry == "" {
		priorityCountry = defaultPriorityCountry
	}

	minted, err := s.codec.Mint(token.MintInput{
		ClientID:     in.Credential.ClientID,
		ClientSecret: in.Credential.ClientSecret,
		Purpose:      token.PurposeRequestLoginOTP,
	})
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("t", minted.Token)
	query.Set("a", app.ExtID)
	query.Set("lang", in.Language)
	query.Set("priority_country", strings.ToUpper(priorityCountry))
	return s.loginBaseURL + "?" + query.Encode(), nil
}

// LoginURLRequest is the partner-facing input for composing a login URL from
// a raw credential pair.
type LoginURLRequest struct {
	ClientID        string
	ClientSecret    string
	Language        string
	PriorityCountry string
}

// LoginURLForClient authenticates the credential pair and composes the hosted
// login URL for its app.
func (s *Service) LoginURLForClient(ctx context.Context, in LoginURLRequest) (string, error) {
	cred, app, err := s.authenticate(ctx, in.ClientID, in.ClientSecret)
	if err != nil {
		return "", err
	}
	return s.GetLoginURL(ctx, GetLoginURLInput{
		AppExtID:        app.ExtID,
		Credential:      cred,
		Language:        in.Language,
		PriorityCountry: in.PriorityCountry,
	})
}

// RequestSessionInput is the partner's credential pair.
type RequestSessionInput struct {
	ClientID     string
	ClientSecret string
}

// RequestSessionResult is the minted session plus app display metadata for
// the hosted login page.
type RequestSessionResult struct {
	AppName   string    `json:"app_name"`
	LogoURL   string    `json:"logo_url"`
	Token     string    `json:"token"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestSession authenticates a partner credential pair and mints a login
// session token. Unknown client id and wrong secret fail identically so an
// untrusted caller learns nothing about which half was wrong.
func (s *Service) RequestSession(ctx context.Context, in RequestSessionInput) (*RequestSessionResult, error) {
	cred, app, err := s.authenticate(ctx, in.ClientID, in.ClientSecret)
	if err != nil {
		return nil, err
	}
	if err := app.WebConfigValid(); err != nil {
		return nil, err
	}

	minted, err := s.codec.Mint(token.MintInput{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Purpose:      token.PurposeRequestLoginOTP,
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "weblogin.session_requested", "app_id", app.ID, "client_id", cred.ClientID)
	return &RequestSessionResult{
		AppName:   app.Name,
		LogoURL:   s.resolveLogoURL(app.LogoFile),
		Token:     minted.Token,
		Purpose:   string(minted.Purpose),
		ExpiresAt: minted.ExpiresAt,
	}, nil
}

// ValidateTokenInput is a presented session token plus the purpose the caller
// expects it to authorize.
type ValidateTokenInput struct {
	Token           string
	ExpectedPurpose token.Purpose
}

// ValidateTokenResult is consumed by the OTP exchange step.
type ValidateTokenResult struct {
	AppID        uuid.UUID          `json:"app_id"`
	Environment  models.Environment `json:"environment_id"`
	ClientID     string             `json:"client_id"`
	ClientSecret string             `json:"-"`
	SessionID    string             `json:"session_id"`
	RedirectURL  string             `json:"redirect_url"`
}

// ValidateToken verifies a presented token end to end: transport signature
// and expiry via the codec, purpose equality, credential existence, and the
// business signature recomputed with the credential's current secret. A
// rotated secret therefore invalidates every token minted under the old one.
func (s *Service) ValidateToken(ctx context.Context, in ValidateTokenInput) (*ValidateTokenResult, error) {
	claims, err := s.codec.Verify(in.Token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != in.ExpectedPurpose {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "session token purpose mismatch")
	}

	cred, err := s.credentials.FindByClientID(ctx, claims.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid client credential")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve credential")
	}

	if !s.signer.Matches(claims.Signature, claims.SessionID, claims.ClientID, cred.ClientSecret, string(claims.Purpose)) {
		return nil, dErrors.New(dErrors.CodeSignatureMismatch, "session signature mismatch")
	}

	app, err := s.apps.FindByID(ctx, cred.AppID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid client credential")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load app")
	}
	if err := app.WebConfigValid(); err != nil {
		return nil, err
	}

	s.logEvent(ctx, "weblogin.token_validated", "app_id", app.ID, "client_id", cred.ClientID, "session_id", claims.SessionID)
	return &ValidateTokenResult{
		AppID:        app.ID,
		Environment:  cred.Environment,
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		SessionID:    claims.SessionID,
		RedirectURL:  app.Config.RedirectURLs.Success,
	}, nil
}

// authenticate resolves and checks a credential pair. Every failure mode an
// untrusted partner can reach returns the same unauthorized error.
func (s *Service) authenticate(ctx context.Context, clientID, clientSecret string) (*models.Credential, *models.App, error) {
	authFailed := dErrors.New(dErrors.CodeUnauthorized, "invalid client credential")

	cred, err := s.credentials.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, authFailed
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve credential")
	}
	if subtle.ConstantTimeCompare([]byte(cred.ClientSecret), []byte(clientSecret)) != 1 {
		return nil, nil, authFailed
	}
	if !cred.IsActive() {
		return nil, nil, authFailed
	}

	app, err := s.apps.FindByID(ctx, cred.AppID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, authFailed
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load app")
	}
	return cred, app, nil
}

func (s *Service) resolveLogoURL(logoFile string) string {
	if logoFile == "" {
		return ""
	}
	return strings.TrimSuffix(s.assetBaseURL, "/") + "/" + logoFile
}

func (s *Service) logEvent(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
