package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	appstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/app"
	credentialstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/credential"
	"github.com/bluenumberfoundation/humanid-core/internal/signer"
	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/token"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

type WebLoginSuite struct {
	suite.Suite
	apps    *appstore.InMemory
	creds   *credentialstore.InMemory
	codec   *token.Codec
	service *Service

	app  *models.App
	cred *models.Credential
}

func TestWebLoginSuite(t *testing.T) {
	suite.Run(t, new(WebLoginSuite))
}

func (s *WebLoginSuite) SetupTest() {
	s.apps = appstore.NewInMemory()
	s.creds = credentialstore.NewInMemory()

	sig := signer.New("test-salt")
	s.codec = token.New("transport-signing-key", "humanid-core-test", 5*time.Minute, sig)
	s.service = New(s.apps, s.creds, s.codec, sig,
		"https://login.example.com/web-login", "https://assets.example.com")

	now := time.Now()
	s.app = &models.App{
		ID:              uuid.New(),
		ExtID:           "ACMEAPP000000001",
		OwnerEntityType: models.OwnerEntityOrganization,
		OwnerID:         "org-1",
		Name:            "Acme",
		Status:          models.AppStatusActive,
		Config: &models.WebConfig{
			RedirectURLs: models.RedirectURLs{
				Success: "https://acme.example.com/login/success",
				Failed:  "https://acme.example.com/login/failed",
			},
		},
		LogoFile:  "acme.png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.apps.Create(context.Background(), s.app))

	s.cred = &models.Credential{
		ID:           uuid.New(),
		AppID:        s.app.ID,
		Environment:  models.EnvironmentProduction,
		Type:         models.CredentialTypeServer,
		Name:         "Acme Server Credential for Production",
		ClientID:     "SERVER_ACMECLIENT000000000000",
		ClientSecret: "acme-client-secret",
		Status:       models.CredentialStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.creds.Create(context.Background(), s.cred))
}

// =============================================================================
// RequestSession
// =============================================================================

func (s *WebLoginSuite) TestRequestSessionMintsToken() {
	result, err := s.service.RequestSession(context.Background(), RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().NoError(err)

	s.Equal("Acme", result.AppName)
	s.Equal("https://assets.example.com/acme.png", result.LogoURL)
	s.Equal(string(token.PurposeRequestLoginOTP), result.Purpose)
	s.WithinDuration(time.Now().Add(5*time.Minute), result.ExpiresAt, 2*time.Second)

	verified, err := s.codec.Verify(result.Token)
	s.Require().NoError(err)
	s.Equal(s.cred.ClientID, verified.ClientID)
}

func (s *WebLoginSuite) TestRequestSessionFailuresAreIndistinguishable() {
	ctx := context.Background()

	_, unknownErr := s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     "SERVER_NOSUCHCLIENT0000000000",
		ClientSecret: "whatever",
	})
	_, wrongSecretErr := s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: "wrong-secret",
	})

	s.Require().Error(unknownErr)
	s.Require().Error(wrongSecretErr)
	s.True(dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(wrongSecretErr, dErrors.CodeUnauthorized))
	// Same code, same message: the caller cannot tell which half was wrong.
	s.Equal(unknownErr.Error(), wrongSecretErr.Error())
}

func (s *WebLoginSuite) TestRequestSessionRejectsInactiveCredential() {
	ctx := context.Background()
	_, err := s.creds.ToggleStatus(ctx, s.app.ID, s.cred.ClientID, time.Now())
	s.Require().NoError(err)

	_, err = s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *WebLoginSuite) TestRequestSessionRequiresValidWebConfig() {
	s.app.Config = nil
	s.Require().NoError(s.apps.Update(context.Background(), s.app))

	_, err := s.service.RequestSession(context.Background(), RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConfigInvalid))
}

// =============================================================================
// Login URL
// =============================================================================

func (s *WebLoginSuite) TestLoginURLCarriesTokenAppLangAndCountry() {
	raw, err := s.service.LoginURLForClient(context.Background(), LoginURLRequest{
		ClientID:        s.cred.ClientID,
		ClientSecret:    s.cred.ClientSecret,
		Language:        "id",
		PriorityCountry: "id",
	})
	s.Require().NoError(err)

	s.True(strings.HasPrefix(raw, "https://login.example.com/web-login?"))
	parsed, err := url.Parse(raw)
	s.Require().NoError(err)
	query := parsed.Query()
	s.Equal(s.app.ExtID, query.Get("a"))
	s.Equal("id", query.Get("lang"))
	s.Equal("ID", query.Get("priority_country"), "country code is uppercased")

	verified, err := s.codec.Verify(query.Get("t"))
	s.Require().NoError(err)
	s.Equal(s.cred.ClientID, verified.ClientID)
}

func (s *WebLoginSuite) TestLoginURLPriorityCountryPrecedence() {
	ctx := context.Background()

	s.Run("app config country wins over default", func() {
		s.app.Config.PriorityCountry = []string{"sg"}
		s.Require().NoError(s.apps.Update(ctx, s.app))

		raw, err := s.service.LoginURLForClient(ctx, LoginURLRequest{
			ClientID:     s.cred.ClientID,
			ClientSecret: s.cred.ClientSecret,
		})
		s.Require().NoError(err)
		parsed, _ := url.Parse(raw)
		s.Equal("SG", parsed.Query().Get("priority_country"))
	})

	s.Run("explicit argument wins over app config", func() {
		raw, err := s.service.LoginURLForClient(ctx, LoginURLRequest{
			ClientID:        s.cred.ClientID,
			ClientSecret:    s.cred.ClientSecret,
			PriorityCountry: "jp",
		})
		s.Require().NoError(err)
		parsed, _ := url.Parse(raw)
		s.Equal("JP", parsed.Query().Get("priority_country"))
	})

	s.Run("defaults to US when nothing is set", func() {
		s.app.Config.PriorityCountry = nil
		s.Require().NoError(s.apps.Update(ctx, s.app))

		raw, err := s.service.LoginURLForClient(ctx, LoginURLRequest{
			ClientID:     s.cred.ClientID,
			ClientSecret: s.cred.ClientSecret,
		})
		s.Require().NoError(err)
		parsed, _ := url.Parse(raw)
		s.Equal("US", parsed.Query().Get("priority_country"))
	})
}

// =============================================================================
// ValidateToken
// =============================================================================

func (s *WebLoginSuite) TestValidateTokenReturnsRedirectContext() {
	ctx := context.Background()
	session, err := s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().NoError(err)

	result, err := s.service.ValidateToken(ctx, ValidateTokenInput{
		Token:           session.Token,
		ExpectedPurpose: token.PurposeRequestLoginOTP,
	})
	s.Require().NoError(err)
	s.Equal(s.app.ID, result.AppID)
	s.Equal(models.EnvironmentProduction, result.Environment)
	s.Equal(s.cred.ClientID, result.ClientID)
	s.Equal(s.cred.ClientSecret, result.ClientSecret)
	s.NotEmpty(result.SessionID)
	s.Equal("https://acme.example.com/login/success", result.RedirectURL)
}

func (s *WebLoginSuite) TestValidateTokenRejectsPurposeMismatch() {
	minted, err := s.codec.Mint(token.MintInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
		Purpose:      token.PurposeConsoleSession,
	})
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(context.Background(), ValidateTokenInput{
		Token:           minted.Token,
		ExpectedPurpose: token.PurposeRequestLoginOTP,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenInvalid))
}

func (s *WebLoginSuite) TestSecretRotationInvalidatesOutstandingTokens() {
	ctx := context.Background()
	session, err := s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().NoError(err)

	// Rotate the credential secret out from under the outstanding token.
	_, err = s.creds.DeleteByAppAndClientID(ctx, s.app.ID, s.cred.ClientID)
	s.Require().NoError(err)
	rotated := *s.cred
	rotated.ClientSecret = "rotated-secret"
	s.Require().NoError(s.creds.Create(ctx, &rotated))

	_, err = s.service.ValidateToken(ctx, ValidateTokenInput{
		Token:           session.Token,
		ExpectedPurpose: token.PurposeRequestLoginOTP,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSignatureMismatch))
}

func (s *WebLoginSuite) TestValidateTokenRejectsDeletedCredential() {
	ctx := context.Background()
	session, err := s.service.RequestSession(ctx, RequestSessionInput{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
	})
	s.Require().NoError(err)

	_, err = s.creds.DeleteByAppAndClientID(ctx, s.app.ID, s.cred.ClientID)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(ctx, ValidateTokenInput{
		Token:           session.Token,
		ExpectedPurpose: token.PurposeRequestLoginOTP,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
