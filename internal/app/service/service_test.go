package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	appstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/app"
	credentialstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/credential"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

type AppServiceSuite struct {
	suite.Suite
	apps    *appstore.InMemory
	creds   *credentialstore.InMemory
	service *Service
}

func TestAppServiceSuite(t *testing.T) {
	suite.Run(t, new(AppServiceSuite))
}

func (s *AppServiceSuite) SetupTest() {
	s.apps = appstore.NewInMemory()
	s.creds = credentialstore.NewInMemory()
	s.service = New(s.apps, s.creds)
}

func (s *AppServiceSuite) createApp(name string) *CreateAppResult {
	result, err := s.service.CreateApp(context.Background(), &models.CreateAppRequest{
		OwnerEntityType: models.OwnerEntityOrganization,
		OwnerID:         "org-1",
		Name:            name,
	})
	s.Require().NoError(err)
	return result
}

// =============================================================================
// CreateApp / GetApp
// =============================================================================

func (s *AppServiceSuite) TestCreateApp() {
	s.Run("assigns a 16-character ext id and starts unverified", func() {
		result := s.createApp("Acme")

		app, err := s.service.GetApp(context.Background(), result.ExtID)
		s.Require().NoError(err)
		s.Len(app.ExtID, 16)
		s.Equal("Acme", app.Name)
		s.Equal(models.AppStatusUnverified, app.Status)
		s.Nil(app.Config)
	})

	s.Run("rejects missing owner", func() {
		_, err := s.service.CreateApp(context.Background(), &models.CreateAppRequest{
			OwnerEntityType: models.OwnerEntityOrganization,
			Name:            "Acme",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown owner entity type", func() {
		_, err := s.service.CreateApp(context.Background(), &models.CreateAppRequest{
			OwnerEntityType: 9,
			OwnerID:         "org-1",
			Name:            "Acme",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AppServiceSuite) TestGetAppNotFound() {
	_, err := s.service.GetApp(context.Background(), "NOSUCHAPP0000000")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// ListApps
// =============================================================================

func (s *AppServiceSuite) TestListAppsPaginates() {
	for i := 0; i < 15; i++ {
		s.createApp("App")
	}

	list, err := s.service.ListApps(context.Background(), "org-1", models.PageRequest{})
	s.Require().NoError(err)
	s.Len(list.Apps, 10, "default page limit")
	s.Equal(15, list.Metadata.Count)
	s.Equal(10, list.Metadata.Limit)
	s.Equal(0, list.Metadata.Skip)

	rest, err := s.service.ListApps(context.Background(), "org-1", models.PageRequest{Skip: 10, Limit: 10})
	s.Require().NoError(err)
	s.Len(rest.Apps, 5)
}

func (s *AppServiceSuite) TestListAppsFiltersByOwner() {
	s.createApp("Mine")
	list, err := s.service.ListApps(context.Background(), "someone-else", models.PageRequest{})
	s.Require().NoError(err)
	s.Empty(list.Apps)
	s.Equal(0, list.Metadata.Count)
}

// =============================================================================
// DeleteApp
// =============================================================================

func (s *AppServiceSuite) TestDeleteAppCascadesCredentials() {
	ctx := context.Background()
	app := s.createApp("Acme")

	_, err := s.service.CreateCredential(ctx, app.ExtID, &models.CreateCredentialRequest{
		Environment: models.EnvironmentProduction,
		Type:        models.CredentialTypeServer,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteApp(ctx, app.ExtID))

	_, err = s.service.GetApp(ctx, app.ExtID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	list, _, err := s.creds.ListByApp(ctx, app.ID, 0, 10)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *AppServiceSuite) TestDeleteAppNotFound() {
	err := s.service.DeleteApp(context.Background(), "NOSUCHAPP0000000")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// UpdateWebConfig
// =============================================================================

func (s *AppServiceSuite) TestUpdateWebConfig() {
	ctx := context.Background()
	app := s.createApp("Acme")

	s.Run("rejects relative redirect urls", func() {
		err := s.service.UpdateWebConfig(ctx, app.ExtID, &models.WebConfig{
			RedirectURLs: models.RedirectURLs{Success: "/relative", Failed: "https://acme.example.com/f"},
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfigInvalid))
	})

	s.Run("persists a valid config", func() {
		err := s.service.UpdateWebConfig(ctx, app.ExtID, &models.WebConfig{
			RedirectURLs: models.RedirectURLs{
				Success: "https://acme.example.com/s",
				Failed:  "https://acme.example.com/f",
			},
			PriorityCountry: []string{"SG"},
		})
		s.Require().NoError(err)

		stored, err := s.service.GetApp(ctx, app.ExtID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.Config)
		s.Equal("https://acme.example.com/s", stored.Config.RedirectURLs.Success)
		s.Equal([]string{"SG"}, stored.Config.PriorityCountry)
	})
}
