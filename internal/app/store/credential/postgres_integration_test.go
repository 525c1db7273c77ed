//go:build integration

package credential

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	appstore "github.com/bluenumberfoundation/humanid-core/internal/app/store/app"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
	"github.com/bluenumberfoundation/humanid-core/pkg/testutil/containers"
)

type PostgresCredentialSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	apps  *appstore.PostgresStore
	store *PostgresStore
	app   *models.App
}

func TestPostgresCredentialSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(PostgresCredentialSuite))
}

func (s *PostgresCredentialSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.apps = appstore.NewPostgres(s.pg.DB)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresCredentialSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateAll(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.app = &models.App{
		ID:              uuid.New(),
		ExtID:           "INTEGRATIONAPP01",
		OwnerEntityType: models.OwnerEntityOrganization,
		OwnerID:         "org-1",
		Name:            "Integration App",
		Status:          models.AppStatusActive,
		Config: &models.WebConfig{
			RedirectURLs: models.RedirectURLs{
				Success: "https://acme.example.com/s",
				Failed:  "https://acme.example.com/f",
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.apps.Create(ctx, s.app))
}

func (s *PostgresCredentialSuite) newCredential(clientID string) *models.Credential {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Credential{
		ID:           uuid.New(),
		AppID:        s.app.ID,
		Environment:  models.EnvironmentProduction,
		Type:         models.CredentialTypeServer,
		Name:         "Integration Credential",
		ClientID:     clientID,
		ClientSecret: "integration-secret",
		Status:       models.CredentialStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresCredentialSuite) TestCreateAndFindRoundtrip() {
	ctx := context.Background()
	cred := s.newCredential("SERVER_INTEGRATION0000000001")
	cred.Type = models.CredentialTypeMobileSDK
	cred.Options = models.PlatformOptions{Platform: "android", PackageID: "com.acme.app"}
	s.Require().NoError(s.store.Create(ctx, cred))

	found, err := s.store.FindByClientID(ctx, cred.ClientID)
	s.Require().NoError(err)
	s.Equal(cred.ID, found.ID)
	s.Equal(cred.Options, found.Options, "platform options survive the JSONB roundtrip")
	s.Equal(models.CredentialStatusActive, found.Status)
}

func (s *PostgresCredentialSuite) TestClientIDUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newCredential("SERVER_INTEGRATION0000000001")))

	dup := s.newCredential("SERVER_INTEGRATION0000000001")
	s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresCredentialSuite) TestToggleStatusIsAtomic() {
	ctx := context.Background()
	cred := s.newCredential("SERVER_INTEGRATION0000000001")
	s.Require().NoError(s.store.Create(ctx, cred))

	status, err := s.store.ToggleStatus(ctx, s.app.ID, cred.ClientID, time.Now())
	s.Require().NoError(err)
	s.Equal(models.CredentialStatusInactive, status)

	status, err = s.store.ToggleStatus(ctx, s.app.ID, cred.ClientID, time.Now())
	s.Require().NoError(err)
	s.Equal(models.CredentialStatusActive, status)

	_, err = s.store.ToggleStatus(ctx, s.app.ID, "SERVER_NOSUCHCLIENT0000000000", time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCredentialSuite) TestDeleteReportsAffectedRows() {
	ctx := context.Background()
	cred := s.newCredential("SERVER_INTEGRATION0000000001")
	s.Require().NoError(s.store.Create(ctx, cred))

	count, err := s.store.DeleteByAppAndClientID(ctx, s.app.ID, cred.ClientID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	count, err = s.store.DeleteByAppAndClientID(ctx, s.app.ID, cred.ClientID)
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *PostgresCredentialSuite) TestListByAppPaginates() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		cred := s.newCredential("SERVER_INTEGRATION000000000" + string(rune('1'+i)))
		cred.CreatedAt = cred.CreatedAt.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Create(ctx, cred))
	}

	page, total, err := s.store.ListByApp(ctx, s.app.ID, 1, 1)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(page, 1)
	s.Equal("SERVER_INTEGRATION0000000002", page[0].ClientID)
}

func (s *PostgresCredentialSuite) TestSchemaCascadesOnAppDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newCredential("SERVER_INTEGRATION0000000001")))

	s.Require().NoError(s.apps.Delete(ctx, s.app.ID))

	_, err := s.store.FindByClientID(ctx, "SERVER_INTEGRATION0000000001")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
