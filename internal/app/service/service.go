package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/metrics"
	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/internal/app/randid"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// AppStore is the persistence contract the app service consumes.
type AppStore interface {
	Create(ctx context.Context, app *models.App) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.App, error)
	FindByExtID(ctx context.Context, extID string) (*models.App, error)
	Update(ctx context.Context, app *models.App) error
	List(ctx context.Context, ownerID string, skip, limit int) ([]*models.App, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CredentialStore is the persistence contract for app credentials.
type CredentialStore interface {
	Create(ctx context.Context, cred *models.Credential) error
	FindByAppAndClientID(ctx context.Context, appID uuid.UUID, clientID string) (*models.Credential, error)
	ListByApp(ctx context.Context, appID uuid.UUID, skip, limit int) ([]*models.Credential, int, error)
	ToggleStatus(ctx context.Context, appID uuid.UUID, clientID string, now time.Time) (models.CredentialStatus, error)
	UpdateName(ctx context.Context, clientID, name string, now time.Time) error
	DeleteByAppAndClientID(ctx context.Context, appID uuid.UUID, clientID string) (int64, error)
	DeleteByApp(ctx context.Context, appID uuid.UUID) (int64, error)
}

// DevUserStore is the persistence contract for sandbox dev users.
type DevUserStore interface {
	Create(ctx context.Context, user *models.OrgDevUser) error
	FindByExtID(ctx context.Context, extID string) (*models.OrgDevUser, error)
	FindByHashID(ctx context.Context, hashID string) (*models.OrgDevUser, error)
	CountByOwner(ctx context.Context, ownerType models.OwnerEntityType, ownerID string) (int, error)
	ListByOwner(ctx context.Context, ownerType models.OwnerEntityType, ownerID string, skip, limit int) ([]*models.OrgDevUser, int, error)
	Delete(ctx context.Context, extID string) error
}

// Service orchestrates app registration and credential management.
type Service struct {
	apps        AppStore
	credentials CredentialStore
	devUsers    DevUserStore
	phoneHasher *PhoneHasher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDevUsers(store DevUserStore, hasher *PhoneHasher) Option {
	return func(s *Service) {
		s.devUsers = store
		s.phoneHasher = hasher
	}
}

// New constructs a Service.
func New(apps AppStore, credentials CredentialStore, opts ...Option) *Service {
	s := &Service{apps: apps, credentials: credentials}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAppResult is returned from app registration. Only the identifiers
// are exposed; the console fetches full details separately.
type CreateAppResult struct {
	ID    uuid.UUID `json:"id"`
	ExtID string    `json:"ext_id"`
}

// CreateApp registers a partner app under an owner.
func (s *Service) CreateApp(ctx context.Context, req *models.CreateAppRequest) (*CreateAppResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	extID, err := randid.AppExtID()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate app ext id")
	}

	app, err := models.NewApp(uuid.New(), extID, req.OwnerEntityType, req.OwnerID, req.Name, time.Now())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Random 16-char ext ids do not realistically collide; a conflict
			// here points at a store problem, not user input.
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "app ext id collision")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create app")
	}

	s.logEvent(ctx, "app.created", "app_id", app.ID, "ext_id", app.ExtID)
	if s.metrics != nil {
		s.metrics.AppsCreated.Inc()
	}
	return &CreateAppResult{ID: app.ID, ExtID: app.ExtID}, nil
}

// GetApp resolves an app by external id, the single choke point every
// console credential operation goes through.
func (s *Service) GetApp(ctx context.Context, extID string) (*models.App, error) {
	app, err := s.apps.FindByExtID(ctx, extID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "app not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load app")
	}
	return app, nil
}

// AppList is a paginated app listing.
type AppList struct {
	Apps     []*models.App       `json:"apps"`
	Metadata models.PageMetadata `json:"_metadata"`
}

// ListApps returns registered apps, optionally filtered by owner.
func (s *Service) ListApps(ctx context.Context, ownerID string, page models.PageRequest) (*AppList, error) {
	page.Normalize()
	apps, count, err := s.apps.List(ctx, ownerID, page.Skip, page.Limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list apps")
	}
	return &AppList{
		Apps:     apps,
		Metadata: models.PageMetadata{Limit: page.Limit, Skip: page.Skip, Count: count},
	}, nil
}

// DeleteApp removes an app and cascades to all of its credentials.
func (s *Service) DeleteApp(ctx context.Context, extID string) error {
	app, err := s.GetApp(ctx, extID)
	if err != nil {
		return err
	}

	credCount, err := s.credentials.DeleteByApp(ctx, app.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete app credentials")
	}
	s.logEvent(ctx, "app.credentials_deleted", "app_id", app.ID, "count", credCount)

	if err := s.apps.Delete(ctx, app.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete app")
	}
	s.logEvent(ctx, "app.deleted", "app_id", app.ID, "ext_id", app.ExtID)
	return nil
}

// UpdateWebConfig validates and stores the web login configuration.
func (s *Service) UpdateWebConfig(ctx context.Context, extID string, cfg *models.WebConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	app, err := s.GetApp(ctx, extID)
	if err != nil {
		return err
	}
	app.Config = cfg
	app.UpdatedAt = time.Now()
	if err := s.apps.Update(ctx, app); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update app config")
	}
	s.logEvent(ctx, "app.web_config_updated", "app_id", app.ID)
	return nil
}

func (s *Service) logEvent(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
