package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/internal/app/randid"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// CreateCredential issues a new client id/secret pair for an app.
// Returns the created credential including the cleartext secret.
func (s *Service) CreateCredential(ctx context.Context, appExtID string, req *models.CreateCredentialRequest) (*models.Credential, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCreateCredential(start)
		}
	}()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	app, err := s.GetApp(ctx, appExtID)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s %s for %s", app.Name, req.Type.Label(), req.Environment.Label())
	}

	// Server credentials carry no platform options regardless of input;
	// mobile SDK credentials must carry exactly one valid platform shape.
	var options models.PlatformOptions
	if req.Type == models.CredentialTypeMobileSDK {
		options, err = models.ParsePlatformOptions(req.Options)
		if err != nil {
			return nil, err
		}
	}

	clientIDPart, err := randid.ClientID()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate client id")
	}
	clientSecret, err := randid.ClientSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate client secret")
	}

	now := time.Now()
	cred := &models.Credential{
		ID:           uuid.New(),
		AppID:        app.ID,
		Environment:  req.Environment,
		Type:         req.Type,
		Name:         name,
		ClientID:     req.Type.Prefix() + clientIDPart,
		ClientSecret: clientSecret,
		Options:      options,
		Status:       models.CredentialStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.credentials.Create(ctx, cred); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "client id collision")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
	}

	s.logEvent(ctx, "credential.created",
		"app_id", app.ID, "client_id", cred.ClientID, "credential_type", int(cred.Type))
	if s.metrics != nil {
		s.metrics.CredentialsCreated.Inc()
	}
	return cred, nil
}

// CredentialList is a paginated credential listing. Secrets are included:
// callers are the owning app's authenticated console.
type CredentialList struct {
	Credentials []*models.Credential `json:"credentials"`
	Metadata    models.PageMetadata  `json:"_metadata"`
}

// ListCredentials returns the app's credentials with pagination metadata.
func (s *Service) ListCredentials(ctx context.Context, appExtID string, page models.PageRequest) (*CredentialList, error) {
	app, err := s.GetApp(ctx, appExtID)
	if err != nil {
		return nil, err
	}

	page.Normalize()
	creds, count, err := s.credentials.ListByApp(ctx, app.ID, page.Skip, page.Limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return &CredentialList{
		Credentials: creds,
		Metadata:    models.PageMetadata{Limit: page.Limit, Skip: page.Skip, Count: count},
	}, nil
}

// ToggleCredentialStatus flips a credential between active and inactive and
// returns the new status. Console-only path, so a missing credential is a
// distinguishable not-found rather than a generic auth failure.
func (s *Service) ToggleCredentialStatus(ctx context.Context, appExtID, clientID string) (models.CredentialStatus, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveToggleCredential(start)
		}
	}()

	app, err := s.GetApp(ctx, appExtID)
	if err != nil {
		return "", err
	}

	status, err := s.credentials.ToggleStatus(ctx, app.ID, clientID, time.Now())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle credential status")
	}

	s.logEvent(ctx, "credential.status_toggled",
		"app_id", app.ID, "client_id", clientID, "status", string(status))
	return status, nil
}

// DeleteCredentialResult reports how many rows a delete removed.
type DeleteCredentialResult struct {
	DeletedCount int64 `json:"deleted_count"`
}

// DeleteCredential hard-deletes a credential. Idempotent: deleting an absent
// credential returns a zero count, not an error.
func (s *Service) DeleteCredential(ctx context.Context, appExtID, clientID string) (*DeleteCredentialResult, error) {
	app, err := s.GetApp(ctx, appExtID)
	if err != nil {
		return nil, err
	}

	count, err := s.credentials.DeleteByAppAndClientID(ctx, app.ID, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete credential")
	}

	s.logEvent(ctx, "credential.deleted", "app_id", app.ID, "client_id", clientID, "count", count)
	return &DeleteCredentialResult{DeletedCount: count}, nil
}

// UpdateCredentialName renames a credential.
func (s *Service) UpdateCredentialName(ctx context.Context, clientID, name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if err := s.credentials.UpdateName(ctx, clientID, name, time.Now()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to rename credential")
	}
	s.logEvent(ctx, "credential.renamed", "client_id", clientID)
	return nil
}
