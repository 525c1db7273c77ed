package models

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// AppStatus is the lifecycle status of a registered partner app.
type AppStatus string

const (
	AppStatusUnverified AppStatus = "unverified"
	AppStatusActive     AppStatus = "active"
	AppStatusSuspended  AppStatus = "suspended"
	AppStatusHidden     AppStatus = "hidden"
)

// Integer codes stored by the persistence layer. Business logic never touches
// these; the storage boundary maps enum to integer in both directions.
var appStatusCodes = map[AppStatus]int{
	AppStatusUnverified: 1,
	AppStatusActive:     2,
	AppStatusSuspended:  3,
	AppStatusHidden:     4,
}

// StorageCode returns the integer code persisted for the status.
func (s AppStatus) StorageCode() int {
	return appStatusCodes[s]
}

// AppStatusFromCode maps a stored integer back to the enum. Unknown codes map
// to unverified so a bad row never crashes a read path.
func AppStatusFromCode(code int) AppStatus {
	for status, c := range appStatusCodes {
		if c == code {
			return status
		}
	}
	return AppStatusUnverified
}

// OwnerEntityType identifies what kind of entity owns an app.
type OwnerEntityType int

const (
	OwnerEntityOrganization OwnerEntityType = 1
)

// RedirectURLs is the pair of post-login targets for the web login flow.
type RedirectURLs struct {
	Success string `json:"success"`
	Failed  string `json:"failed"`
}

// WebConfig is the validated web login configuration of an app. Instances
// only exist after Validate has passed, so downstream code never re-inspects
// a loosely-typed config object.
type WebConfig struct {
	RedirectURLs     RedirectURLs `json:"redirect_urls"`
	PriorityCountry  []string     `json:"priority_country,omitempty"`
	PrivacyPolicyURL string       `json:"privacy_policy_url,omitempty"`
}

// Validate checks the config shape. Redirect URLs are untrusted input until
// this passes; the web login flow must not run against an invalid config.
func (c *WebConfig) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeConfigInvalid, "app web config is not set")
	}
	if err := validateAbsoluteURL(c.RedirectURLs.Success); err != nil {
		return dErrors.New(dErrors.CodeConfigInvalid, "invalid success redirect url").
			WithDetails(map[string]string{"redirect_urls.success": err.Error()})
	}
	if err := validateAbsoluteURL(c.RedirectURLs.Failed); err != nil {
		return dErrors.New(dErrors.CodeConfigInvalid, "invalid failed redirect url").
			WithDetails(map[string]string{"redirect_urls.failed": err.Error()})
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return dErrors.New(dErrors.CodeConfigInvalid, "url is required")
	}
	if !govalidator.IsRequestURL(raw) {
		return dErrors.New(dErrors.CodeConfigInvalid, "url must be absolute")
	}
	return nil
}

// App is the aggregate root for a registered partner application.
//
// Invariants:
//   - ExtID is globally unique and immutable once assigned
//   - Name is non-empty and at most 128 characters
//   - OwnerEntityType must be a known entity type
//   - Config must be schema-valid before any web login operation runs
type App struct {
	ID              uuid.UUID       `json:"id"`
	ExtID           string          `json:"ext_id"`
	OwnerEntityType OwnerEntityType `json:"owner_entity_type"`
	OwnerID         string          `json:"owner_id"`
	Name            string          `json:"name"`
	Status          AppStatus       `json:"status"`
	Config          *WebConfig      `json:"config,omitempty"`
	LogoFile        string          `json:"logo_file,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewApp constructs an App, validating invariants. New apps start unverified.
func NewApp(id uuid.UUID, extID string, ownerType OwnerEntityType, ownerID, name string, now time.Time) (*App, error) {
	if ownerType != OwnerEntityOrganization {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown owner entity type")
	}
	if ownerID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner id cannot be empty")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "app name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "app name must be 128 characters or less")
	}
	return &App{
		ID:              id,
		ExtID:           extID,
		OwnerEntityType: ownerType,
		OwnerID:         ownerID,
		Name:            name,
		Status:          AppStatusUnverified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// WebConfigValid reports whether the app can serve web login operations.
func (a *App) WebConfigValid() error {
	return a.Config.Validate()
}
