package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// CredentialType distinguishes server API credentials from mobile SDK ones.
type CredentialType int

const (
	CredentialTypeServer    CredentialType = 1
	CredentialTypeMobileSDK CredentialType = 2
)

// IsValid reports whether the type is one of the supported credential types.
func (t CredentialType) IsValid() bool {
	return t == CredentialTypeServer || t == CredentialTypeMobileSDK
}

// Prefix returns the client id prefix that deterministically encodes the
// credential type.
func (t CredentialType) Prefix() string {
	switch t {
	case CredentialTypeServer:
		return "SERVER_"
	case CredentialTypeMobileSDK:
		return "MOBILE_"
	default:
		return ""
	}
}

// Label returns the human-readable credential type name used in default
// credential names.
func (t CredentialType) Label() string {
	switch t {
	case CredentialTypeServer:
		return "Server Credential"
	case CredentialTypeMobileSDK:
		return "Mobile Credential"
	default:
		return ""
	}
}

// Environment scopes a credential to production or development.
type Environment int

const (
	EnvironmentProduction  Environment = 1
	EnvironmentDevelopment Environment = 2
)

func (e Environment) IsValid() bool {
	return e == EnvironmentProduction || e == EnvironmentDevelopment
}

func (e Environment) Label() string {
	switch e {
	case EnvironmentProduction:
		return "Production"
	case EnvironmentDevelopment:
		return "Development"
	default:
		return ""
	}
}

// CredentialStatus is the credential state machine: active/inactive only.
type CredentialStatus string

const (
	CredentialStatusActive   CredentialStatus = "active"
	CredentialStatusInactive CredentialStatus = "inactive"
)

var credentialStatusCodes = map[CredentialStatus]int{
	CredentialStatusActive:   1,
	CredentialStatusInactive: 2,
}

// StorageCode returns the integer code persisted for the status.
func (s CredentialStatus) StorageCode() int {
	return credentialStatusCodes[s]
}

// CredentialStatusFromCode maps a stored integer back to the enum.
func CredentialStatusFromCode(code int) CredentialStatus {
	if code == credentialStatusCodes[CredentialStatusInactive] {
		return CredentialStatusInactive
	}
	return CredentialStatusActive
}

// Toggled returns the opposite status. The state machine has no other
// transitions.
func (s CredentialStatus) Toggled() CredentialStatus {
	if s == CredentialStatusInactive {
		return CredentialStatusActive
	}
	return CredentialStatusInactive
}

// Platform slugs for mobile SDK credentials.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// PlatformOptions is the closed variant of platform-specific credential
// options: empty for server credentials, android{packageId} or ios{bundleId}
// for mobile SDK credentials. No other shape can reach storage.
type PlatformOptions struct {
	Platform  string `json:"platform,omitempty"`
	PackageID string `json:"packageId,omitempty"`
	BundleID  string `json:"bundleId,omitempty"`
}

// IsZero reports whether the options are the empty server-credential shape.
func (o PlatformOptions) IsZero() bool {
	return o == PlatformOptions{}
}

// ParsePlatformOptions validates raw mobile SDK options input and returns the
// exact persisted shape. Extra input fields do not survive; a mismatch fails
// with a field-detailed validation error.
func ParsePlatformOptions(raw map[string]json.RawMessage) (PlatformOptions, error) {
	platformRaw, ok := raw["platform"]
	if !ok {
		return PlatformOptions{}, dErrors.New(dErrors.CodeValidation, "platform is required").
			WithDetails(map[string]string{"options.platform": "required"})
	}
	var platform string
	if err := json.Unmarshal(platformRaw, &platform); err != nil || platform == "" {
		return PlatformOptions{}, dErrors.New(dErrors.CodeValidation, "platform is required").
			WithDetails(map[string]string{"options.platform": "required"})
	}

	switch platform {
	case PlatformAndroid:
		packageID, err := platformField(raw, platform, "packageId")
		if err != nil {
			return PlatformOptions{}, err
		}
		return PlatformOptions{Platform: PlatformAndroid, PackageID: packageID}, nil
	case PlatformIOS:
		bundleID, err := platformField(raw, platform, "bundleId")
		if err != nil {
			return PlatformOptions{}, err
		}
		return PlatformOptions{Platform: PlatformIOS, BundleID: bundleID}, nil
	default:
		return PlatformOptions{}, dErrors.Newf(dErrors.CodeValidation, "unsupported platform %q", platform).
			WithDetails(map[string]string{"options.platform": "must be android or ios"})
	}
}

// platformField extracts the required field from the platform sub-object,
// e.g. options.android.packageId.
func platformField(raw map[string]json.RawMessage, platform, field string) (string, error) {
	detailKey := "options." + platform + "." + field

	subRaw, ok := raw[platform]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "%s options are required", platform).
			WithDetails(map[string]string{"options." + platform: "required"})
	}
	var sub map[string]string
	if err := json.Unmarshal(subRaw, &sub); err != nil {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid %s options", platform).
			WithDetails(map[string]string{"options." + platform: "must be an object"})
	}
	value := sub[field]
	if value == "" {
		return "", dErrors.Newf(dErrors.CodeValidation, "%s is required for %s", field, platform).
			WithDetails(map[string]string{detailKey: "required"})
	}
	return value, nil
}

// Credential is an app-scoped client id/secret pair.
//
// Invariants:
//   - ClientID is globally unique; its prefix encodes the credential type
//   - A credential belongs to exactly one app; deleting the app cascades
//   - Status transitions: active/inactive only, initial state active
type Credential struct {
	ID           uuid.UUID        `json:"id"`
	AppID        uuid.UUID        `json:"app_id"`
	Environment  Environment      `json:"environment_id"`
	Type         CredentialType   `json:"credential_type_id"`
	Name         string           `json:"name"`
	ClientID     string           `json:"client_id"`
	ClientSecret string           `json:"client_secret"`
	Options      PlatformOptions  `json:"options"`
	Status       CredentialStatus `json:"credential_status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (c *Credential) IsActive() bool {
	return c.Status == CredentialStatusActive
}
