package models

import (
	"encoding/json"
	"strings"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// CreateAppRequest carries console input for app registration.
type CreateAppRequest struct {
	OwnerEntityType OwnerEntityType `json:"owner_entity_type_id"`
	OwnerID         string          `json:"owner_id"`
	Name            string          `json:"name"`
}

func (r *CreateAppRequest) Normalize() {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateAppRequest) Validate() error {
	if r.OwnerEntityType != OwnerEntityOrganization {
		return dErrors.New(dErrors.CodeValidation, "unknown owner entity type")
	}
	if r.OwnerID == "" {
		return dErrors.New(dErrors.CodeValidation, "owner_id is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// CreateCredentialRequest carries console input for credential creation.
// Environment is deliberately permissive: anything outside the two valid
// values falls back to development rather than failing. Options is kept raw
// until the credential type is known; server credentials ignore it entirely.
type CreateCredentialRequest struct {
	Environment Environment                `json:"environment_id"`
	Type        CredentialType             `json:"credential_type_id"`
	Name        string                     `json:"name"`
	Options     map[string]json.RawMessage `json:"options"`
}

func (r *CreateCredentialRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if !r.Environment.IsValid() {
		r.Environment = EnvironmentDevelopment
	}
}

func (r *CreateCredentialRequest) Validate() error {
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid credential type")
	}
	return nil
}

// PageRequest is shared skip/limit pagination input.
type PageRequest struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Normalize clamps pagination values to console defaults.
func (p *PageRequest) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// PageMetadata echoes pagination values plus the total row count.
type PageMetadata struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
	Count int `json:"count"`
}
