package models

import (
	"time"

	"github.com/google/uuid"
)

// OrgDevUser is a sandbox development user registered by an app owner for
// partner testing. Only a masked phone number and a keyed hash of the real
// number are stored.
type OrgDevUser struct {
	ID              uuid.UUID       `json:"id"`
	ExtID           string          `json:"ext_id"`
	OwnerEntityType OwnerEntityType `json:"owner_entity_type"`
	OwnerID         string          `json:"owner_id"`
	HashID          string          `json:"-"`
	PhoneNoMasked   string          `json:"phone_no_masked"`
	CreatedAt       time.Time       `json:"created_at"`
}
