package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/internal/app/randid"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// An owner may register at most this many sandbox dev users.
const maxDevUsersPerOwner = 2

// ParsedPhone is the normalized result of phone number parsing. Parsing
// itself is an external collaborator; the service only consumes the result.
type ParsedPhone struct {
	Number             string
	CountryCallingCode string
}

// PhoneParser normalizes a raw country code + number pair.
type PhoneParser interface {
	Parse(countryCode, phoneNo string) (ParsedPhone, error)
}

// PhoneHasher derives the keyed hash identifying a dev user's phone number.
// Only the hash and a masked rendering are ever stored.
type PhoneHasher struct {
	salt1  string
	salt2  string
	secret string
}

// NewPhoneHasher constructs a PhoneHasher from configured salts and secret.
func NewPhoneHasher(salt1, salt2, secret string) *PhoneHasher {
	return &PhoneHasher{salt1: salt1, salt2: salt2, secret: secret}
}

// Hash computes an HMAC-SHA512 over the owner context and phone number.
func (h *PhoneHasher) Hash(ownerType models.OwnerEntityType, ownerID, phoneNo string) string {
	raw := fmt.Sprintf("%s%d%s%s%s", h.salt2, ownerType, phoneNo, ownerID, h.salt1)
	mac := hmac.New(sha512.New, []byte(h.secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// RegisterDevUserRequest carries console input for sandbox registration.
type RegisterDevUserRequest struct {
	OwnerEntityType models.OwnerEntityType `json:"owner_entity_type_id"`
	OwnerID         string                 `json:"owner_id"`
	CountryCode     string                 `json:"country_code"`
	PhoneNo         string                 `json:"phone_no"`
}

// RegisterDevUser registers a sandbox dev user under an owner. Fails with
// LIMIT_REACHED at the per-owner ceiling and CONFLICT when the phone number
// is already registered for the owner.
func (s *Service) RegisterDevUser(ctx context.Context, parser PhoneParser, req *RegisterDevUserRequest) error {
	if s.devUsers == nil || s.phoneHasher == nil {
		return dErrors.New(dErrors.CodeInternal, "sandbox dev users are not configured")
	}

	count, err := s.devUsers.CountByOwner(ctx, req.OwnerEntityType, req.OwnerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count dev users")
	}
	if count >= maxDevUsersPerOwner {
		return dErrors.New(dErrors.CodeLimitReached, "registered dev user limit reached")
	}

	phone, err := parser.Parse(req.CountryCode, req.PhoneNo)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid phone number")
	}

	hashID := s.phoneHasher.Hash(req.OwnerEntityType, req.OwnerID, phone.Number)
	if _, err := s.devUsers.FindByHashID(ctx, hashID); err == nil {
		return dErrors.New(dErrors.CodeConflict, "phone number already registered as dev user")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check dev user")
	}

	extID, err := randid.DevUserExtID()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate dev user ext id")
	}

	user := &models.OrgDevUser{
		ID:              uuid.New(),
		ExtID:           extID,
		OwnerEntityType: req.OwnerEntityType,
		OwnerID:         req.OwnerID,
		HashID:          hashID,
		PhoneNoMasked:   maskPhone(phone),
		CreatedAt:       time.Now(),
	}
	if err := s.devUsers.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "phone number already registered as dev user")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create dev user")
	}

	s.logEvent(ctx, "devuser.registered", "ext_id", user.ExtID, "owner_id", req.OwnerID)
	return nil
}

// DevUserList is a paginated sandbox dev user listing.
type DevUserList struct {
	DevUsers []*models.OrgDevUser `json:"dev_users"`
	Metadata models.PageMetadata  `json:"_metadata"`
}

// ListDevUsers returns the owner's sandbox dev users.
func (s *Service) ListDevUsers(ctx context.Context, ownerType models.OwnerEntityType, ownerID string, page models.PageRequest) (*DevUserList, error) {
	if s.devUsers == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "sandbox dev users are not configured")
	}
	page.Normalize()
	users, count, err := s.devUsers.ListByOwner(ctx, ownerType, ownerID, page.Skip, page.Limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list dev users")
	}
	return &DevUserList{
		DevUsers: users,
		Metadata: models.PageMetadata{Limit: page.Limit, Skip: page.Skip, Count: count},
	}, nil
}

// DeleteDevUser removes a sandbox dev user by external id.
func (s *Service) DeleteDevUser(ctx context.Context, extID string) error {
	if s.devUsers == nil {
		return dErrors.New(dErrors.CodeInternal, "sandbox dev users are not configured")
	}
	if err := s.devUsers.Delete(ctx, extID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "dev user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete dev user")
	}
	s.logEvent(ctx, "devuser.deleted", "ext_id", extID)
	return nil
}

// maskPhone renders "+CC" followed by Xs with the last three digits visible.
func maskPhone(phone ParsedPhone) string {
	visible := 3
	maskedLen := len(phone.Number) - visible - len(phone.CountryCallingCode)
	if maskedLen < 0 {
		maskedLen = 0
	}
	tail := phone.Number
	if len(tail) > visible {
		tail = tail[len(tail)-visible:]
	}
	return "+" + phone.CountryCallingCode + strings.Repeat("X", maskedLen) + tail
}
