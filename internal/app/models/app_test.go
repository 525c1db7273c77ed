package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

func TestNewApp(t *testing.T) {
	now := time.Now()

	t.Run("valid input starts unverified", func(t *testing.T) {
		app, err := NewApp(uuid.New(), "ACMEAPP000000001", OwnerEntityOrganization, "org-1", "Acme", now)
		require.NoError(t, err)
		assert.Equal(t, AppStatusUnverified, app.Status)
		assert.Equal(t, now, app.CreatedAt)
		assert.Equal(t, now, app.UpdatedAt)
	})

	cases := []struct {
		name      string
		ownerType OwnerEntityType
		ownerID   string
		appName   string
	}{
		{"unknown owner entity type", 9, "org-1", "Acme"},
		{"empty owner id", OwnerEntityOrganization, "", "Acme"},
		{"empty name", OwnerEntityOrganization, "org-1", ""},
		{"name too long", OwnerEntityOrganization, "org-1", strings.Repeat("x", 129)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewApp(uuid.New(), "ACMEAPP000000001", tc.ownerType, tc.ownerID, tc.appName, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestWebConfigValidate(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		var cfg *WebConfig
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigInvalid))
	})

	t.Run("relative success url", func(t *testing.T) {
		err := (&WebConfig{RedirectURLs: RedirectURLs{
			Success: "/relative",
			Failed:  "https://acme.example.com/f",
		}}).Validate()
		require.Error(t, err)

		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Details, "redirect_urls.success")
	})

	t.Run("missing failed url", func(t *testing.T) {
		err := (&WebConfig{RedirectURLs: RedirectURLs{
			Success: "https://acme.example.com/s",
		}}).Validate()
		require.Error(t, err)

		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Details, "redirect_urls.failed")
	})

	t.Run("valid config", func(t *testing.T) {
		err := (&WebConfig{RedirectURLs: RedirectURLs{
			Success: "https://acme.example.com/s",
			Failed:  "https://acme.example.com/f",
		}}).Validate()
		assert.NoError(t, err)
	})
}

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name           string
		in, normalized PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Skip: 0, Limit: 10}},
		{"negative skip clamps", PageRequest{Skip: -5, Limit: 20}, PageRequest{Skip: 0, Limit: 20}},
		{"limit capped", PageRequest{Limit: 1000}, PageRequest{Limit: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Normalize()
			assert.Equal(t, tc.normalized, tc.in)
		})
	}
}
