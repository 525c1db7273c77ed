package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

func raw(parts map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(parts))
	for key, value := range parts {
		encoded, _ := json.Marshal(value)
		out[key] = encoded
	}
	return out
}

func TestCredentialTypePrefix(t *testing.T) {
	assert.Equal(t, "SERVER_", CredentialTypeServer.Prefix())
	assert.Equal(t, "MOBILE_", CredentialTypeMobileSDK.Prefix())
	assert.Empty(t, CredentialType(9).Prefix())
	assert.False(t, CredentialType(9).IsValid())
}

func TestCredentialStatusToggled(t *testing.T) {
	assert.Equal(t, CredentialStatusInactive, CredentialStatusActive.Toggled())
	assert.Equal(t, CredentialStatusActive, CredentialStatusInactive.Toggled())
	assert.Equal(t, CredentialStatusActive, CredentialStatusActive.Toggled().Toggled())
}

func TestStatusStorageCodesRoundtrip(t *testing.T) {
	for _, status := range []CredentialStatus{CredentialStatusActive, CredentialStatusInactive} {
		assert.Equal(t, status, CredentialStatusFromCode(status.StorageCode()))
	}
	for _, status := range []AppStatus{AppStatusUnverified, AppStatusActive, AppStatusSuspended, AppStatusHidden} {
		assert.Equal(t, status, AppStatusFromCode(status.StorageCode()))
	}
	assert.Equal(t, AppStatusUnverified, AppStatusFromCode(99), "unknown codes degrade to unverified")
}

func TestParsePlatformOptions(t *testing.T) {
	t.Run("android", func(t *testing.T) {
		opts, err := ParsePlatformOptions(raw(map[string]any{
			"platform": "android",
			"android":  map[string]string{"packageId": "com.acme.app"},
		}))
		require.NoError(t, err)
		assert.Equal(t, PlatformOptions{Platform: "android", PackageID: "com.acme.app"}, opts)
	})

	t.Run("ios", func(t *testing.T) {
		opts, err := ParsePlatformOptions(raw(map[string]any{
			"platform": "ios",
			"ios":      map[string]string{"bundleId": "com.acme.ios"},
		}))
		require.NoError(t, err)
		assert.Equal(t, PlatformOptions{Platform: "ios", BundleID: "com.acme.ios"}, opts)
	})

	t.Run("missing platform", func(t *testing.T) {
		_, err := ParsePlatformOptions(raw(map[string]any{}))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("missing platform sub-object", func(t *testing.T) {
		_, err := ParsePlatformOptions(raw(map[string]any{"platform": "android"}))
		require.Error(t, err)

		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Details, "options.android")
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := ParsePlatformOptions(raw(map[string]any{
			"platform": "ios",
			"ios":      map[string]string{},
		}))
		require.Error(t, err)

		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Details, "options.ios.bundleId")
	})

	t.Run("unsupported platform", func(t *testing.T) {
		_, err := ParsePlatformOptions(raw(map[string]any{"platform": "web"}))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
