package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignIsDeterministic(t *testing.T) {
	s := New("test-salt")

	first := s.Sign("SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp")
	second := s.Sign("SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "hex-encoded sha256")
}

func TestSignDependsOnEveryInput(t *testing.T) {
	s := New("test-salt")
	base := s.Sign("SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp")

	assert.NotEqual(t, base, s.Sign("SESSION2", "SERVER_CLIENT1", "secret", "request-login-otp"))
	assert.NotEqual(t, base, s.Sign("SESSION1", "SERVER_CLIENT2", "secret", "request-login-otp"))
	assert.NotEqual(t, base, s.Sign("SESSION1", "SERVER_CLIENT1", "rotated", "request-login-otp"))
	assert.NotEqual(t, base, s.Sign("SESSION1", "SERVER_CLIENT1", "secret", "console-session"))
	assert.NotEqual(t, base, New("other-salt").Sign("SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp"))
}

func TestMatches(t *testing.T) {
	s := New("test-salt")
	sig := s.Sign("SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp")

	assert.True(t, s.Matches(sig, "SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp"))
	assert.False(t, s.Matches(sig, "SESSION1", "SERVER_CLIENT1", "rotated", "request-login-otp"))
	assert.False(t, s.Matches("not-a-signature", "SESSION1", "SERVER_CLIENT1", "secret", "request-login-otp"))
}
