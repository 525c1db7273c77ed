// Package randid generates fixed-alphabet random identifiers from a
// cryptographically strong source. Predictable client ids or secrets would
// compromise the whole credential trust chain, so everything here reads from
// crypto/rand and uses rejection sampling to avoid modulo bias.
package randid

import (
	"crypto/rand"
	"fmt"
)

const (
	upperAlphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Extended alphabet for client secrets. Matches the unreserved URI
	// character set so secrets survive query strings without escaping.
	secretAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_.~"
)

// AppExtID returns a 16-character external app identifier.
func AppExtID() (string, error) {
	return generate(upperAlphanum, 16)
}

// ClientID returns the 22-character random part of a credential client id.
// The credential type prefix is added by the caller.
func ClientID() (string, error) {
	return generate(upperAlphanum, 22)
}

// ClientSecret returns a 64-character high-entropy credential secret.
func ClientSecret() (string, error) {
	return generate(secretAlphabet, 64)
}

// SessionID returns a 22-character web login session identifier.
func SessionID() (string, error) {
	return generate(upperAlphanum, 22)
}

// DevUserExtID returns a 24-character sandbox dev user identifier.
func DevUserExtID() (string, error) {
	return generate(upperAlphanum, 24)
}

func generate(alphabet string, length int) (string, error) {
	// Largest multiple of len(alphabet) below 256; bytes at or above it are
	// rejected so every alphabet character is equally likely.
	limit := byte(256 - (256 % len(alphabet)))

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("could not read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
