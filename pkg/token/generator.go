package token

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// SessionPrefix marks session tokens so they are recognisable in logs.
const SessionPrefix = "qrs_"

// DefaultLength is the number of random bytes in a session token.
const DefaultLength = 32

// NewSession returns a fresh session token and the hash to store for it.
func NewSession() (plaintext, hash string, err error) {
	body, err := GenerateWithLength(DefaultLength)
	if err != nil {
		return "", "", err
	}
	plaintext = SessionPrefix + body
	return plaintext, Hash(plaintext), nil
}

// IsSessionToken reports whether s has the session token shape.
func IsSessionToken(s string) bool {
	body, ok := strings.CutPrefix(s, SessionPrefix)
	if !ok || body == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(body)
	return err == nil
}

// GenerateWithLength returns length random bytes, base64url encoded.
func GenerateWithLength(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
