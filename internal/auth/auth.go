// Package auth resolves caller identity from the session token the web app
// issues. Resolution is best-effort: a missing or undecryptable token just
// means the caller connects as a guest.
package auth

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/square/go-jose/v3"
	"golang.org/x/crypto/hkdf"
)

// SessionCookie is the cookie name the web app stores its JWE session
// token under.
const SessionCookie = "next-auth.session-token"

var (
	ErrNoSecret  = errors.New("auth secret is empty")
	ErrNoSubject = errors.New("session token has no subject")
)

// Resolver decrypts JWE session tokens with a key derived from the secret
// shared with the web app.
type Resolver struct {
	key []byte
}

func NewResolver(secret string) (*Resolver, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	key, err := DeriveKey(secret, "")
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	return &Resolver{key: key}, nil
}

// DeriveKey expands the shared secret into the 32-byte encryption key via
// HKDF-SHA256, matching the web app's derivation.
func DeriveKey(secret, salt string) ([]byte, error) {
	info := "NextAuth.js Generated Encryption Key"
	if salt != "" {
		info += fmt.Sprintf(" (%s)", salt)
	}

	kdf := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(info))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ResolveSubject decrypts the token and returns its `sub` claim.
func (r *Resolver) ResolveSubject(token string) (string, error) {
	object, err := jose.ParseEncrypted(token)
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	plaintext, err := object.Decrypt(r.key)
	if err != nil {
		return "", fmt.Errorf("decrypt session token: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return "", fmt.Errorf("unmarshal session payload: %w", err)
	}

	sub, ok := payload["sub"].(string)
	if !ok || sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}
