package auth

import (
	"errors"
	"testing"

	"github.com/square/go-jose/v3"
)

func encryptSession(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	key, err := DeriveKey(secret, "")
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: key},
		nil,
	)
	if err != nil {
		t.Fatalf("new encrypter: %v", err)
	}
	obj, err := enc.Encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	token, err := obj.CompactSerialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return token
}

func TestResolveSubject(t *testing.T) {
	const secret = "test-secret"
	r, err := NewResolver(secret)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	token := encryptSession(t, secret, []byte(`{"sub":"user-123","name":"Ada"}`))
	sub, err := r.ResolveSubject(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("sub = %q, want user-123", sub)
	}
}

func TestResolveSubject_WrongSecret(t *testing.T) {
	r, err := NewResolver("right-secret")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	token := encryptSession(t, "wrong-secret", []byte(`{"sub":"user-123"}`))
	if _, err := r.ResolveSubject(token); err == nil {
		t.Fatal("expected decryption failure with mismatched secret")
	}
}

func TestResolveSubject_Garbage(t *testing.T) {
	r, err := NewResolver("secret")
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if _, err := r.ResolveSubject("not-a-jwe"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestResolveSubject_MissingSub(t *testing.T) {
	const secret = "test-secret"
	r, err := NewResolver(secret)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	token := encryptSession(t, secret, []byte(`{"name":"Ada"}`))
	if _, err := r.ResolveSubject(token); !errors.Is(err, ErrNoSubject) {
		t.Fatalf("err = %v, want ErrNoSubject", err)
	}
}

func TestNewResolver_EmptySecret(t *testing.T) {
	if _, err := NewResolver(""); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("err = %v, want ErrNoSecret", err)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a, err := DeriveKey("secret", "")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveKey("secret", "")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("derivation is not deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	salted, err := DeriveKey("secret", "cookie-name")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if string(salted) == string(a) {
		t.Fatal("salt did not change the derived key")
	}
}
