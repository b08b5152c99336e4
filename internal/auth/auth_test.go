package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/desertthunder/midias/internal/shared"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newCodec(secret string) (*SessionCodec, *clock) {
	c := &clock{t: time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)}
	return NewSessionCodec(secret).WithClock(c.now), c
}

func TestSessionCodec(t *testing.T) {
	t.Run("round trip before expiry", func(t *testing.T) {
		claims := []Claims{
			{UserID: 1, Role: models.RoleAdmin},
			{UserID: 987654321, Role: models.RoleUser},
			{},
		}
		for _, ttl := range []time.Duration{time.Second, time.Minute, 8 * time.Hour} {
			for _, want := range claims {
				codec, clk := newCodec("s3cret")
				token, err := codec.Sign(want, ttl)
				if err != nil {
					t.Fatalf("Sign() error = %v", err)
				}

				clk.t = clk.t.Add(ttl - time.Second)
				got, err := codec.Verify(token)
				if err != nil {
					t.Fatalf("Verify() before expiry error = %v (ttl %s)", err, ttl)
				}
				if got != want {
					t.Errorf("Verify() = %+v, want %+v", got, want)
				}

				clk.t = clk.t.Add(time.Second)
				if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidSession) {
					t.Errorf("Verify() at expiry should fail, got %v (ttl %s)", err, ttl)
				}
			}
		}
	})

	t.Run("rejects a non-positive ttl", func(t *testing.T) {
		codec, _ := newCodec("s3cret")
		if _, err := codec.Sign(Claims{UserID: 1}, 0); err == nil {
			t.Error("expected an error for a zero ttl")
		}
	})

	t.Run("any flipped character is rejected", func(t *testing.T) {
		codec, _ := newCodec("s3cret")
		token, err := codec.Sign(Claims{UserID: 7, Role: models.RoleUser}, time.Hour)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}

		for i := range token {
			replacement := byte('A')
			if token[i] == 'A' {
				replacement = 'B'
			}
			tampered := token[:i] + string(replacement) + token[i+1:]
			if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("tampered token at %d accepted", i)
			}
		}
	})

	t.Run("any flipped payload or mac byte is rejected", func(t *testing.T) {
		codec, _ := newCodec("s3cret")
		token, _ := codec.Sign(Claims{UserID: 7, Role: models.RoleUser}, time.Hour)
		raw, err := base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			t.Fatalf("token is not url-safe base64: %v", err)
		}

		for i := range raw {
			tampered := bytes.Clone(raw)
			tampered[i] ^= 0x01
			if _, err := codec.Verify(base64.RawURLEncoding.EncodeToString(tampered)); !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("token with byte %d flipped accepted", i)
			}
		}
	})

	t.Run("other secrets and garbage are rejected", func(t *testing.T) {
		codec, _ := newCodec("s3cret")
		other, _ := newCodec("different")
		token, _ := other.Sign(Claims{UserID: 1, Role: models.RoleAdmin}, time.Hour)

		for _, bad := range []string{token, "", "not base64!", "YQ", strings.Repeat("A", 200)} {
			if _, err := codec.Verify(bad); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Verify(%q) should fail, got %v", bad, err)
			}
		}
	})

	t.Run("signing is deterministic", func(t *testing.T) {
		codec, _ := newCodec("s3cret")
		a, _ := codec.Sign(Claims{UserID: 3, Role: models.RoleUser}, time.Hour)
		b, _ := codec.Sign(Claims{UserID: 3, Role: models.RoleUser}, time.Hour)
		if a != b {
			t.Error("same claims, clock and ttl should give the same token")
		}
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash should not be the secret")
	}

	if !VerifyPassword("hunter2", hash) {
		t.Error("expected the right secret to verify")
	}
	if VerifyPassword("hunter3", hash) {
		t.Error("expected the wrong secret to fail")
	}
	if VerifyPassword("hunter2", "not-a-bcrypt-hash") {
		t.Error("a malformed hash should verify as false")
	}

	if _, err := HashPassword(strings.Repeat("ç", 40)); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("an 80 byte secret should be a validation error, got %v", err)
	}

	a, _ := GenerateSecret(18)
	b, _ := GenerateSecret(18)
	if a == b || len(a) != 24 {
		t.Errorf("unexpected generated secrets %q %q", a, b)
	}
}

func setupStore(t *testing.T) *repositories.UserRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return repositories.NewUserRepository(db)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with a generated secret", func(t *testing.T) {
		store := setupStore(t)
		var buf bytes.Buffer

		if err := EnsureAdmin(ctx, store, " Admin ", "", shared.NewLogger(&buf)); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}

		creds, err := store.GetByUsername(ctx, "admin")
		if err != nil {
			t.Fatalf("admin should exist: %v", err)
		}
		if !creds.IsAdmin() {
			t.Errorf("expected admin role, got %s", creds.Role)
		}
		if !strings.Contains(buf.String(), "secret=") {
			t.Error("generated secret should be logged once")
		}
	})

	t.Run("creates with the override", func(t *testing.T) {
		store := setupStore(t)
		if err := EnsureAdmin(ctx, store, "admin", "override-1", shared.NewLogger(&bytes.Buffer{})); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}

		creds, _ := store.GetByUsername(ctx, "admin")
		if !VerifyPassword("override-1", creds.PasswordHash) {
			t.Error("admin secret should be the override")
		}
	})

	t.Run("keeps the secret without an override", func(t *testing.T) {
		store := setupStore(t)
		logger := shared.NewLogger(&bytes.Buffer{})
		EnsureAdmin(ctx, store, "admin", "first", logger)
		before, _ := store.GetByUsername(ctx, "admin")

		if err := EnsureAdmin(ctx, store, "admin", "", logger); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}

		after, _ := store.GetByUsername(ctx, "admin")
		if after.PasswordHash != before.PasswordHash {
			t.Error("secret should not change without an override")
		}
	})

	t.Run("rotates with an override", func(t *testing.T) {
		store := setupStore(t)
		logger := shared.NewLogger(&bytes.Buffer{})
		EnsureAdmin(ctx, store, "admin", "first", logger)

		if err := EnsureAdmin(ctx, store, "admin", "second", logger); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}

		creds, _ := store.GetByUsername(ctx, "admin")
		if !VerifyPassword("second", creds.PasswordHash) {
			t.Error("secret should be rotated to the override")
		}
	})

	t.Run("rejects an override bcrypt cannot hash", func(t *testing.T) {
		err := EnsureAdmin(ctx, setupStore(t), "admin", strings.Repeat("ç", 40), shared.NewLogger(&bytes.Buffer{}))
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("rejects an empty username", func(t *testing.T) {
		err := EnsureAdmin(ctx, setupStore(t), "  ", "", shared.NewLogger(&bytes.Buffer{}))
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
