package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobtrack/internal/database/dbtest"
	"jobtrack/internal/store"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	// cost 取 4 以加快测试
	svc, err := NewAuthService(testSecret, "HS256", 30*time.Minute, 4)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestNewAuthService_RejectsNonHMAC(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "ES256", ""} {
		if _, err := NewAuthService(testSecret, alg, time.Minute, 4); err == nil {
			t.Fatalf("expected %q to be rejected", alg)
		}
	}
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	svc := newTestAuthService(t)

	hash, err := svc.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal plaintext")
	}
	if !svc.CheckPasswordHash("password123", hash) {
		t.Fatal("expected original password to verify")
	}
	for _, other := range []string{"", "password124", "PASSWORD123", "password123 "} {
		if svc.CheckPasswordHash(other, hash) {
			t.Fatalf("expected %q not to verify", other)
		}
	}

	again, err := svc.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash again: %v", err)
	}
	if again == hash {
		t.Fatal("expected salted hashes to differ")
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuthService(t)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, expiresAt, err := svc.IssueToken("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(fixed.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Fatalf("expected subject a@x.com, got %q", claims.Subject)
	}

	svc.now = func() time.Time { return fixed.Add(31 * time.Minute) }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc := newTestAuthService(t)

	token, _, err := svc.IssueToken("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewAuthService("another-secret", "HS256", time.Minute, 4)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign signature to fail, got %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := svc.ValidateToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected tampered token to fail, got %v", err)
	}

	if _, err := svc.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected empty token to fail, got %v", err)
	}
}

func TestValidateToken_RejectsOtherAlgorithm(t *testing.T) {
	svc := newTestAuthService(t)

	claims := jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected HS512 token to fail under HS256, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.ValidateToken(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected unsigned token to fail, got %v", err)
	}
}

func TestValidateToken_RequiresExpiry(t *testing.T) {
	svc := newTestAuthService(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "a@x.com"}).
		SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token without exp to fail, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	db := dbtest.Open(t)
	ctx := context.Background()

	hash, err := svc.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := store.CreateUser(ctx, db, "a@x.com", hash); err != nil {
		t.Fatalf("create user: %v", err)
	}

	user, err := svc.Authenticate(ctx, db, "a@x.com", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected user %q", user.Email)
	}

	if _, err := svc.Authenticate(ctx, db, "a@x.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, db, "nobody@x.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
