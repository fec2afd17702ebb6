package auth

import (
	"errors"
	"testing"
	"time"

	"eterno-store/internal/apperr"
	"eterno-store/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken(models.User{ID: 7, Username: "maria", Role: models.RoleCustomer})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	p := claims.Principal()
	if p.UserID != 7 || p.Username != "maria" || p.Role != models.RoleCustomer {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken(models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewManager("other-secret", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected signature failure")
	}

	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.ValidateToken(token); err == nil {
		t.Fatalf("expected expiry failure")
	}
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewManager("test-secret", time.Hour).ValidateToken(unsigned); err == nil {
		t.Fatalf("expected alg none to be rejected")
	}
}

func TestPrincipalRequireRole(t *testing.T) {
	var anon Principal
	if err := anon.RequireAdmin(); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous, got %v", err)
	}

	customer := Principal{UserID: 2, Role: models.RoleCustomer}
	if err := customer.RequireAdmin(); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for customer, got %v", err)
	}
	if err := customer.RequireCustomer(); err != nil {
		t.Fatalf("customer should pass customer guard: %v", err)
	}

	admin := Principal{UserID: 1, Role: models.RoleAdmin}
	if err := admin.RequireAdmin(); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if !admin.IsAdmin() || customer.IsAdmin() {
		t.Fatalf("IsAdmin mismatch")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}
