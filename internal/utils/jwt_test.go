package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	tok, err := NewAccessToken("secret", 42, "manager", 15*time.Minute, now)
	if err != nil {
		t.Fatalf("NewAccessToken returned error: %v", err)
	}
	if got, want := tok.Exp, now.Add(15*time.Minute); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}

	claims, err := VerifyAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != "manager" {
		t.Fatalf("role = %q, want manager", claims.Role)
	}
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, "employee", time.Minute, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewAccessToken returned error: %v", err)
	}
	if _, err := VerifyAccessToken("other-secret", tok.Token); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	tok, err := NewAccessToken("secret", 1, "employee", time.Minute, past)
	if err != nil {
		t.Fatalf("NewAccessToken returned error: %v", err)
	}
	if _, err := VerifyAccessToken("secret", tok.Token); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for expired token, got %v", err)
	}
}

func TestVerifyAccessTokenRejectsWrongType(t *testing.T) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": "employee",
		"type": "refresh",
		"exp":  now.Add(time.Hour).Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken("secret", signed); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for non-access type, got %v", err)
	}
}

func TestVerifyAccessTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken("secret", unsigned); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for alg=none token, got %v", err)
	}
}

func TestVerifyAccessTokenGarbage(t *testing.T) {
	if _, err := VerifyAccessToken("secret", "not.a.jwt"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
}
