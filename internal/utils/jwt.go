// Package utils provides helpers for token creation, verification and
// password hashing.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTypeAccess discriminates access tokens from any other token minted
// with the same secret. Verification rejects tokens whose type claim
// differs, so a refresh-purposed JWT can never authenticate an API call.
const tokenTypeAccess = "access"

// ErrInvalidAccessToken is returned for any unusable access token: bad
// signature, wrong signing method, expired, or wrong type claim. Callers get
// no further detail.
var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// AccessClaims carries the identity extracted from a verified access token.
type AccessClaims struct {
	UserID uint64
	Role   string
}

// NewAccessToken builds and signs an HS256 JWT for a user. The claims are
// subject (sub), role, type, expiration (exp) and issued at (iat). now must
// be a UTC clock; every expiry in the system derives from the same source.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration, now time.Time) (AccessToken, error) {
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"type": tokenTypeAccess,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a signed access token. It rejects
// tokens signed with a non-HMAC method, tokens past their exp, and tokens
// whose type claim is not "access". All rejections surface as
// ErrInvalidAccessToken.
func VerifyAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAccessToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrInvalidAccessToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidAccessToken
	}
	if typ, _ := claims["type"].(string); typ != tokenTypeAccess {
		return AccessClaims{}, ErrInvalidAccessToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return AccessClaims{}, ErrInvalidAccessToken
	}
	role, _ := claims["role"].(string)
	return AccessClaims{UserID: uint64(sub), Role: role}, nil
}
