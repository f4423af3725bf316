package utils // package utils provides helpers for admin token creation and verification

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AdminToken represents a signed JWT admin token along with its expiry.
// Tokens are stateless: they stay valid until Exp with no server-side
// session, so logout is a client-side discard. That is an accepted
// limitation of the design, not a bug.
type AdminToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAdminToken builds and signs an HS256 JWT for the admin panel. It
// takes the signing secret and a TTL in hours and returns an AdminToken
// with the signed string and its expiration. The claims are the token
// type ("admin"), expiration (exp) and issued-at (iat).
func NewAdminToken(secret string, ttlHours int) (AdminToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"type": "admin",
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AdminToken{}, err
	}
	return AdminToken{Token: signed, Exp: exp}, nil
}

// VerifyAdminToken parses and validates an admin JWT. It returns false
// for any token that is malformed, signed with the wrong method or
// secret, expired, or whose type claim is not "admin".
func VerifyAdminToken(secret, raw string) bool {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	return claims["type"] == "admin"
}
