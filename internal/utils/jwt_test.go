package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	tok, err := NewAdminToken("secret", 24)
	if err != nil {
		t.Fatalf("NewAdminToken: %v", err)
	}
	if !VerifyAdminToken("secret", tok.Token) {
		t.Error("freshly issued token must verify")
	}
	if VerifyAdminToken("other-secret", tok.Token) {
		t.Error("token must not verify with the wrong secret")
	}
	if until := time.Until(tok.Exp); until < 23*time.Hour {
		t.Errorf("expiry too close: %s", until)
	}
}

func TestVerifyAdminTokenRejectsGarbage(t *testing.T) {
	if VerifyAdminToken("secret", "not-a-jwt") {
		t.Error("garbage token must not verify")
	}
	if VerifyAdminToken("secret", "") {
		t.Error("empty token must not verify")
	}
}

func TestVerifyAdminTokenRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"type": "admin",
		"exp":  time.Now().UTC().Add(-time.Hour).Unix(),
		"iat":  time.Now().UTC().Add(-2 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if VerifyAdminToken("secret", signed) {
		t.Error("expired token must not verify")
	}
}

func TestVerifyAdminTokenRequiresAdminType(t *testing.T) {
	claims := jwt.MapClaims{
		"type": "customer",
		"exp":  time.Now().UTC().Add(time.Hour).Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if VerifyAdminToken("secret", signed) {
		t.Error("non-admin token must not verify")
	}
}

func TestCheckAdminPassword(t *testing.T) {
	if !CheckAdminPassword("hunter2", "", "hunter2") {
		t.Error("matching plain password must pass")
	}
	if CheckAdminPassword("hunter2", "", "wrong") {
		t.Error("wrong password must fail")
	}
	if CheckAdminPassword("", "", "") {
		t.Error("empty configuration must reject everything")
	}
}

func TestCheckAdminPasswordHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !CheckAdminPassword("", string(hash), "hunter2") {
		t.Error("matching password must pass against the hash")
	}
	if CheckAdminPassword("", string(hash), "wrong") {
		t.Error("wrong password must fail against the hash")
	}
	// A configured hash wins even when the plain password would match.
	if CheckAdminPassword("plaintext", string(hash), "plaintext") {
		t.Error("plain comparison must be skipped when a hash is set")
	}
}
