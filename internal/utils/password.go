package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CheckAdminPassword compares a submitted password against the
// configured credential. When a bcrypt hash is configured it takes
// precedence; otherwise the plain password is compared in constant
// time.
func CheckAdminPassword(plain, hash, submitted string) bool {
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(submitted)) == nil
	}
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(submitted)) == 1
}
