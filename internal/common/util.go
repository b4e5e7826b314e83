package common

import (
	"crypto/rand"
	"encoding/hex"
	"net/mail"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string, so the final string length will be
// twice the size. Bearer tokens are produced with size=32, which yields
// 256 bits of entropy.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// NormalizeEmail lowercases and trims an email address. Uniqueness checks
// and lookups always operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the address is syntactically well-formed.
// Returns ErrorInvalidEmail otherwise.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrorInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrorInvalidEmail
	}
	// Reject the "Name <addr>" form, only a bare address is acceptable.
	if addr.Address != email {
		return ErrorInvalidEmail
	}
	return nil
}
