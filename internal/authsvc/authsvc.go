// Package authsvc implements the password hashing and session-cookie
// signing primitives behind spec.md §4.8. Grounded on the bcrypt idiom
// found across the retrieval pack (e.g. the seed-data hashPassword helper
// in the Jobber example) and on gorilla/securecookie for the signed
// session cookie the HTTP layer reads/writes.
package authsvc

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/gorilla/securecookie"
)

// bcryptCost mirrors the cost used across the pack's seed-data helpers.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword performs the constant-time bcrypt comparison spec.md
// §4.8 calls for.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// SessionCookieName is the signed session cookie key constant spec.md §6
// names explicitly.
const SessionCookieName = "ofdb-user"

// SessionCodec signs and verifies the session cookie's payload.
type SessionCodec struct {
	sc *securecookie.SecureCookie
}

// NewSessionCodec builds a codec from a hash key and block key (32 bytes
// each recommended); see securecookie.GenerateRandomKey for production key
// material.
func NewSessionCodec(hashKey, blockKey []byte) *SessionCodec {
	return &SessionCodec{sc: securecookie.New(hashKey, blockKey)}
}

// SessionValue is what gets signed into the cookie.
type SessionValue struct {
	UserEmail string
}

// Encode signs value into a cookie-safe string.
func (c *SessionCodec) Encode(value SessionValue) (string, error) {
	return c.sc.Encode(SessionCookieName, value)
}

// Decode verifies and extracts the signed cookie value.
func (c *SessionCodec) Decode(encoded string) (SessionValue, error) {
	var value SessionValue
	err := c.sc.Decode(SessionCookieName, encoded, &value)
	return value, err
}
