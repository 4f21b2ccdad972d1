package entities

import (
	"regexp"
	"strings"

	"civicmap/internal/ids"
)

// Role is the authorization level assigned to a User (spec.md §3).
// Ordering matters: Guest < User < Scout < Admin.
type Role int

const (
	Guest Role = iota
	User
	Scout
	Admin
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case User:
		return "user"
	case Scout:
		return "scout"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Account is a registered user (named Account to avoid colliding with the
// Role value User; spec.md calls it "User").
type Account struct {
	ID              ids.ID
	Email           string
	Username        string
	PasswordHash    string
	EmailConfirmed  bool
	Role            Role
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// UsernameFromEmail derives a username the way spec.md §3 describes:
// stripping non-alphanumerics from the whole address and lowercasing, so
// "fooo@bar.tld" becomes "fooobartld", not just the local part.
func UsernameFromEmail(email string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(email, ""))
}

// NormalizeEmail lowercases an email for case-insensitive uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserToken binds a single-use nonce to a user for email confirmation and
// password-reset flows (spec.md §3 "UserToken").
type UserToken struct {
	UserID    ids.ID
	Email     string
	Nonce     string
	ExpiresAt ids.Timestamp
}

// Expired reports whether the token can no longer be consumed.
func (t UserToken) Expired(now ids.Timestamp) bool {
	return !now.Before(t.ExpiresAt)
}
