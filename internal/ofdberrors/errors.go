// Package ofdberrors implements the tagged error taxonomy from spec.md §4.9:
// Parameter errors, Repo errors, and opaque Internal errors. HTTP adapters
// map these to status codes per spec.md §7; nothing in this package knows
// about HTTP.
package ofdberrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParameterKind enumerates the caller-input error variants.
type ParameterKind int

const (
	InvalidPosition ParameterKind = iota
	Bbox
	Email
	Phone
	Url
	Contact
	RegistrationType
	CreatorEmail
	InvalidOpeningHours
	TokenInvalid
	Credentials
	Unauthorized
	Forbidden
	UserExists
	EmailNotConfirmed
	OwnedTag
)

func (k ParameterKind) String() string {
	switch k {
	case InvalidPosition:
		return "InvalidPosition"
	case Bbox:
		return "Bbox"
	case Email:
		return "Email"
	case Phone:
		return "Phone"
	case Url:
		return "Url"
	case Contact:
		return "Contact"
	case RegistrationType:
		return "RegistrationType"
	case CreatorEmail:
		return "CreatorEmail"
	case InvalidOpeningHours:
		return "InvalidOpeningHours"
	case TokenInvalid:
		return "TokenInvalid"
	case Credentials:
		return "Credentials"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case UserExists:
		return "UserExists"
	case EmailNotConfirmed:
		return "EmailNotConfirmed"
	case OwnedTag:
		return "OwnedTag"
	default:
		return "Unknown"
	}
}

// ParameterError signals a rejected caller input.
type ParameterError struct {
	Kind ParameterKind
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter: %s", e.Kind)
}

// NewParameter builds a ParameterError of the given kind.
func NewParameter(kind ParameterKind) error {
	return &ParameterError{Kind: kind}
}

// AsParameter extracts a *ParameterError from err, if any.
func AsParameter(err error) (*ParameterError, bool) {
	var pe *ParameterError
	ok := errors.As(err, &pe)
	return pe, ok
}

// RepoKind enumerates repository-layer error variants.
type RepoKind int

const (
	NotFound RepoKind = iota
	InvalidVersion
	RepoOther
)

// RepoError signals a repository-layer failure.
type RepoError struct {
	Kind  RepoKind
	Cause error
}

func (e *RepoError) Error() string {
	switch e.Kind {
	case NotFound:
		return "repo: not found"
	case InvalidVersion:
		return "repo: invalid version"
	default:
		if e.Cause != nil {
			return fmt.Sprintf("repo: %v", e.Cause)
		}
		return "repo: other"
	}
}

func (e *RepoError) Unwrap() error {
	return e.Cause
}

// ErrNotFound is the sentinel comparable with errors.Is.
var ErrNotFound = &RepoError{Kind: NotFound}

// ErrInvalidVersion is the sentinel comparable with errors.Is.
var ErrInvalidVersion = &RepoError{Kind: InvalidVersion}

func (e *RepoError) Is(target error) bool {
	t, ok := target.(*RepoError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewNotFound builds the repo-not-found error.
func NewNotFound() error {
	return &RepoError{Kind: NotFound}
}

// NewInvalidVersion builds the optimistic-locking-conflict error.
func NewInvalidVersion() error {
	return &RepoError{Kind: InvalidVersion}
}

// WrapRepo wraps an underlying storage fault as RepoOther, preserving the
// stack via github.com/pkg/errors.
func WrapRepo(cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &RepoError{Kind: RepoOther, Cause: errors.Wrap(cause, msg)}
}

// AsRepo extracts a *RepoError from err, if any.
func AsRepo(err error) (*RepoError, bool) {
	var re *RepoError
	ok := errors.As(err, &re)
	return re, ok
}

// Internal wraps an unexpected fault (I/O, index, gateway) that the use-case
// boundary has no specific handling for; the HTTP layer maps it to a 500.
func Internal(cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return errors.Wrap(cause, msg)
}
