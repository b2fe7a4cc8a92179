// Package faults defines the shared error taxonomy for the application.
//
// Store and feature packages wrap their failures in these sentinels (or
// return them directly) so that handlers can map any error to an HTTP status
// without knowing which layer produced it. Authorization and uniqueness
// errors are terminal: callers must not retry them. Unavailable is the only
// kind a read-path caller may retry, once, with backoff; write paths are
// never retried internally to avoid duplicate-insert risk.
package faults

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means no identity is present for the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but not authorized.
	// A store-side rejection is authoritative and is mapped here too.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers both a missing entity and a violated
	// still-in-expected-state assumption (e.g. responding to an
	// invitation that already left pending).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a uniqueness invariant that would be
	// violated by the write.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyMember is the membership-specific uniqueness error:
	// an active row already exists for the (group, user) pair.
	ErrAlreadyMember = errors.New("user is already a member of this group")

	// ErrEmptyRecording rejects a zero-byte audio payload before any
	// upload is attempted.
	ErrEmptyRecording = errors.New("recording is empty")

	// ErrUploadFailed means the blob never reached the object store;
	// no memo row was created.
	ErrUploadFailed = errors.New("audio upload failed")

	// ErrPersistFailed means the memo row insert failed after a
	// successful upload. The orphaned blob is left for the maintenance
	// sweep; it is not cleaned up inline.
	ErrPersistFailed = errors.New("memo persist failed")

	// ErrUnavailable is a transient transport or backend failure.
	ErrUnavailable = errors.New("backend unavailable")
)

// HTTPStatus maps a taxonomy error to a response status. Unknown errors map
// to 500 so handlers can pass any error through.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyRecording):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUploadFailed), errors.Is(err, ErrPersistFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Terminal reports whether err must never be retried automatically.
func Terminal(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrUnauthenticated)
}
