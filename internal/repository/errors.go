// Package repository provides data access to the read-only concert
// catalog and to the auth tables (users, refresh tokens).  The seat
// ledger itself lives in the storage package; repositories here never
// touch seat state.  Sentinel errors let handlers translate failure
// scenarios into HTTP statuses without inspecting SQL errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConcertNotFound is returned when a concert id does not exist in
// the catalog.  Handlers should translate this into an HTTP 404
// response.
var ErrConcertNotFound = errors.New("concert not found")

// ErrPerformerNotFound is returned when a performer id does not exist
// in the catalog.
var ErrPerformerNotFound = errors.New("performer not found")
