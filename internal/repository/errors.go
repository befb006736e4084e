// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL error strings. For example, ErrNotActionable signals
// that a booking decision matched no pending row (it never existed, it
// belongs to another landlord, or a rival decision already made it
// terminal); the three cases stay indistinguishable so the API cannot
// leak which bookings exist.
package repository

import "errors"

// ErrEmailExists is returned when an insert into users collides with the
// unique email index. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced row does not exist.
// Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own or participate in. Handlers translate this
// into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrListingUnavailable is returned when a booking request targets a
// listing whose is_active flag is false. Handlers translate this into
// HTTP 400 per the original API contract.
var ErrListingUnavailable = errors.New("listing unavailable")

// ErrDuplicateBooking is returned when a student already holds a
// non-declined booking on the listing. Handlers translate this into
// HTTP 409.
var ErrDuplicateBooking = errors.New("duplicate booking request")

// ErrNotActionable is returned by Decide when no row matches
// (id, landlord_id, status=pending). The status=pending guard in the
// predicate is what makes the second of two concurrent deciders affect
// zero rows instead of corrupting state.
var ErrNotActionable = errors.New("booking not actionable")
