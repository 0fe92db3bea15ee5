// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. Absence of a row is reported as
// sql.ErrNoRows, matching the underlying database/sql convention.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as requesting payment for another
// customer's reservation. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a status-guarded update finds the
// reservation (or payment intent) in a state outside the allowed set.
// The record is left unchanged. Handlers should translate this into an
// HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrVehicleNotFound is returned when a reservation references a vehicle
// that does not exist or is no longer offered for booking.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrTokenMismatch is returned at handover time when the presented token
// does not equal the token stored on the reservation.
var ErrTokenMismatch = errors.New("handover token mismatch")

// ErrConflict is returned when an insert collides with existing state,
// such as creating a second active payment intent for a reservation.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
