package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist. An unknown invite token resolves to this error
// too — for invites it is an expected outcome, not a fault.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrTransport marks a network or backend failure. It is recoverable:
// callers retry or surface it to the user; a subscription that hits it
// keeps its last snapshot and tries again on the next cycle.
var ErrTransport = errors.New("transport error")

// ErrScope is returned when an id exists but belongs to a different trip
// than the one named in the request. The operation is rejected outright
// rather than silently rescoped to the id's real trip.
// Handlers map this to HTTP 409 Conflict.
var ErrScope = errors.New("scope error")
