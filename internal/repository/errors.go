// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between the few failure scenarios they
// report differently; every other store failure is a plain wrapped
// driver error and is reported as "operation failed".
package repository

import "errors"

// ErrNotFound is returned when an update targets a record that does
// not exist. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an email is already taken by
// another user. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrAdminExists is returned when a second admin identity would be
// created. The back office assumes exactly one.
var ErrAdminExists = errors.New("admin already exists")
