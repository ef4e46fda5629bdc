// Package repository defines the credential-store capability interfaces and
// their MySQL and in-memory implementations. Sentinel errors declared here
// let higher layers distinguish failure scenarios without inspecting driver
// errors.
package repository

import "errors"

// ErrEmailExists is returned by UserStore.Create when the email collides
// with an existing row. The MySQL implementation maps the unique-constraint
// violation to this value, so the constraint remains the correctness
// boundary even when two registrations race past the existence pre-check.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no usable row. Token lookups
// fold "revoked", "expired" and "used" into ErrNotFound as well, so callers
// cannot tell the cases apart.
var ErrNotFound = errors.New("not found")
