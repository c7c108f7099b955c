// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already exists or was modified concurrently.
var ErrConflict = errors.New("conflict")

// ErrValidation indicates a request or tool argument failed validation.
var ErrValidation = errors.New("validation failed")

// ErrUnknownTool indicates the model requested a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrUpstream indicates an external collaborator (model, vision, speech)
// was unreachable or returned an error.
var ErrUpstream = errors.New("upstream service failed")
