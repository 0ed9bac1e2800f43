package domain

import "errors"

// ErrNoStartNode is reported when no Node is flagged as initial.
// Generation treats it as an empty result; callers use it for user-facing messaging.
var ErrNoStartNode = errors.New("no initial state flagged")

// ErrUnknownNode is returned when an operation references a Node the Graph does not hold.
var ErrUnknownNode = errors.New("unknown node")

// ErrDuplicateID is returned when a restored entity reuses an id already present in the Graph.
var ErrDuplicateID = errors.New("duplicate id")

// ErrEmptyID is returned when a restored entity carries no id.
var ErrEmptyID = errors.New("empty id")

// ErrInvalidValue is returned when a property value is neither a bool nor a string.
var ErrInvalidValue = errors.New("invalid property value")

// ErrProjectNotFound is returned when a project cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")
