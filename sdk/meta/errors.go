package meta

import (
	"fmt"
	"strings"
)

// ErrAuthentication represents an error asserting that a request could not be
// authenticated.
type ErrAuthentication struct {
	// Reason is a natural language explanation for why the request could not be
	// authenticated.
	Reason string `json:"reason,omitempty"`
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("Could not authenticate the request: %s", e.Reason)
}

// ErrAuthorization represents an error asserting that an authenticated request
// is not authorized to perform the requested operation.
type ErrAuthorization struct{}

func (e *ErrAuthorization) Error() string {
	return "The request is not authorized."
}

// ErrBadRequest represents an error asserting that a request was invalid.
type ErrBadRequest struct {
	// Reason is a natural language explanation for why the request was invalid.
	Reason string `json:"reason,omitempty"`
	// Details may further qualify why a request was invalid-- for instance by
	// enumerating each of several schema validation failures.
	Details []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Reason)
	}
	return fmt.Sprintf(
		"Bad request: %s: %s",
		e.Reason,
		strings.Join(e.Details, "; "),
	)
}

// ErrNotFound represents an error asserting the non-existence of a requested
// resource.
type ErrNotFound struct {
	// Type identifies the type of the resource that was not found.
	Type string `json:"type,omitempty"`
	// ID identifies the resource that was not found.
	ID string `json:"id,omitempty"`
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found.", e.Type, e.ID)
}

// ErrConflict represents an error asserting that a requested operation could
// not be completed because it conflicted with the current state of a resource.
type ErrConflict struct {
	// Type identifies the type of the conflicting resource.
	Type string `json:"type,omitempty"`
	// ID identifies the conflicting resource.
	ID string `json:"id,omitempty"`
	// Reason is a natural language explanation of the conflict.
	Reason string `json:"reason,omitempty"`
}

func (e *ErrConflict) Error() string {
	return e.Reason
}

// ErrNotSupported represents an error asserting that a requested operation is
// not supported by the server.
type ErrNotSupported struct {
	// Details is a natural language explanation of why the operation is not
	// supported.
	Details string `json:"details,omitempty"`
}

func (e *ErrNotSupported) Error() string {
	return e.Details
}

// ErrInternalServer represents a non-specific internal server error.
type ErrInternalServer struct{}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}
