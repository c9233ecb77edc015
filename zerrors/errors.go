// Package zerrors provides structured error types for zodmon.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish configuration mistakes from
// payload validation failures and transport failures.
//
// # Error Categories
//
//   - ConfigError: invalid construction or registration input (missing base URL,
//     duplicate endpoints, invalid plugin registration). Returned synchronously.
//   - ValidationError: a request parameter, response payload or request body
//     that was rejected by a schema or by an encoding precondition.
//   - EndpointNotFoundError: a call named a method/path or alias that is not declared.
//   - transport.HTTPError: a non-2xx response from the backend, matched by ErrTransport.
//
// # Usage with errors.As
//
//	_, err := client.Call(ctx, "createUser", &transport.Config{Body: body})
//	var verr *zerrors.ValidationError
//	if errors.As(err, &verr) {
//	    log.Printf("rejected %v: %s", verr.Value, verr.Message)
//	}
package zerrors

import (
	"errors"
	"fmt"

	"github.com/richiexuetang/zodmon/transport"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates an invalid configuration or registration.
	ErrConfig = errors.New("configuration error")

	// ErrValidation indicates a payload failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrEndpointNotFound indicates a call named an undeclared endpoint.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrTransport matches non-2xx responses reported by the transport.
	ErrTransport = transport.ErrStatus
)

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration input
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ValidationError reports a value rejected while preparing a request or
// accepting a response.
type ValidationError struct {
	// Message is the human-readable description, e.g. "Invalid Body parameter 'name'"
	Message string
	// Config is the request configuration at the time of the failure
	Config *transport.Config
	// Value is the offending raw value
	Value any
	// Cause is the underlying schema failure, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// EndpointNotFoundError is returned when a call does not resolve to a declared endpoint.
type EndpointNotFoundError struct {
	Method string
	Path   string
	Alias  string
}

// Error returns a human-readable error message.
func (e *EndpointNotFoundError) Error() string {
	if e.Alias != "" {
		return fmt.Sprintf("endpoint not found: no endpoint with alias %q", e.Alias)
	}
	return fmt.Sprintf("endpoint not found: no endpoint found for %s %s", e.Method, e.Path)
}

// Is reports whether target matches this error type.
func (e *EndpointNotFoundError) Is(target error) bool {
	return target == ErrEndpointNotFound
}

// IsTransport reports whether err is a transport status failure and returns it.
func IsTransport(err error) (*transport.HTTPError, bool) {
	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
