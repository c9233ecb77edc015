package api

import (
	"fmt"
	"strconv"
)

// ParamType identifies where a parameter lives in a request.
type ParamType string

// Parameter kinds.
const (
	ParamQuery  ParamType = "Query"
	ParamBody   ParamType = "Body"
	ParamHeader ParamType = "Header"
	ParamPath   ParamType = "Path"
)

// Valid reports whether t is a known parameter kind.
func (t ParamType) Valid() bool {
	switch t {
	case ParamQuery, ParamBody, ParamHeader, ParamPath:
		return true
	}
	return false
}

// RequestFormat selects how a request body is encoded.
type RequestFormat string

// Request formats. The empty value is treated as FormatJSON.
const (
	FormatJSON     RequestFormat = "json"
	FormatFormData RequestFormat = "form-data"
	FormatFormURL  RequestFormat = "form-url"
	FormatBinary   RequestFormat = "binary"
	FormatText     RequestFormat = "text"
)

// IsDefault reports whether f needs no encoding middleware.
func (f RequestFormat) IsDefault() bool {
	return f == "" || f == FormatJSON
}

// Valid reports whether f is a known request format.
func (f RequestFormat) Valid() bool {
	switch f {
	case "", FormatJSON, FormatFormData, FormatFormURL, FormatBinary, FormatText:
		return true
	}
	return false
}

// Parameter declares one typed input of an endpoint.
type Parameter struct {
	Name        string
	Type        ParamType
	Description string
	// Schema is interpreted by the configured schema.Provider.
	Schema any
}

// Status is an HTTP status code or the "default" catch-all.
type Status struct {
	code      int
	isDefault bool
}

// StatusDefault matches any status that has no exact declaration.
var StatusDefault = Status{isDefault: true}

// StatusCode returns a Status for an exact HTTP code.
func StatusCode(code int) Status {
	return Status{code: code}
}

// ParseStatus accepts "default" or a numeric status code.
func ParseStatus(s string) (Status, error) {
	if s == "default" {
		return StatusDefault, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil || code < minStatusCode || code > maxStatusCode {
		return Status{}, fmt.Errorf("invalid status %q: expected \"default\" or a code between %d and %d", s, minStatusCode, maxStatusCode)
	}
	return StatusCode(code), nil
}

const (
	minStatusCode = 100
	maxStatusCode = 599
)

// Code returns the numeric code, or 0 for the default status.
func (s Status) Code() int {
	return s.code
}

// IsDefault reports whether s is the "default" status.
func (s Status) IsDefault() bool {
	return s.isDefault
}

// String renders the status as declared.
func (s Status) String() string {
	if s.isDefault {
		return "default"
	}
	return strconv.Itoa(s.code)
}

// ErrorDescriptor declares the shape of one error response.
type ErrorDescriptor struct {
	Status      Status
	Description string
	Schema      any
}

// Endpoint is the static declaration of one API operation.
//
// Endpoints are values; once handed to NewRegistry they are copied and must
// be treated as immutable.
type Endpoint struct {
	Method        Method
	Path          string
	Alias         string
	Description   string
	RequestFormat RequestFormat
	Parameters    []Parameter
	Response      any
	Errors        []ErrorDescriptor
}

// Key returns the registry key "method path".
func (e *Endpoint) Key() string {
	return Key(e.Method, e.Path)
}

// Key builds the composite registry key for a method and path template.
func Key(method Method, path string) string {
	return string(method) + " " + path
}

// ErrorsFor returns the error descriptors consulted for an actual status:
// every exact match in declaration order, or the "default" descriptors when no
// exact match exists.
func (e *Endpoint) ErrorsFor(status int) []ErrorDescriptor {
	var exact, fallback []ErrorDescriptor
	for _, desc := range e.Errors {
		switch {
		case desc.Status.IsDefault():
			fallback = append(fallback, desc)
		case desc.Status.Code() == status:
			exact = append(exact, desc)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return fallback
}

// BodyParameter returns the first Body parameter, if any.
func (e *Endpoint) BodyParameter() (Parameter, bool) {
	for _, p := range e.Parameters {
		if p.Type == ParamBody {
			return p, true
		}
	}
	return Parameter{}, false
}
