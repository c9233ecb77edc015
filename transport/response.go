package transport

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ErrStatus matches every *HTTPError.
var ErrStatus = errors.New("unexpected response status")

// Response is what a Fetcher returns for a completed exchange.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	// Data is the decoded body (see the package documentation).
	Data any
}

// ContentType returns the Content-Type header, or "".
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// IsJSON reports whether the response declares a JSON payload.
func (r *Response) IsJSON() bool {
	return isJSONMediaType(r.ContentType())
}

// Clone returns a shallow copy of r. Header is copied, Data is shared.
func (r *Response) Clone() *Response {
	cp := *r
	cp.Header = r.Header.Clone()
	return &cp
}

// JSONResponse builds a Response carrying data with a JSON content type.
// Useful for stub fetchers.
func JSONResponse(status int, data any) *Response {
	return &Response{
		Status:     status,
		StatusText: http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Data:       data,
	}
}

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	// Response is the decoded error response.
	Response *Response
	// Config is the request that produced it.
	Config *Config
}

// Error returns a human-readable error message.
func (e *HTTPError) Error() string {
	if e.Response == nil {
		return "request failed without a response"
	}
	msg := fmt.Sprintf("request failed with status %d", e.Response.Status)
	if e.Response.StatusText != "" {
		msg += " " + e.Response.StatusText
	}
	if e.Config != nil {
		msg += fmt.Sprintf(" (%s %s)", e.Config.Method, e.Config.URL)
	}
	return msg
}

// ErrorResponse exposes the failed response to error classifiers.
func (e *HTTPError) ErrorResponse() *Response {
	return e.Response
}

// Is reports whether target matches this error type.
func (e *HTTPError) Is(target error) bool {
	return target == ErrStatus
}

// ResponseCarrier is implemented by errors that carry a backend response.
// Error classification accepts any error implementing it.
type ResponseCarrier interface {
	error
	ErrorResponse() *Response
}

func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
