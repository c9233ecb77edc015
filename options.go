package zodmon

import (
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/richiexuetang/zodmon/logging"
	"github.com/richiexuetang/zodmon/schema"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

// Option is a functional option for configuring a Client.
type Option func(*config) error

// config holds the configuration for a Client.
type config struct {
	baseURL string

	validate     ValidateMode
	transform    TransformMode
	sendDefaults bool
	provider     schema.Provider

	// Transport (fetcher wins over httpClient)
	fetcher    transport.Fetcher
	httpClient *http.Client
	headers    map[string]string

	logger logging.Logger
}

// defaultConfig returns the default configuration: validate and transform
// both sides with the built-in schema provider.
func defaultConfig() *config {
	return &config{
		validate:  ValidateAll,
		transform: TransformAll,
		provider:  schema.Default,
		logger:    logging.NopLogger{},
	}
}

// ValidateMode selects which sides of a call are validated.
type ValidateMode int

// Validation modes. The zero value validates both sides.
const (
	ValidateAll ValidateMode = iota
	ValidateRequest
	ValidateResponse
	ValidateNone
)

// String returns the mode's name as accepted by ParseValidateMode.
func (m ValidateMode) String() string {
	switch m {
	case ValidateAll:
		return "all"
	case ValidateRequest:
		return "request"
	case ValidateResponse:
		return "response"
	case ValidateNone:
		return "none"
	}
	return fmt.Sprintf("ValidateMode(%d)", int(m))
}

func (m ValidateMode) request() bool  { return m == ValidateAll || m == ValidateRequest }
func (m ValidateMode) response() bool { return m == ValidateAll || m == ValidateResponse }

// ParseValidateMode accepts "true", "all", "request", "response", "false" and
// "none".
func ParseValidateMode(s string) (ValidateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "all":
		return ValidateAll, nil
	case "request":
		return ValidateRequest, nil
	case "response":
		return ValidateResponse, nil
	case "false", "none":
		return ValidateNone, nil
	}
	return ValidateAll, fmt.Errorf("invalid validate mode %q", s)
}

// TransformMode selects which sides of a call take transformed values back
// from validation.
type TransformMode int

// Transform modes. The zero value transforms both sides.
const (
	TransformAll TransformMode = iota
	TransformRequest
	TransformResponse
	TransformNone
)

// String returns the mode's name as accepted by ParseTransformMode.
func (m TransformMode) String() string {
	switch m {
	case TransformAll:
		return "all"
	case TransformRequest:
		return "request"
	case TransformResponse:
		return "response"
	case TransformNone:
		return "none"
	}
	return fmt.Sprintf("TransformMode(%d)", int(m))
}

func (m TransformMode) request() bool  { return m == TransformAll || m == TransformRequest }
func (m TransformMode) response() bool { return m == TransformAll || m == TransformResponse }

// ParseTransformMode accepts the same spellings as ParseValidateMode.
func ParseTransformMode(s string) (TransformMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "all":
		return TransformAll, nil
	case "request":
		return TransformRequest, nil
	case "response":
		return TransformResponse, nil
	case "false", "none":
		return TransformNone, nil
	}
	return TransformAll, fmt.Errorf("invalid transform mode %q", s)
}

// WithBaseURL sets the URL endpoint paths are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(c *config) error {
		if baseURL == "" {
			return &zerrors.ConfigError{Option: "baseURL", Message: "base URL cannot be empty"}
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithValidate sets which sides are validated. Default is ValidateAll.
func WithValidate(mode ValidateMode) Option {
	return func(c *config) error {
		if mode < ValidateAll || mode > ValidateNone {
			return &zerrors.ConfigError{Option: "validate", Value: int(mode), Message: "unknown validate mode"}
		}
		c.validate = mode
		return nil
	}
}

// WithTransform sets which sides take transformed values. Default is TransformAll.
func WithTransform(mode TransformMode) Option {
	return func(c *config) error {
		if mode < TransformAll || mode > TransformNone {
			return &zerrors.ConfigError{Option: "transform", Value: int(mode), Message: "unknown transform mode"}
		}
		c.transform = mode
		return nil
	}
}

// WithSendDefaults validates parameters even when the caller supplied no
// value, so schema defaults are sent. Default is false.
func WithSendDefaults(send bool) Option {
	return func(c *config) error {
		c.sendDefaults = send
		return nil
	}
}

// WithTypeProvider sets the schema provider. Default is schema.Default.
func WithTypeProvider(p schema.Provider) Option {
	return func(c *config) error {
		if p == nil {
			return &zerrors.ConfigError{Option: "typeProvider", Message: "provider cannot be nil"}
		}
		c.provider = p
		return nil
	}
}

// WithFetcher replaces the default net/http transport.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *config) error {
		if f == nil {
			return &zerrors.ConfigError{Option: "fetcher", Message: "fetcher cannot be nil"}
		}
		c.fetcher = f
		return nil
	}
}

// WithHTTPClient sets the http.Client used by the default transport.
// Ignored when WithFetcher is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		if hc == nil {
			return &zerrors.ConfigError{Option: "httpClient", Message: "http client cannot be nil"}
		}
		c.httpClient = hc
		return nil
	}
}

// WithHeaders sets headers sent with every call. Headers given on a call
// take precedence. Calling it again adds to the set.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) error {
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		maps.Copy(c.headers, headers)
		return nil
	}
}

// WithLogger sets the logger. Default is logging.NopLogger.
func WithLogger(l logging.Logger) Option {
	return func(c *config) error {
		c.logger = logging.OrNop(l)
		return nil
	}
}
