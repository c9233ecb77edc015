package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/richiexuetang/zodmon/internal/pathutil"
)

// Fetcher performs one request. Implementations must honor ctx cancellation
// and must not modify cfg.
type Fetcher interface {
	Fetch(ctx context.Context, cfg *Config) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, cfg *Config) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, cfg *Config) (*Response, error) {
	return f(ctx, cfg)
}

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// HTTPFetcher is the net/http Fetcher. It has no retry or timeout policy of
// its own; configure those on the http.Client.
type HTTPFetcher struct {
	baseURL   string
	client    *http.Client
	headers   map[string]string
	userAgent string
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithClient sets the http.Client. The default is http.DefaultClient.
func WithClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithDefaultHeaders sets headers sent with every request. Headers on the
// request Config take precedence.
func WithDefaultHeaders(h map[string]string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = h
	}
}

// WithUserAgent sets the User-Agent sent when the request does not set one.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates an HTTPFetcher resolving endpoint paths against baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BaseURL returns the base URL requests are resolved against.
func (f *HTTPFetcher) BaseURL() string {
	return f.baseURL
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, cfg *Config) (*Response, error) {
	target, err := f.buildURL(cfg)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(cfg.Body)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(cfg.Method)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("transport: building request: %w", err)
	}

	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("transport: reading response body: %w", err)
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
	}
	if out.Data, err = decodeBody(out.ContentType(), raw); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Response: out, Config: cfg}
	}
	return out, nil
}

func (f *HTTPFetcher) buildURL(cfg *Config) (string, error) {
	path, err := pathutil.ExpandPath(cfg.URL, cfg.Params)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}

	target := f.baseURL + path
	if len(cfg.Queries) == 0 {
		return target, nil
	}

	values := url.Values{}
	for key, v := range cfg.Queries {
		addQuery(values, key, v)
	}
	if encoded := values.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}
	return target, nil
}

// addQuery adds v under key; slices and arrays repeat the key, nil is skipped.
func addQuery(values url.Values, key string, v any) {
	if v == nil {
		return
	}
	if s, ok := v.([]string); ok {
		for _, item := range s {
			values.Add(key, item)
		}
		return
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		for i := range rv.Len() {
			addQuery(values, key, rv.Index(i).Interface())
		}
		return
	}
	values.Add(key, fmt.Sprint(v))
}

// encodeBody returns the request body and the content type it implies.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case string:
		return strings.NewReader(b), "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	case io.Reader:
		return b, "", nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("transport: encoding JSON body: %w", err)
	}
	return bytes.NewReader(raw), "application/json", nil
}

func decodeBody(contentType string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if isJSONMediaType(contentType) {
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("transport: decoding JSON response: %w", err)
		}
		return data, nil
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "text/") {
		return string(raw), nil
	}
	return raw, nil
}

func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
