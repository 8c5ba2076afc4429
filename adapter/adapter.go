// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package adapter provides the pluggable HTTP transport implementations
// used by geocoders.
//
// Adapters should be considered an implementation detail. Most of the
// time you wouldn't need to know about their existence unless you want
// to tune HTTP client settings.
//
// Every adapter performs plain HTTP GET requests and translates all
// transport-level failures into the geoerr taxonomy before they cross
// the adapter boundary. A response with a status code of 400 or above is
// reported as an *HTTPError, anything below 400 counts as success. This
// single success-range definition applies to all adapter variants.
package adapter

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/wneessen/go-geocode/geoerr"
)

// ErrNonPointerTarget is returned when a JSON decode target is not a
// non-nil pointer.
var ErrNonPointerTarget = errors.New("target must be a non-nil pointer")

// Params carries the per-request settings of a single GET.
type Params struct {
	// Timeout is the budget for the whole request. Non-positive values
	// set no deadline of their own, leaving the request bounded only by
	// the caller's context.
	Timeout time.Duration
	// Headers are extra request headers.
	Headers map[string]string
}

// Adapter is the HTTP transport capability used by geocoders. All
// implementations translate transport failures into the geoerr taxonomy:
// timeouts become geoerr.ErrTimedOut, unreachable hosts become
// geoerr.ErrUnavailable, non-successful status codes become *HTTPError
// and anything else becomes geoerr.ErrService. No error type of the
// underlying HTTP machinery escapes an Adapter untranslated.
type Adapter interface {
	// GetText performs a GET request and returns the response body as
	// text, decoded using the response's declared charset with an UTF-8
	// fallback.
	GetText(ctx context.Context, url string, params Params) (string, error)

	// GetJSON performs a GET request and JSON-decodes the response body
	// into target, which must be a non-nil pointer. A body that cannot
	// be decoded results in a geoerr.ErrParse error.
	GetJSON(ctx context.Context, url string, params Params, target any) error

	// Close releases any connections held by the adapter.
	Close() error
}

// Config carries the construction settings shared by all adapter
// variants.
type Config struct {
	// Proxies maps URL schemes to proxy URLs, e.g.
	// {"https": "http://192.0.2.0:8080"}. A nil map means "use the
	// process environment" (HTTP_PROXY et al). An empty non-nil map
	// disables all proxying, including any configured in the
	// environment. Proxy URLs without a scheme get "http://" prefixed.
	Proxies map[string]string

	// TLSConfig is an optional TLS configuration. It is cloned at
	// construction time and never mutated, and its trust store is used
	// exactly as given: no system CAs are merged into it. Nil means the
	// system trust store with a TLS 1.2 minimum.
	TLSConfig *tls.Config

	// Logger receives debug output. Nil falls back to a stderr text
	// handler.
	Logger *slog.Logger
}

// Factory constructs an adapter from a Config. Geocoders select their
// transport by passing a Factory at construction time.
type Factory func(Config) (Adapter, error)

// DefaultFactory is the factory used when a geocoder does not select an
// adapter explicitly.
var DefaultFactory Factory = func(cfg Config) (Adapter, error) {
	return NewPooled(cfg)
}

// HTTPError reports a response with a non-successful status code. It is
// an internal carrier between adapters and the request pipeline: the
// pipeline always translates it into a geoerr kind before it reaches
// provider code, chaining it for diagnostics.
type HTTPError struct {
	StatusCode int
	// Body is the best-effort decoded response body. Empty if the body
	// could not be read.
	Body   string
	Header http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("non-successful status code %d", e.StatusCode)
}

// proxyFunc builds the transport proxy selector for the given proxy map.
// See Config.Proxies for the nil/empty semantics.
func proxyFunc(proxies map[string]string) (func(*http.Request) (*url.URL, error), error) {
	if proxies == nil {
		return http.ProxyFromEnvironment, nil
	}
	if len(proxies) == 0 {
		// Explicitly no proxies, overriding the environment.
		return nil, nil
	}
	normalized := make(map[string]*url.URL, len(proxies))
	for scheme, rawURL := range proxies {
		if rawURL != "" && !strings.Contains(rawURL, "://") {
			rawURL = "http://" + rawURL
		}
		proxyURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid proxy URL %q: %s", geoerr.ErrConfiguration, rawURL, err)
		}
		normalized[strings.ToLower(scheme)] = proxyURL
	}
	return func(req *http.Request) (*url.URL, error) {
		return normalized[strings.ToLower(req.URL.Scheme)], nil
	}, nil
}

// cloneTLS returns a private copy of the given TLS configuration so the
// caller's value is never mutated. The copy's trust store is used as-is.
func cloneTLS(cfg *tls.Config) *tls.Config {
	if cfg == nil {
		return &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return cfg.Clone()
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// translateError classifies a transport failure into the geoerr
// taxonomy. Structured error types are checked first; the message
// substring checks at the end are a legacy fallback for error types that
// carry no structure.
func translateError(err error) error {
	if errors.Is(err, context.Canceled) {
		// Caller cancellation is not a service failure and must stay
		// outside the taxonomy so retry layers treat it as fatal.
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %s", geoerr.ErrTimedOut, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", geoerr.ErrTimedOut, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %s", geoerr.ErrUnavailable, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return fmt.Errorf("%w: %s", geoerr.ErrUnavailable, err)
	}
	message := err.Error()
	switch {
	case strings.Contains(message, "timed out"):
		return fmt.Errorf("%w: %s", geoerr.ErrTimedOut, err)
	case strings.Contains(message, "unreachable"), strings.Contains(message, "connection refused"):
		return fmt.Errorf("%w: %s", geoerr.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %s", geoerr.ErrService, err)
}

// fetch performs a single GET request through the given client and
// returns the decoded body text. It is shared by all adapter variants.
func fetch(ctx context.Context, client *http.Client, rawURL string, params Params, logger *slog.Logger) (string, error) {
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create HTTP request: %s", geoerr.ErrService, err)
	}
	for key, value := range params.Headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return "", translateError(err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Debug("failed to close HTTP response body", slog.Any("error", err))
		}
	}(response.Body)

	text, err := decodeBody(response)
	if response.StatusCode >= 400 {
		if err != nil {
			// A failure to read the error body must not mask the status
			// error itself.
			logger.Debug("unable to read body of a non-successful HTTP response",
				slog.Int("status_code", response.StatusCode), slog.Any("error", err))
			text = ""
		}
		return "", &HTTPError{StatusCode: response.StatusCode, Body: text, Header: response.Header}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// decodeBody reads the full response body as text, honoring the
// declared charset and falling back to UTF-8.
func decodeBody(response *http.Response) (string, error) {
	reader, err := charset.NewReader(response.Body, response.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: unable to decode the response body: %s", geoerr.ErrParse, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", translateError(err)
	}
	return string(data), nil
}

// decodeJSON unmarshals text into target. The raw text is included in
// the error for diagnosis when decoding fails.
func decodeJSON(text string, target any) error {
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return ErrNonPointerTarget
	}
	if err := json.Unmarshal([]byte(text), target); err != nil {
		return fmt.Errorf("%w: %s:\n%s", geoerr.ErrParse, err, text)
	}
	return nil
}
