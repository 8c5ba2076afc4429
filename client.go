// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/wneessen/go-geocode/adapter"
	"github.com/wneessen/go-geocode/geoerr"
)

// Version is the library version, used in the default User-Agent.
const Version = "0.1.0"

const (
	// DefaultScheme is the URL scheme used when Options.Scheme is unset.
	DefaultScheme = "https"
	// DefaultTimeout is the per-request timeout used when
	// Options.Timeout is unset.
	DefaultTimeout = time.Second * 10
)

// DefaultUserAgent is the User-Agent header sent when Options.UserAgent
// is unset. Many geocoding services require a custom User-Agent, so
// providers and users are expected to override it.
var DefaultUserAgent = "go-geocode/" + Version

// ErrorHandler lets a provider translate a non-successful HTTP response
// into a provider-specific taxonomy error before the default status-code
// mapping applies. Returning nil falls back to the default mapping.
type ErrorHandler func(err *adapter.HTTPError) error

// Options configures a Client. The zero value of each field means
// "inherit the library default" as documented per field, so that nil and
// empty values keep their explicit meaning where one exists (e.g.
// Proxies).
type Options struct {
	// Scheme is "https" (default) or "http".
	Scheme string
	// Timeout is the default per-request timeout. Zero means
	// DefaultTimeout.
	Timeout time.Duration
	// Proxies maps URL schemes to proxy URLs. Nil inherits the process
	// environment, an empty non-nil map disables all proxying. See
	// adapter.Config.
	Proxies map[string]string
	// ProxyURL is a shorthand for using one proxy URL for both the http
	// and https schemes. Mutually exclusive with Proxies.
	ProxyURL string
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	// TLSConfig is an optional TLS trust configuration, used exactly as
	// given. See adapter.Config.
	TLSConfig *tls.Config
	// AdapterFactory selects the transport implementation. Nil means
	// adapter.DefaultFactory.
	AdapterFactory adapter.Factory
	// Logger receives debug and warning output. Nil falls back to a
	// stderr text handler.
	Logger *slog.Logger
	// ErrorHandler is the provider hook for custom status-code
	// translation.
	ErrorHandler ErrorHandler
}

// Client is the request pipeline shared by all providers: the single
// chokepoint through which provider calls are issued and translated into
// either a decoded payload or a geoerr taxonomy error.
type Client struct {
	scheme       string
	timeout      time.Duration
	headers      map[string]string
	adapter      adapter.Adapter
	logger       *slog.Logger
	errorHandler ErrorHandler
}

// New returns a new Client for the given options.
func New(opts Options) (*Client, error) {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: supported schemes are http and https, got %q", geoerr.ErrConfiguration, scheme)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	proxies := opts.Proxies
	if opts.ProxyURL != "" {
		if proxies != nil {
			return nil, fmt.Errorf("%w: Proxies and ProxyURL are mutually exclusive", geoerr.ErrConfiguration)
		}
		proxies = map[string]string{"http": opts.ProxyURL, "https": opts.ProxyURL}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	factory := opts.AdapterFactory
	if factory == nil {
		factory = adapter.DefaultFactory
	}
	transport, err := factory(adapter.Config{
		Proxies:   proxies,
		TLSConfig: opts.TLSConfig,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		scheme:       scheme,
		timeout:      timeout,
		headers:      map[string]string{"User-Agent": userAgent},
		adapter:      transport,
		logger:       logger,
		errorHandler: opts.ErrorHandler,
	}, nil
}

// Scheme returns the URL scheme providers should build their request
// URLs with.
func (c *Client) Scheme() string {
	return c.scheme
}

// Close releases the transport's connections.
func (c *Client) Close() error {
	return c.adapter.Close()
}

// CallOptions carries the per-call overrides of a single pipeline call.
type CallOptions struct {
	// Timeout overrides the client's default timeout for this call only.
	// Zero inherits the client default.
	Timeout time.Duration
	// Headers are merged over the client's default headers.
	Headers map[string]string
}

// CallGeocoder issues a GET for the given fully query-encoded URL and
// JSON-decodes the response into target. It is the only sanctioned way a
// provider performs network I/O. Every failure is returned as a geoerr
// taxonomy error.
func (c *Client) CallGeocoder(ctx context.Context, rawURL string, target any, opts *CallOptions) error {
	c.logger.Debug("calling geocoding service", slog.String("url", rawURL))
	return c.translate(c.adapter.GetJSON(ctx, rawURL, c.params(opts), target))
}

// CallText is CallGeocoder for services responding with a non-JSON body.
// It returns the response body as text.
func (c *Client) CallText(ctx context.Context, rawURL string, opts *CallOptions) (string, error) {
	c.logger.Debug("calling geocoding service", slog.String("url", rawURL))
	text, err := c.adapter.GetText(ctx, rawURL, c.params(opts))
	if err != nil {
		return "", c.translate(err)
	}
	return text, nil
}

func (c *Client) params(opts *CallOptions) adapter.Params {
	timeout := c.timeout
	headers := make(map[string]string, len(c.headers))
	maps.Copy(headers, c.headers)
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		maps.Copy(headers, opts.Headers)
	}
	return adapter.Params{Timeout: timeout, Headers: headers}
}

// translate turns an adapter.HTTPError into a taxonomy error, giving the
// provider's ErrorHandler the first chance and falling back to the
// default status-code mapping. The original carrier stays in the error
// chain for diagnostics. Taxonomy errors pass through unchanged.
func (c *Client) translate(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *adapter.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	if c.errorHandler != nil {
		if translated := c.errorHandler(httpErr); translated != nil {
			return translated
		}
	}
	return fmt.Errorf("%w: %w", statusError(httpErr), httpErr)
}

// statusError maps a non-successful status code to its taxonomy kind.
func statusError(httpErr *adapter.HTTPError) error {
	switch httpErr.StatusCode {
	case http.StatusBadRequest, http.StatusPreconditionFailed,
		http.StatusRequestEntityTooLarge, http.StatusRequestURITooLong:
		return geoerr.ErrQuery
	case http.StatusUnauthorized, http.StatusProxyAuthRequired:
		return geoerr.ErrAuthenticationFailure
	case http.StatusPaymentRequired:
		return geoerr.ErrQuotaExceeded
	case http.StatusForbidden:
		return geoerr.ErrInsufficientPrivileges
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return geoerr.ErrTimedOut
	case http.StatusTooManyRequests:
		return &geoerr.RateLimitedError{RetryAfter: retryAfter(httpErr.Header)}
	case http.StatusServiceUnavailable:
		return geoerr.ErrUnavailable
	default:
		return geoerr.ErrService
	}
}

// retryAfter parses a Retry-After header, which is either a number of
// seconds or an HTTP date. Zero if absent or unparsable.
func retryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
