// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wneessen/go-geocode/geoerr"
)

// Pool sizing and retry defaults for the Pooled adapter.
const (
	DefaultPoolConnections = 10
	DefaultPoolMaxSize     = 10
	DefaultPoolRetries     = 2
)

// PoolOptions tunes the connection pool of the Pooled adapter.
type PoolOptions struct {
	// Connections is the number of idle keep-alive connections kept
	// across all hosts. Zero means DefaultPoolConnections.
	Connections int
	// MaxSize is the number of idle keep-alive connections kept per
	// host. Zero means DefaultPoolMaxSize.
	MaxSize int
	// MaxRetries bounds the adapter-level retries of connection-stage
	// failures. These retries sit beneath any retry policy layered on
	// top, such as the ratelimit package. Negative disables retries,
	// zero means DefaultPoolRetries.
	MaxRetries int
	// Block caps the number of in-flight connections per host at
	// MaxSize, making callers wait for a free connection instead of
	// opening new ones.
	Block bool
}

func (o *PoolOptions) normalize() {
	if o.Connections <= 0 {
		o.Connections = DefaultPoolConnections
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultPoolMaxSize
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultPoolRetries
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
}

// Pooled is the default adapter. It keeps a bounded pool of keep-alive
// connections, retries connection-stage failures and supports a custom
// TLS trust configuration for both direct and proxy-tunneled
// connections. It is safe for concurrent use.
type Pooled struct {
	client  *http.Client
	retries int
	logger  *slog.Logger
}

// NewPooled returns a new Pooled adapter with default pool sizing.
func NewPooled(cfg Config) (*Pooled, error) {
	return NewPooledWithOptions(cfg, PoolOptions{})
}

// NewPooledWithOptions returns a new Pooled adapter with the given pool
// sizing.
func NewPooledWithOptions(cfg Config, opts PoolOptions) (*Pooled, error) {
	opts.normalize()
	proxy, err := proxyFunc(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		Proxy:               proxy,
		TLSClientConfig:     cloneTLS(cfg.TLSConfig),
		MaxIdleConns:        opts.Connections,
		MaxIdleConnsPerHost: opts.MaxSize,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   false,
	}
	if opts.Block {
		transport.MaxConnsPerHost = opts.MaxSize
	}
	return &Pooled{
		client:  &http.Client{Transport: transport},
		retries: opts.MaxRetries,
		logger:  loggerOrDefault(cfg.Logger),
	}, nil
}

func (p *Pooled) GetText(ctx context.Context, url string, params Params) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		text, err := fetch(ctx, p.client, url, params, p.logger)
		if err == nil {
			return text, nil
		}
		// Only connection-stage failures are retried. Timeouts would
		// blow the call's budget and status errors are not transient.
		if !errors.Is(err, geoerr.ErrUnavailable) {
			return "", err
		}
		lastErr = err
		if attempt < p.retries {
			p.logger.Debug("retrying after a connection failure",
				slog.Int("attempt", attempt+1), slog.Any("error", err))
		}
	}
	return "", lastErr
}

func (p *Pooled) GetJSON(ctx context.Context, url string, params Params, target any) error {
	text, err := p.GetText(ctx, url, params)
	if err != nil {
		return err
	}
	return decodeJSON(text, target)
}

func (p *Pooled) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
