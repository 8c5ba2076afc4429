// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package adapter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/wneessen/go-geocode/geoerr"
	"github.com/wneessen/go-geocode/internal/testhelper"
)

func TestPoolOptions_normalize(t *testing.T) {
	t.Run("zero values get the defaults", func(t *testing.T) {
		opts := PoolOptions{}
		opts.normalize()
		if opts.Connections != DefaultPoolConnections {
			t.Errorf("Connections = %d, want %d", opts.Connections, DefaultPoolConnections)
		}
		if opts.MaxSize != DefaultPoolMaxSize {
			t.Errorf("MaxSize = %d, want %d", opts.MaxSize, DefaultPoolMaxSize)
		}
		if opts.MaxRetries != DefaultPoolRetries {
			t.Errorf("MaxRetries = %d, want %d", opts.MaxRetries, DefaultPoolRetries)
		}
	})
	t.Run("negative retries disable retrying", func(t *testing.T) {
		opts := PoolOptions{MaxRetries: -1}
		opts.normalize()
		if opts.MaxRetries != 0 {
			t.Errorf("MaxRetries = %d, want 0", opts.MaxRetries)
		}
	})
	t.Run("explicit values are kept", func(t *testing.T) {
		opts := PoolOptions{Connections: 42, MaxSize: 7, MaxRetries: 5}
		opts.normalize()
		if opts.Connections != 42 || opts.MaxSize != 7 || opts.MaxRetries != 5 {
			t.Errorf("explicit values were not kept: %+v", opts)
		}
	})
}

func refusedError() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}

func TestPooled_GetText_retries(t *testing.T) {
	t.Run("retries connection failures until success", func(t *testing.T) {
		pooled, err := NewPooled(Config{Logger: discardLogger()})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		var calls int
		pooled.client.Transport = testhelper.MockRoundTripper{Fn: func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, refusedError()
			}
			return testhelper.Response(http.StatusOK, nil, []byte("ok")), nil
		}}
		text, err := pooled.GetText(context.Background(), "http://example.invalid/", Params{Timeout: time.Second})
		if err != nil {
			t.Fatalf("GetText failed: %s", err)
		}
		if text != "ok" {
			t.Errorf("expected body %q, got %q", "ok", text)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
	})
	t.Run("gives up after the retry budget", func(t *testing.T) {
		pooled, err := NewPooled(Config{Logger: discardLogger()})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		var calls int
		pooled.client.Transport = testhelper.MockRoundTripper{Fn: func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, refusedError()
		}}
		_, err = pooled.GetText(context.Background(), "http://example.invalid/", Params{Timeout: time.Second})
		if !errors.Is(err, geoerr.ErrUnavailable) {
			t.Fatalf("expected an unavailable error, got: %v", err)
		}
		if want := DefaultPoolRetries + 1; calls != want {
			t.Errorf("expected %d attempts, got %d", want, calls)
		}
	})
	t.Run("does not retry non-successful status codes", func(t *testing.T) {
		pooled, err := NewPooled(Config{Logger: discardLogger()})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		var calls int
		pooled.client.Transport = testhelper.MockRoundTripper{Fn: func(req *http.Request) (*http.Response, error) {
			calls++
			return testhelper.Response(http.StatusInternalServerError, nil, []byte("boom")), nil
		}}
		_, err = pooled.GetText(context.Background(), "http://example.invalid/", Params{Timeout: time.Second})
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected an *HTTPError, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single attempt, got %d", calls)
		}
	})
	t.Run("does not retry timeouts", func(t *testing.T) {
		pooled, err := NewPooled(Config{Logger: discardLogger()})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		var calls int
		pooled.client.Transport = testhelper.MockRoundTripper{Fn: func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, context.DeadlineExceeded
		}}
		_, err = pooled.GetText(context.Background(), "http://example.invalid/", Params{Timeout: time.Second})
		if !errors.Is(err, geoerr.ErrTimedOut) {
			t.Fatalf("expected a timed out error, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single attempt, got %d", calls)
		}
	})
	t.Run("disabled retries fail on the first attempt", func(t *testing.T) {
		pooled, err := NewPooledWithOptions(Config{Logger: discardLogger()}, PoolOptions{MaxRetries: -1})
		if err != nil {
			t.Fatalf("NewPooledWithOptions failed: %s", err)
		}
		var calls int
		pooled.client.Transport = testhelper.MockRoundTripper{Fn: func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, refusedError()
		}}
		_, err = pooled.GetText(context.Background(), "http://example.invalid/", Params{Timeout: time.Second})
		if !errors.Is(err, geoerr.ErrUnavailable) {
			t.Fatalf("expected an unavailable error, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single attempt, got %d", calls)
		}
	})
}

func TestPooled_TLSConfig(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	t.Run("a trust store including the server certificate succeeds", func(t *testing.T) {
		pool := x509.NewCertPool()
		pool.AddCert(server.Certificate())
		pooled, err := NewPooled(Config{
			TLSConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
			Logger:    discardLogger(),
		})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		defer func() { _ = pooled.Close() }()
		text, err := pooled.GetText(context.Background(), server.URL, Params{Timeout: time.Second})
		if err != nil {
			t.Fatalf("GetText failed: %s", err)
		}
		if text != "secure" {
			t.Errorf("expected body %q, got %q", "secure", text)
		}
	})
	t.Run("the trust store is used exactly as given", func(t *testing.T) {
		// An empty pool must fail verification even though the system
		// trust store exists.
		pooled, err := NewPooled(Config{
			TLSConfig: &tls.Config{RootCAs: x509.NewCertPool(), MinVersion: tls.VersionTLS12},
			Logger:    discardLogger(),
		})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		defer func() { _ = pooled.Close() }()
		_, err = pooled.GetText(context.Background(), server.URL, Params{Timeout: time.Second})
		if err == nil {
			t.Fatal("expected certificate verification to fail")
		}
		if !errors.Is(err, geoerr.ErrService) {
			t.Errorf("expected a taxonomy error, got: %v", err)
		}
	})
	t.Run("the caller's TLS config is not mutated", func(t *testing.T) {
		cfg := &tls.Config{MinVersion: tls.VersionTLS12}
		pooled, err := NewPooled(Config{TLSConfig: cfg, Logger: discardLogger()})
		if err != nil {
			t.Fatalf("NewPooled failed: %s", err)
		}
		defer func() { _ = pooled.Close() }()
		transport, ok := pooled.client.Transport.(*http.Transport)
		if !ok {
			t.Fatal("expected an *http.Transport")
		}
		if transport.TLSClientConfig == cfg {
			t.Error("adapter shares the caller's TLS config instead of a copy")
		}
	})
}
