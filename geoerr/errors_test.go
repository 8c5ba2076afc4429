// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		target  *Error
		matches bool
	}{
		{"timeout matches itself", ErrTimedOut, ErrTimedOut, true},
		{"timeout matches service", ErrTimedOut, ErrService, true},
		{"timeout matches root", ErrTimedOut, ErrGeocode, true},
		{"timeout does not match unavailable", ErrTimedOut, ErrUnavailable, false},
		{"service does not match timeout", ErrService, ErrTimedOut, false},
		{"rate limit matches quota", ErrRateLimited, ErrQuotaExceeded, true},
		{"rate limit matches service", ErrRateLimited, ErrService, true},
		{"quota does not match rate limit", ErrQuotaExceeded, ErrRateLimited, false},
		{"configuration matches root", ErrConfiguration, ErrGeocode, true},
		{"configuration does not match service", ErrConfiguration, ErrService, false},
		{"query matches service", ErrQuery, ErrService, true},
		{"auth matches service", ErrAuthenticationFailure, ErrService, true},
		{"privileges matches service", ErrInsufficientPrivileges, ErrService, true},
		{"parse matches service", ErrParse, ErrService, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.matches {
				t.Errorf("errors.Is(%v, %v) = %t, want %t", tt.err, tt.target, got, tt.matches)
			}
		})
	}
}

func TestError_Is_wrapped(t *testing.T) {
	err := fmt.Errorf("lookup failed: %w", ErrTimedOut)
	if !errors.Is(err, ErrTimedOut) {
		t.Error("wrapped error does not match its own kind")
	}
	if !errors.Is(err, ErrService) {
		t.Error("wrapped error does not match the parent kind")
	}
	if errors.Is(err, ErrConfiguration) {
		t.Error("wrapped error matches an unrelated kind")
	}
}

func TestError_Is_foreignTarget(t *testing.T) {
	if errors.Is(ErrTimedOut, errors.New("geocoding service timed out")) {
		t.Error("kind matches a foreign error with the same message")
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("matches the taxonomy", func(t *testing.T) {
		var err error = &RateLimitedError{RetryAfter: 30 * time.Second}
		if !errors.Is(err, ErrRateLimited) {
			t.Error("RateLimitedError does not match ErrRateLimited")
		}
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Error("RateLimitedError does not match ErrQuotaExceeded")
		}
		if !errors.Is(err, ErrService) {
			t.Error("RateLimitedError does not match ErrService")
		}
	})
	t.Run("message includes the wait", func(t *testing.T) {
		err := &RateLimitedError{RetryAfter: 30 * time.Second}
		if !strings.Contains(err.Error(), "30s") {
			t.Errorf("error message %q does not mention the retry-after value", err.Error())
		}
	})
	t.Run("message without a wait", func(t *testing.T) {
		err := &RateLimitedError{}
		if strings.Contains(err.Error(), "retry after") {
			t.Errorf("error message %q mentions a retry-after value that was not set", err.Error())
		}
	})
	t.Run("recoverable via errors.As", func(t *testing.T) {
		wrapped := fmt.Errorf("service response: %w", &RateLimitedError{RetryAfter: time.Minute})
		var rlErr *RateLimitedError
		if !errors.As(wrapped, &rlErr) {
			t.Fatal("errors.As failed to recover the RateLimitedError")
		}
		if rlErr.RetryAfter != time.Minute {
			t.Errorf("RetryAfter = %s, want %s", rlErr.RetryAfter, time.Minute)
		}
	})
}
