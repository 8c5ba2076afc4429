// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geoerr defines the error taxonomy shared by every transport
// adapter and every geocoder. All provider- and transport-specific
// failures are classified into these kinds at the adapter boundary.
//
// The kinds form a two-level hierarchy. ErrGeocode is the root of
// everything, ErrService is the root of all remote-call failures.
// Callers check with errors.Is, e.g. errors.Is(err, geoerr.ErrService)
// matches any remote failure, while errors.Is(err, geoerr.ErrTimedOut)
// matches only timeouts. Errors are produced by wrapping a kind with
// fmt.Errorf("...: %w", kind).
package geoerr

import (
	"fmt"
	"time"
)

// Error is a single kind in the taxonomy. The exported package variables
// below are the only instances.
type Error struct {
	msg    string
	parent *Error
}

func kind(msg string, parent *Error) *Error {
	return &Error{msg: msg, parent: parent}
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Is reports whether target is this kind or one of its ancestors, which
// makes errors.Is match a leaf kind against its parents.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	for k := e; k != nil; k = k.parent {
		if k == other {
			return true
		}
	}
	return false
}

var (
	// ErrGeocode is the root of the taxonomy. Every error returned by this
	// module matches it.
	ErrGeocode = kind("geocoding error", nil)

	// ErrConfiguration indicates invalid construction arguments, e.g. a
	// missing credential or an unsupported scheme. It is not a remote
	// failure and is never retried.
	ErrConfiguration = kind("configuration error", ErrGeocode)

	// ErrService is the root of all remote-call failures and the least
	// specific kind an adapter or geocoder may return.
	ErrService = kind("geocoding service error", ErrGeocode)

	// ErrQuery indicates the remote service rejected the request as
	// malformed, or that input was detected which would cause a request
	// to fail.
	ErrQuery = kind("query rejected by the geocoding service", ErrService)

	// ErrQuotaExceeded indicates the remote service refused the request
	// because the usage quota has been spent.
	ErrQuotaExceeded = kind("geocoding service quota exceeded", ErrService)

	// ErrRateLimited indicates the remote service has rate-limited the
	// request. Retrying later might help. It is a child of
	// ErrQuotaExceeded. See RateLimitedError for the Retry-After value.
	ErrRateLimited = kind("rate limited by the geocoding service", ErrQuotaExceeded)

	// ErrAuthenticationFailure indicates the remote service rejected the
	// credentials the geocoder was constructed with.
	ErrAuthenticationFailure = kind("geocoding service authentication failure", ErrService)

	// ErrInsufficientPrivileges indicates the credentials were accepted
	// but do not permit the requested operation.
	ErrInsufficientPrivileges = kind("insufficient privileges for the geocoding service", ErrService)

	// ErrTimedOut indicates no response was received within the timeout
	// budget of the call.
	ErrTimedOut = kind("geocoding service timed out", ErrService)

	// ErrUnavailable indicates a connection to the remote service could
	// not be established.
	ErrUnavailable = kind("geocoding service not available", ErrService)

	// ErrParse indicates the response body could not be decoded as the
	// expected format.
	ErrParse = kind("could not parse the geocoding service response", ErrService)
)

// RateLimitedError carries the Retry-After value of a rate-limited
// response. It matches ErrRateLimited and, transitively, ErrQuotaExceeded
// and ErrService.
type RateLimitedError struct {
	// RetryAfter is the wait the service asked for. Zero if the response
	// did not carry one.
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", ErrRateLimited.msg, e.RetryAfter)
	}
	return ErrRateLimited.msg
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
