// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package ratelimit wraps a geocoding call with inter-call pacing and
// bounded retries, for bulk operations that would otherwise hammer a
// service:
//
//	coder, _ := nominatim.New(nominatim.Options{})
//	limited, _ := ratelimit.New(coder.Geocode, ratelimit.Config[*geocode.Location]{
//		MinDelay:      time.Second,
//		MaxRetries:    2,
//		ErrorWait:     5 * time.Second,
//		SwallowErrors: true,
//	})
//	for _, address := range addresses {
//		location, _ := limited.Call(ctx, address)
//		...
//	}
//
// Only remote failures (errors matching geoerr.ErrService) are retried.
// Anything else, including configuration and programming errors, is
// returned immediately: retrying indiscriminately would mask bugs.
//
// Before wrapping bulk requests, consult the geocoding service's terms;
// some services consider bulk requests a violation even when throttled.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/go-geocode/geoerr"
)

// Func is the shape of a wrappable call, matching the Geocode and
// Reverse methods of the geocode.Geocoder interface.
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// Config configures a Limiter. Use DefaultConfig for the recommended
// starting values.
type Config[R any] struct {
	// MinDelay is the minimum delay between consecutive calls of the
	// wrapped function. To keep a rate of n requests per second, use
	// time.Second / n.
	MinDelay time.Duration
	// MaxRetries bounds retries of remote failures. At most
	// MaxRetries+1 calls are performed per invocation. Zero disables
	// retries, negative is a configuration error.
	MaxRetries int
	// ErrorWait is the wait between retries after a remote failure. It
	// must be greater than or equal to MinDelay.
	ErrorWait time.Duration
	// SwallowErrors returns Fallback instead of the error once retries
	// are exhausted.
	SwallowErrors bool
	// Fallback is the value returned for a swallowed error.
	Fallback R
	// Logger receives retry and swallow warnings. Nil falls back to a
	// stderr text handler.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended configuration: two retries with
// a five second error wait, swallowing exhausted errors.
func DefaultConfig[R any]() Config[R] {
	return Config[R]{
		MaxRetries:    2,
		ErrorWait:     5 * time.Second,
		SwallowErrors: true,
	}
}

// Limiter paces and retries calls of one wrapped function. A Limiter
// serves one logical caller; it is not synchronized for concurrent use.
type Limiter[A, R any] struct {
	fn     Func[A, R]
	cfg    Config[R]
	logger *slog.Logger

	clock    clockwork.Clock
	sleep    func(time.Duration)
	lastCall time.Time
}

// New returns a Limiter wrapping fn. The configuration invariants
// (ErrorWait >= MinDelay, MaxRetries >= 0) are checked here.
func New[A, R any](fn Func[A, R], cfg Config[R]) (*Limiter[A, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: ratelimit requires a function to wrap", geoerr.ErrConfiguration)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: MaxRetries must not be negative, got %d", geoerr.ErrConfiguration, cfg.MaxRetries)
	}
	if cfg.ErrorWait < cfg.MinDelay {
		return nil, fmt.Errorf("%w: ErrorWait (%s) must be >= MinDelay (%s)",
			geoerr.ErrConfiguration, cfg.ErrorWait, cfg.MinDelay)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	clock := clockwork.NewRealClock()
	return &Limiter[A, R]{
		fn:     fn,
		cfg:    cfg,
		logger: logger,
		clock:  clock,
		sleep:  clock.Sleep,
	}, nil
}

// Call invokes the wrapped function, sleeping beforehand if the previous
// call completed less than MinDelay ago. Remote failures are retried up
// to MaxRetries times with an ErrorWait sleep in between; once retries
// are exhausted the error is either swallowed into Fallback or
// returned. All other errors are returned from the first attempt.
func (l *Limiter[A, R]) Call(ctx context.Context, arg A) (R, error) {
	var zero R
	for attempt := 0; ; attempt++ {
		l.pace()
		result, err := l.invoke(ctx, arg)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, geoerr.ErrService) {
			return zero, err
		}
		if attempt >= l.cfg.MaxRetries {
			if l.cfg.SwallowErrors {
				l.logger.Warn("swallowing error after retries are exhausted",
					slog.Int("retries", l.cfg.MaxRetries),
					slog.Any("argument", arg),
					slog.Any("error", err))
				return l.cfg.Fallback, nil
			}
			return zero, err
		}
		l.logger.Warn("caught an error, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", l.cfg.MaxRetries),
			slog.Any("argument", arg),
			slog.Any("error", err))
		l.sleep(l.cfg.ErrorWait)
	}
}

// invoke runs one attempt. The completion timestamp is recorded on every
// exit path; the next pace measures from it.
func (l *Limiter[A, R]) invoke(ctx context.Context, arg A) (result R, err error) {
	defer func() {
		l.lastCall = l.clock.Now()
	}()
	return l.fn(ctx, arg)
}

func (l *Limiter[A, R]) pace() {
	if l.lastCall.IsZero() {
		return
	}
	if wait := l.cfg.MinDelay - l.clock.Since(l.lastCall); wait > 0 {
		l.sleep(wait)
	}
}
