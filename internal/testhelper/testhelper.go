// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the test suites.
package testhelper

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
)

// TestPerformOnlineTests is the environment variable that enables tests
// hitting the public geocoding APIs.
const TestPerformOnlineTests = "PERFORM_ONLINE_TESTS"

// MockRoundTripper replaces a http.Transport in tests with the given
// round-trip function.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

// RoundTrip satisfies the http.RoundTripper interface.
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// Response builds a *http.Response with the given status code, headers
// and body, suitable for returning from a MockRoundTripper.
func Response(statusCode int, headers map[string]string, body []byte) *http.Response {
	header := make(http.Header)
	for k, v := range headers {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

// PerformIntegrationTests skips the current test unless online tests
// have been enabled via the PERFORM_ONLINE_TESTS environment variable.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	enabled, err := strconv.ParseBool(os.Getenv(TestPerformOnlineTests))
	if err != nil || !enabled {
		t.Skipf("%s is not set, skipping integration test", TestPerformOnlineTests)
	}
}
