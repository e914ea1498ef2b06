// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewFormRequest creates a POST request with a url-encoded form body.
func NewFormRequest(t *testing.T, path string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertStatusOK asserts the response status is 200 OK.
func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// AssertHTML asserts a 200 HTML document.
func AssertHTML(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatusOK(t, rr)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

// AssertPlainText asserts status and exact plain-text body.
func AssertPlainText(t *testing.T, rr *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	AssertStatus(t, rr, status)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, body, rr.Body.String())
}

// AssertRedirect asserts a 302 to location.
func AssertRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatus(t, rr, http.StatusFound)
	assert.Equal(t, location, rr.Header().Get("Location"))
}
