package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSRFToken(t *testing.T) {
	handler := GenerateCSRFToken(false)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, CSRFTokenFromContext(r), "expected CSRF token in context")
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "csrf_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "expected CSRF cookie to be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestGenerateCSRFTokenReusesExisting(t *testing.T) {
	handler := GenerateCSRFToken(false)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "existing-token", CSRFTokenFromContext(r))
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "existing-token"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Result().Cookies(), "existing token should not be reissued")
}

func TestValidateCSRFToken(t *testing.T) {
	token := "test-token-123"

	tests := []struct {
		name           string
		method         string
		cookie         *http.Cookie
		formToken      string
		expectedStatus int
	}{
		{
			name:           "valid POST request",
			method:         "POST",
			cookie:         &http.Cookie{Name: "csrf_token", Value: token},
			formToken:      token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "GET requests skip validation",
			method:         "GET",
			cookie:         nil,
			formToken:      "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing cookie",
			method:         "POST",
			cookie:         nil,
			formToken:      token,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "mismatched form token",
			method:         "POST",
			cookie:         &http.Cookie{Name: "csrf_token", Value: token},
			formToken:      "something-else",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing form token",
			method:         "POST",
			cookie:         &http.Cookie{Name: "csrf_token", Value: token},
			formToken:      "",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.formToken != "" {
				form.Set("csrf_token", tt.formToken)
			}
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			rr := httptest.NewRecorder()
			ValidateCSRFToken()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
