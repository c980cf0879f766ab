package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteAuthError(t *testing.T) {
	testCases := []struct {
		name   string
		detail string
	}{
		{"missing credentials", detailNoCredentials},
		{"invalid token", detailInvalidToken},
		{"inactive user", detailInactiveUser},
		{"no permission", detailNoPermission},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeAuthError(rec, tc.detail)

			if rec.Code != http.StatusForbidden {
				t.Errorf("expected status 403, got %d", rec.Code)
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Error("expected JSON content type")
			}
			want := `{"detail":"` + tc.detail + `"}`
			if rec.Body.String() != want {
				t.Errorf("body = %q, want %q", rec.Body.String(), want)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	testCases := []struct {
		name       string
		authHeader string
		want       string
	}{
		{
			name:       "bearer token",
			authHeader: "Bearer et_live_abc123_secret",
			want:       "et_live_abc123_secret",
		},
		{
			name: "no header",
			want: "",
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc123",
			want:       "",
		},
		{
			name:       "token header scheme rejected",
			authHeader: "Token et_live_abc123_secret",
			want:       "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			got := extractBearerToken(req)
			if got != tc.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAuthErrorDetailsAreQuotedSafely(t *testing.T) {
	// The detail constants are embedded into a JSON literal; none may
	// contain a double quote.
	for _, detail := range []string{detailNoCredentials, detailInvalidToken, detailInactiveUser, detailNoPermission} {
		if strings.Contains(detail, `"`) {
			t.Errorf("detail %q contains a double quote", detail)
		}
	}
}
