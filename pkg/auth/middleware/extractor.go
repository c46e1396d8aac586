package middleware

import (
	"net/http"
	"strings"
)

// extractToken looks at the Authorization header, then the token cookie, then
// the token query parameter (browsers cannot set headers on websocket upgrades).
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return q
	}
	return ""
}
