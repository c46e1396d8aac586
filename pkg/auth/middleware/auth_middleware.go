package middleware

import (
	"context"
	"net/http"

	"ledger-service/pkg/auth/jwtutil"
	"ledger-service/pkg/response"

	"go.uber.org/zap"
)

// AdminLookup confirms that the admin a token was issued to still exists.
type AdminLookup interface {
	AdminExists(ctx context.Context, adminID string) (bool, error)
}

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
	admins   AdminLookup
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier *jwtutil.Verifier, admins AdminLookup, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		admins:   admins,
		logger:   logger,
	}
}

// Require rejects requests without a valid bearer token and stores the
// verified admin identity in the request context.
func (am *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := am.verifier.ParseAndValidate(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if am.admins != nil {
			exists, err := am.admins.AdminExists(r.Context(), claims.AdminID)
			if err != nil {
				am.logger.Error("admin lookup failed",
					zap.String("admin_id", claims.AdminID),
					zap.Error(err))
				response.Error(w, http.StatusInternalServerError, "Failed to verify admin")
				return
			}
			if !exists {
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.Error(w, http.StatusUnauthorized, "Admin not found")
				return
			}
		}

		next.ServeHTTP(w, setContextValues(r, claims, token))
	})
}
