package middleware

import (
	"context"
	"net/http"

	"ledger-service/pkg/auth/jwtutil"
)

type contextKey string

const (
	ContextAdminID contextKey = "adminID"
	ContextLoginID contextKey = "loginID"
	ContextToken   contextKey = "token"
)

func GetAdminID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextAdminID).(string)
	return val, ok && val != ""
}

func GetToken(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextToken).(string)
	return val, ok
}

func setContextValues(r *http.Request, claims *jwtutil.Claims, token string) *http.Request {
	ctx := context.WithValue(r.Context(), ContextAdminID, claims.AdminID)
	ctx = context.WithValue(ctx, ContextLoginID, claims.LoginID)
	ctx = context.WithValue(ctx, ContextToken, token)
	return r.WithContext(ctx)
}
