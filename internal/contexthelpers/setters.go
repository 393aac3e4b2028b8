package contexthelpers

import (
	"context"
	"net/http"
)

// AuthenticateContext stamps the request context with the authenticated profile id.
func AuthenticateContext(r *http.Request, userID int) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}

// SetCurrentPath stashes the resolved route path for downstream logging and templates.
func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, CurrentPathContextKey, currentPath)
	return r.WithContext(ctx)
}
