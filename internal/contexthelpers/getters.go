package contexthelpers

import (
	"context"
)

// IsAuthenticated reports whether the request carries a verified session.
func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUserID returns the profile id of the authenticated caller, or 0 if none.
func AuthenticatedUserID(ctx context.Context) int {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int)
	if !ok {
		return 0
	}

	return userID
}

// CurrentPath returns the request path stashed by the routing middleware.
func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}
