package middleware

import (
	"context"
	"net/http"

	"github.com/mindhaven/backend/pkg/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Identity lifts the authenticated user id out of the X-User-ID header, set
// by the upstream identity provider, into the request context. Requests
// without it are rejected before reaching any handler.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			utils.RespondError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id placed by Identity, or "" when
// the request skipped the middleware.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
