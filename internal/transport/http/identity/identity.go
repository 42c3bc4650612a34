package identity

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey struct{}

// Header carries the authenticated user id, injected by the auth
// collaborator in front of this service.
const Header = "X-User-Id"

// Middleware extracts the identity header into the request context. Requests
// without a valid identity are rejected before reaching handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(Header))
		if err != nil {
			http.Error(w, "missing or invalid "+Header+" header", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, userID)))
	})
}

// FromContext returns the authenticated user id set by Middleware.
func FromContext(ctx context.Context) uuid.UUID {
	userID, _ := ctx.Value(contextKey{}).(uuid.UUID)

	return userID
}
