package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

// CartSessionHeader scopes cart and checkout routes to one browsing session.
const CartSessionHeader = "X-Cart-Session"

type cartSessionKey struct{}

// CartSession mints a session id when the client has none and echoes it back
// on every response so the storefront can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(CartSessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(CartSessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), cartSessionKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartSessionID returns the browsing-session id installed by CartSession.
func CartSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(cartSessionKey{}).(string); ok {
		return id
	}
	return ""
}
