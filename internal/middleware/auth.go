package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/pkg/utils"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"userID"}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

var _ TokenVerifier = (*auth.TokenService)(nil)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is missing or uses another scheme.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticate admits only requests carrying a valid token and stores the
// caller's id in the request context. A missing token is 401; a token that
// fails verification is 403.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				utils.WriteMessage(w, http.StatusUnauthorized, "Access token required")
				return
			}
			userID, err := tokens.Verify(token)
			if err != nil {
				utils.WriteMessage(w, http.StatusForbidden, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	if slot, ok := ctx.Value(userIDSlotKey).(*userIDSlot); ok {
		slot.id = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func contextWithSlot(r *http.Request, slot *userIDSlot) context.Context {
	return context.WithValue(r.Context(), userIDSlotKey, slot)
}

// UserIDFromContext returns the id set by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
