package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
}

// Authenticate attaches the caller's identity when a valid session token is
// present. Requests without a token continue anonymously; a token that does
// not verify is rejected. A nil verifier treats every request as anonymous.
func Authenticate(v auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.TokenFromRequest(r)
			if errors.Is(err, auth.ErrNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				WriteError(w, r, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "session token rejected", "err", err)
				WriteError(w, r, http.StatusUnauthorized, "invalid session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			WriteError(w, r, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(checker AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				WriteError(w, r, http.StatusUnauthorized, "sign in required")
				return
			}
			isAdmin, err := checker.IsAdmin(r.Context(), id.UserID, id.Email)
			if err != nil {
				logger.ErrorContext(r.Context(), "admin check failed", "user_id", id.UserID, "err", err)
				WriteError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}
			if !isAdmin {
				WriteError(w, r, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
