package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
)

const (
	CartSessionCookie = "cart_session"
	HeaderCartSession = "X-Cart-Session"

	ctxCartScope ctxKey = "cart_scope"

	cartSessionMaxAge = 30 * 24 * time.Hour
)

// CartSession resolves which cart a request addresses. Signed-in users get
// "user:<id>"; anonymous visitors get "anon:<uuid>" from the session cookie
// or header, and a fresh session cookie is issued when neither is present.
func CartSession(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var scope string
			if id, ok := auth.FromContext(r.Context()); ok {
				scope = "user:" + id.UserID
			} else {
				sid := anonymousSession(r)
				if sid == "" {
					sid = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     CartSessionCookie,
						Value:    sid,
						Path:     "/",
						MaxAge:   int(cartSessionMaxAge.Seconds()),
						HttpOnly: true,
						Secure:   secureCookie,
						SameSite: http.SameSiteLaxMode,
					})
				}
				w.Header().Set(HeaderCartSession, sid)
				scope = "anon:" + sid
			}

			ctx := context.WithValue(r.Context(), ctxCartScope, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func anonymousSession(r *http.Request) string {
	if c, err := r.Cookie(CartSessionCookie); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			return id.String()
		}
	}
	if id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderCartSession))); err == nil {
		return id.String()
	}
	return ""
}

func GetCartScope(ctx context.Context) string {
	if v := ctx.Value(ctxCartScope); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
