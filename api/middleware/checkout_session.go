package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	sessionHeader = "X-Checkout-Session"
	sessionCookie = "checkout_session"
)

type sessionIDKey struct{}

// CheckoutSession resolves the buyer's checkout session id from the
// request, minting one when the buyer arrives without it. The id is
// echoed back on both the header and the cookie so either transport
// works for the next request.
func CheckoutSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(sessionHeader)
			if id == "" {
				if cookie, err := r.Cookie(sessionCookie); err == nil {
					id = cookie.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(sessionHeader, id)
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the checkout session id resolved by
// CheckoutSession, or "" when the middleware did not run.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
