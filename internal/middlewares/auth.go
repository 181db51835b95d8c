package middlewares

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/auth-api/internal/jwt"
	"github.com/sbilibin2017/auth-api/internal/logger"
)

// Tokener defines the minimal token interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString, expectedType string) (*jwt.Claims, error)
}

// RevocationChecker answers whether a jti has been revoked
type RevocationChecker interface {
	Exists(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware returns a middleware that admits only valid, unrevoked
// access tokens. Verified claims are stored in the request context.
func AuthMiddleware(tokener Tokener, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString, jwt.TokenTypeAccess)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			revoked, err := revocations.Exists(ctx, claims.ID)
			if err != nil {
				logger.Log.Errorw("revocation check failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if revoked {
				logger.Log.Errorw("authorization failed: token revoked", "jti", claims.ID)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx = setClaimsToContext(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var claimsKey = contextKey{}

// setClaimsToContext stores verified claims in the context
func setClaimsToContext(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaimsFromContext retrieves verified claims from the context. Returns nil if not present.
func GetClaimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return claims
}
