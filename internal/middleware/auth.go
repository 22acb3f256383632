package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/user"
	"storefront/internal/utils"

	"go.uber.org/zap"
)

// TokenCookie is read when a request carries no Authorization header.
const TokenCookie = "token"

// AuthMiddleware is passive: anonymous requests pass through untouched,
// a valid token puts the user into the context, a bad token is rejected.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := accessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseJWT(tokenStr)
		if err != nil {
			logger.FromCtx(r.Context()).Info("rejected access token", zap.Error(err))
			utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := utils.WithIdentity(r.Context(), utils.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessToken takes a bearer token from the Authorization header, falling
// back to the token cookie. Other schemes count as no token.
func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}
