package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/utils/auth"
)

// AdminOnly lets through requests carrying a valid bearer token with the admin role.
func AdminOnly(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authFunc := func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := auth.TokenFromRequest(r)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"failed to find token in request",
					slog.Any(model.KeyLoggerError, err),
				)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			claims, err := auth.CheckToken(tokenStr, secret)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"authentication failed",
					slog.Any(model.KeyLoggerError, err),
				)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}
			if claims.Role != auth.RoleAdmin {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"not an admin token",
					slog.String("subject", claims.Subject),
					slog.String("role", claims.Role),
				)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(authFunc)
	}
}
