package middleware

import (
	"errors"
	"net/http"
	"strings"

	"edupay-service/pkg/jwtutil"
	"edupay-service/pkg/logger"
	"edupay-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenVerifier decodes a bearer token into the caller identity
type TokenVerifier interface {
	Verify(token string) (jwtutil.Identity, error)
}

// RequireRoles authenticates the bearer token and admits only the given roles.
// With no roles any authenticated caller passes.
func RequireRoles(tokens TokenVerifier, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token manquant"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token invalide"})
			}

			identity, err := tokens.Verify(parts[1])
			if err != nil {
				if errors.Is(err, jwtutil.ErrExpiredToken) {
					log.Warn("Expired JWT token")
					prometheus.RecordAuthError("expired_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token expiré"})
				}
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token invalide ou expiré"})
			}

			if len(allowed) > 0 {
				if _, ok := allowed[identity.Role]; !ok {
					log.Warn("Role not allowed on route",
						zap.String("role", identity.Role),
						zap.String("path", c.Path()))
					prometheus.RecordAuthError("forbidden_role")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "Accès refusé"})
				}
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by RequireRoles
func IdentityFrom(c echo.Context) (jwtutil.Identity, bool) {
	identity, ok := c.Get(identityKey).(jwtutil.Identity)
	return identity, ok
}
