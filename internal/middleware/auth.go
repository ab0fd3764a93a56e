// Package middleware provides HTTP middleware components for the application.
// Tokens are issued by the external auth service; this package only verifies
// them and enforces roles and permissions.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

// AuthMiddleware handles JWT token validation.
type AuthMiddleware struct {
	secret string
	log    logrus.FieldLogger
}

func NewAuthMiddleware(secret string, log logrus.FieldLogger) *AuthMiddleware {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthMiddleware{secret: secret, log: logger.For(log, "auth")}
}

// Handler validates the bearer token and stores its claims in Locals.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		// EventSource cannot set headers; allow the token as a query parameter.
		if t := c.Query("access_token"); t != "" {
			authHeader = "Bearer " + t
		}
	}
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	_, claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.log.WithError(err).WithField("path", c.Path()).Debug("token rejected")
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals(utils.ClaimsKey, claims)
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Tokens without an explicit permission list get their role's defaults.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return utils.Unauthorized(c, "unauthorized")
		}
		for _, p := range claims.EffectivePermissions() {
			if p == permission {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}
