// internal/middleware/keycloak_auth.go
package middleware

import (
	"errors"
	"log"
	"strings"

	"parentic-api/internal/auth"
	"parentic-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Context keys for verified identity (Fiber Locals)
const (
	UserContextKey   = "currentUser"
	ClaimsContextKey = "tokenClaims"
)

// KeycloakAuth validates the bearer token on each request and materializes
// the local user for the token subject. On success it sets Locals and
// continues; on failure it returns 401.
func KeycloakAuth(keycloak *auth.KeycloakClient, svc *service.ParenticService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Missing bearer token")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := keycloak.VerifyToken(c.Context(), token)
		if err != nil {
			log.Printf("[AUTH] ❌ REJECTED | IP=%s | Path=%s | %v", c.IP(), c.Path(), err)
			if errors.Is(err, auth.ErrTokenExpired) {
				return unauthorized(c, "Token has expired")
			}
			return unauthorized(c, "Invalid token")
		}

		user, err := svc.SyncUserFromClaims(c.Context(), claims)
		if err != nil {
			log.Printf("[AUTH] ❌ Failed to materialize user %s: %v", claims.Subject, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve user",
			})
		}

		c.Locals(UserContextKey, user)
		c.Locals(ClaimsContextKey, claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set("WWW-Authenticate", "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": detail})
}
