package middleware

import (
	"errors"
	"strings"

	"eegdash/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// DevUserID is the user every request runs as when auth is skipped
const DevUserID = "dev-admin-id"

// tokenQueryParam carries the token where headers cannot be set: WebSocket
// upgrades from popout windows and download links
const tokenQueryParam = "access_token"

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query(tokenQueryParam); token != "" {
			return token, nil
		}
		return "", errors.New("Authorization header required")
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("Invalid authorization header format")
	}
	return token, nil
}

// AuthMiddleware validates JWT tokens and injects user claims into context
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			// Inject dummy context for dev
			dummyClaims := &utils.UserClaims{
				UserID: DevUserID,
				Roles:  []string{RoleAdmin},
			}
			c.Locals(utils.UserClaimsKey, dummyClaims)
			return c.Next()
		}

		token, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(utils.UserClaimsKey, claims)
		return c.Next()
	}
}
