package middleware

import (
	"slices"
	"strings"

	"eegdash/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const RoleAdmin = "admin"

// RequireRole must run after AuthMiddleware. Role names compare case-insensitively.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !slices.ContainsFunc(claims.Roles, func(r string) bool { return strings.EqualFold(r, role) }) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: " + role + " role required",
			})
		}

		return c.Next()
	}
}
