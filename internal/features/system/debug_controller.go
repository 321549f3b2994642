package system

import (
	"eegdash/internal/features/dashboard"
	"eegdash/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct {
	dashboardService dashboard.DashboardService
}

func NewDebugController(dashboardService dashboard.DashboardService) *DebugController {
	return &DebugController{dashboardService: dashboardService}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Get the current user's info from JWT
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	return ctx.JSON(fiber.Map{
		"user_id": claims.UserID,
		"roles":   claims.Roles,
		"message": "This is your current JWT token data",
	})
}

// ListWorkspaces godoc
// @Summary      List live workspaces
// @Description  Users whose dashboard workspace is currently held in memory
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /api/debug/workspaces [get]
func (c *DebugController) ListWorkspaces(ctx *fiber.Ctx) error {
	users := c.dashboardService.ActiveUsers()
	return ctx.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// EvictWorkspace godoc
// @Summary      Evict a workspace
// @Description  Save and close a user's workspace; the next request restores it from the stored session
// @Tags         debug
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/debug/workspaces/{userId} [delete]
func (c *DebugController) EvictWorkspace(ctx *fiber.Ctx) error {
	if err := c.dashboardService.Evict(ctx.UserContext(), ctx.Params("userId")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
