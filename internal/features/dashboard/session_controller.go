package dashboard

import (
	"eegdash/internal/features/session"

	"github.com/gofiber/fiber/v2"
)

type SessionController struct {
	DashboardService DashboardService
}

func NewSessionController(dashboardService DashboardService) *SessionController {
	return &SessionController{
		DashboardService: dashboardService,
	}
}

func (ctrl *SessionController) workspace(c *fiber.Ctx) (*Workspace, error) {
	id, err := userID(c)
	if err != nil {
		return nil, err
	}
	return ctrl.DashboardService.Workspace(c.UserContext(), id)
}

// GetSession godoc
// @Summary Get session
// @Description Get the user's UI session: active tab, panel sizes, file manager state and layouts
// @Tags session
// @Produce json
// @Success 200 {object} session.SessionState
// @Failure 401 {object} map[string]interface{}
// @Router /api/session [get]
func (ctrl *SessionController) GetSession(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	state, err := ws.Session(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// UpdateSession godoc
// @Summary Update session
// @Description Merge activeTab, panelSizes and fileManager into the session. The write is debounced.
// @Tags session
// @Accept json
// @Produce json
// @Param session body session.Patch true "Session patch"
// @Success 200 {object} session.SessionState
// @Failure 400 {object} map[string]interface{}
// @Router /api/session [put]
func (ctrl *SessionController) UpdateSession(c *fiber.Ctx) error {
	var patch session.Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	for _, size := range patch.PanelSizes {
		if size < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "panel sizes must not be negative"})
		}
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	state, err := ws.SaveSession(c.UserContext(), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// FlushSession godoc
// @Summary Save session now
// @Description Write any pending session change without waiting for the debounce
// @Tags session
// @Success 204
// @Failure 500 {object} map[string]interface{}
// @Router /api/session/flush [post]
func (ctrl *SessionController) FlushSession(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.Flush(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearSession godoc
// @Summary Clear session
// @Description Remove the stored session record
// @Tags session
// @Success 204
// @Failure 500 {object} map[string]interface{}
// @Router /api/session [delete]
func (ctrl *SessionController) ClearSession(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.ClearSession(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
