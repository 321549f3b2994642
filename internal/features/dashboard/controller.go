package dashboard

import (
	"context"
	"errors"
	"fmt"

	"eegdash/internal/features/gesture"
	"eegdash/internal/features/layout"
	"eegdash/internal/features/popout"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"
	"eegdash/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

var errUnauthorized = errors.New("unauthorized")

type DashboardController struct {
	DashboardService DashboardService
}

func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, widget.ErrNotFound), errors.Is(err, widget.ErrLayoutNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, layout.ErrLayoutConflict),
		errors.Is(err, widget.ErrGestureBusy),
		errors.Is(err, widget.ErrNoGesture),
		errors.Is(err, widget.ErrFlagConflict),
		errors.Is(err, widget.ErrCurrentLayout),
		errors.Is(err, gesture.ErrNotInteractive),
		errors.Is(err, popout.ErrAlreadyPopped),
		errors.Is(err, popout.ErrNotPopped):
		return fiber.StatusConflict
	case errors.Is(err, widget.ErrUnknownWidgetType),
		errors.Is(err, widget.ErrInvalidBounds),
		errors.Is(err, gesture.ErrInvalidHandle):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrWorkspaceClosed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func userID(c *fiber.Ctx) (string, error) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims.UserID == "" {
		return "", errUnauthorized
	}
	return claims.UserID, nil
}

func (ctrl *DashboardController) workspace(c *fiber.Ctx) (*Workspace, error) {
	id, err := userID(c)
	if err != nil {
		return nil, err
	}
	return ctrl.DashboardService.Workspace(c.UserContext(), id)
}

type flagRequest struct {
	Value bool `json:"value"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type resizeStartRequest struct {
	Handle  widget.Handle  `json:"handle"`
	Pointer geometry.Point `json:"pointer"`
}

type popOutResponse struct {
	Widget    *widget.Widget `json:"widget"`
	SurfaceID string         `json:"surfaceId"`
	SocketURL string         `json:"socketUrl"`
}

// GetState godoc
// @Summary Get dashboard state
// @Description Get the current layout, its widgets and any active gesture
// @Tags dashboard
// @Produce json
// @Success 200 {object} widget.Snapshot
// @Failure 401 {object} map[string]interface{}
// @Router /api/dashboard [get]
func (ctrl *DashboardController) GetState(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := ws.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// GetRestoreReport godoc
// @Summary Get restore report
// @Description Describe what was dropped, migrated or minimized when the workspace was restored
// @Tags dashboard
// @Produce json
// @Success 200 {object} RestoreReport
// @Router /api/dashboard/restore-report [get]
func (ctrl *DashboardController) GetRestoreReport(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := ctrl.DashboardService.Workspace(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	report, _ := ctrl.DashboardService.RestoreReport(id)
	return c.JSON(report)
}

// ListOverlaps godoc
// @Summary List overlapping widgets
// @Tags dashboard
// @Produce json
// @Success 200 {array} layout.Overlap
// @Router /api/dashboard/overlaps [get]
func (ctrl *DashboardController) ListOverlaps(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	overlaps, err := ws.Overlaps(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if overlaps == nil {
		overlaps = []layout.Overlap{}
	}
	return c.JSON(overlaps)
}

// SetCanvas godoc
// @Summary Set canvas size
// @Description Resize the canvas; widgets that no longer fit are moved or minimized
// @Tags dashboard
// @Accept json
// @Produce json
// @Param canvas body geometry.Size true "Canvas size"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/canvas [put]
func (ctrl *DashboardController) SetCanvas(c *fiber.Ctx) error {
	var size geometry.Size
	if err := c.BodyParser(&size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if size.Width <= 0 || size.Height <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "canvas size must be positive"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	minimized, err := ws.SetCanvas(c.UserContext(), size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"canvas": size, "minimized": minimized})
}

// SetPolicy godoc
// @Summary Set layout policy
// @Description Change grid size, snapping and collision detection
// @Tags dashboard
// @Accept json
// @Produce json
// @Param policy body widget.Policy true "Policy"
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboard/policy [put]
func (ctrl *DashboardController) SetPolicy(c *fiber.Ctx) error {
	var policy widget.Policy
	if err := c.BodyParser(&policy); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if policy.GridSize < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "gridSize must not be negative"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	minimized, err := ws.SetPolicy(c.UserContext(), policy)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"policy": policy, "minimized": minimized})
}

// AddWidget godoc
// @Summary Add widget
// @Description Create a widget on the current layout at the nearest free position
// @Tags widgets
// @Accept json
// @Produce json
// @Param widget body widget.Spec true "Widget"
// @Success 201 {object} widget.Widget
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets [post]
func (ctrl *DashboardController) AddWidget(c *fiber.Ctx) error {
	var spec widget.Spec
	if err := c.BodyParser(&spec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.AddWidget(c.UserContext(), spec)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// GetWidget godoc
// @Summary Get widget
// @Tags widgets
// @Produce json
// @Param id path string true "Widget ID"
// @Success 200 {object} widget.Widget
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id} [get]
func (ctrl *DashboardController) GetWidget(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.Widget(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// UpdateWidget godoc
// @Summary Update widget
// @Description Apply a partial update; geometry changes go through the layout engine
// @Tags widgets
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param patch body widget.Patch true "Patch"
// @Success 200 {object} widget.Widget
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id} [patch]
func (ctrl *DashboardController) UpdateWidget(c *fiber.Ctx) error {
	var patch widget.Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.UpdateWidget(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// DeleteWidget godoc
// @Summary Remove widget
// @Tags widgets
// @Param id path string true "Widget ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id} [delete]
func (ctrl *DashboardController) DeleteWidget(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.RemoveWidget(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MoveWidget godoc
// @Summary Move widget
// @Tags widgets
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param position body geometry.Point true "Position"
// @Success 200 {object} widget.Widget
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/position [put]
func (ctrl *DashboardController) MoveWidget(c *fiber.Ctx) error {
	var pos geometry.Point
	if err := c.BodyParser(&pos); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.MoveWidget(c.UserContext(), c.Params("id"), pos)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// ResizeWidget godoc
// @Summary Resize widget
// @Tags widgets
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param size body geometry.Size true "Size"
// @Success 200 {object} widget.Widget
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/size [put]
func (ctrl *DashboardController) ResizeWidget(c *fiber.Ctx) error {
	var size geometry.Size
	if err := c.BodyParser(&size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.ResizeWidget(c.UserContext(), c.Params("id"), size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// MinimizeWidget godoc
// @Summary Minimize or restore widget
// @Tags widgets
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param flag body flagRequest true "Minimized"
// @Success 200 {object} widget.Widget
// @Router /api/dashboard/widgets/{id}/minimized [put]
func (ctrl *DashboardController) MinimizeWidget(c *fiber.Ctx) error {
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.SetMinimized(c.UserContext(), c.Params("id"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// MaximizeWidget godoc
// @Summary Maximize or restore widget
// @Tags widgets
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param flag body flagRequest true "Maximized"
// @Success 200 {object} widget.Widget
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/maximized [put]
func (ctrl *DashboardController) MaximizeWidget(c *fiber.Ctx) error {
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.SetMaximized(c.UserContext(), c.Params("id"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// SelectWidget godoc
// @Summary Select widget
// @Tags widgets
// @Param id path string true "Widget ID"
// @Success 204
// @Router /api/dashboard/widgets/{id}/select [post]
func (ctrl *DashboardController) SelectWidget(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.SelectWidget(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearSelection godoc
// @Summary Clear selection
// @Tags widgets
// @Success 204
// @Router /api/dashboard/selection [delete]
func (ctrl *DashboardController) ClearSelection(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.ClearSelection(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BringToFront godoc
// @Summary Bring widget to front
// @Tags widgets
// @Param id path string true "Widget ID"
// @Success 204
// @Router /api/dashboard/widgets/{id}/front [post]
func (ctrl *DashboardController) BringToFront(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.BringToFront(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartDrag godoc
// @Summary Start drag
// @Tags gestures
// @Accept json
// @Param id path string true "Widget ID"
// @Param pointer body geometry.Point true "Pointer"
// @Success 204
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/drag [post]
func (ctrl *DashboardController) StartDrag(c *fiber.Ctx) error {
	var pointer geometry.Point
	if err := c.BodyParser(&pointer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.StartDrag(c.UserContext(), c.Params("id"), pointer); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DragTo godoc
// @Summary Move drag pointer
// @Description Returns the preview position; a rejected move keeps the previous preview
// @Tags gestures
// @Accept json
// @Produce json
// @Param pointer body geometry.Point true "Pointer"
// @Success 200 {object} geometry.Point
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/drag [put]
func (ctrl *DashboardController) DragTo(c *fiber.Ctx) error {
	var pointer geometry.Point
	if err := c.BodyParser(&pointer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	pos, err := ws.DragTo(c.UserContext(), pointer)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error(), "position": pos})
	}
	return c.JSON(pos)
}

// EndDrag godoc
// @Summary End drag
// @Tags gestures
// @Produce json
// @Success 200 {object} widget.Widget
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/drag/end [post]
func (ctrl *DashboardController) EndDrag(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.EndDrag(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// CancelDrag godoc
// @Summary Cancel drag
// @Tags gestures
// @Produce json
// @Success 200 {object} widget.Widget
// @Router /api/dashboard/drag [delete]
func (ctrl *DashboardController) CancelDrag(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.CancelDrag(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// StartResize godoc
// @Summary Start resize
// @Tags gestures
// @Accept json
// @Param id path string true "Widget ID"
// @Param resize body resizeStartRequest true "Handle and pointer"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/resize [post]
func (ctrl *DashboardController) StartResize(c *fiber.Ctx) error {
	var req resizeStartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.StartResize(c.UserContext(), c.Params("id"), req.Handle, req.Pointer); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ResizeTo godoc
// @Summary Move resize pointer
// @Tags gestures
// @Accept json
// @Produce json
// @Param pointer body geometry.Point true "Pointer"
// @Success 200 {object} geometry.Rect
// @Router /api/dashboard/resize [put]
func (ctrl *DashboardController) ResizeTo(c *fiber.Ctx) error {
	var pointer geometry.Point
	if err := c.BodyParser(&pointer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	rect, err := ws.ResizeTo(c.UserContext(), pointer)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error(), "rect": rect})
	}
	return c.JSON(rect)
}

// EndResize godoc
// @Summary End resize
// @Tags gestures
// @Produce json
// @Success 200 {object} widget.Widget
// @Router /api/dashboard/resize/end [post]
func (ctrl *DashboardController) EndResize(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.EndResize(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// CancelResize godoc
// @Summary Cancel resize
// @Tags gestures
// @Produce json
// @Success 200 {object} widget.Widget
// @Router /api/dashboard/resize [delete]
func (ctrl *DashboardController) CancelResize(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.CancelResize(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// PopOutWidget godoc
// @Summary Pop widget out
// @Description Open a secondary surface for the widget; the surface connects to socketUrl
// @Tags popout
// @Produce json
// @Param id path string true "Widget ID"
// @Success 200 {object} popOutResponse
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/popout [post]
func (ctrl *DashboardController) PopOutWidget(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, surfaceID, err := ws.PopOut(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(popOutResponse{
		Widget:    w,
		SurfaceID: surfaceID,
		SocketURL: fmt.Sprintf("/api/popout/ws/%s", surfaceID),
	})
}

// PopInWidget godoc
// @Summary Pop widget in
// @Tags popout
// @Produce json
// @Param id path string true "Widget ID"
// @Success 200 {object} widget.Widget
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/widgets/{id}/popin [post]
func (ctrl *DashboardController) PopInWidget(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	w, err := ws.PopIn(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

// ListLayouts godoc
// @Summary List layouts
// @Tags layouts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboard/layouts [get]
func (ctrl *DashboardController) ListLayouts(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	layouts, current, err := ws.Layouts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"layouts": layouts, "currentLayoutId": current})
}

// GetLayout godoc
// @Summary Get layout
// @Tags layouts
// @Produce json
// @Param layoutId path string true "Layout ID"
// @Success 200 {object} widget.DashboardLayout
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboard/layouts/{layoutId} [get]
func (ctrl *DashboardController) GetLayout(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	l, err := ws.Layout(c.UserContext(), c.Params("layoutId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(l)
}

// CreateLayout godoc
// @Summary Create layout
// @Tags layouts
// @Accept json
// @Produce json
// @Param layout body nameRequest true "Layout name"
// @Success 201 {object} widget.DashboardLayout
// @Router /api/dashboard/layouts [post]
func (ctrl *DashboardController) CreateLayout(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	l, err := ws.CreateLayout(c.UserContext(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// RenameLayout godoc
// @Summary Rename layout
// @Tags layouts
// @Accept json
// @Param layoutId path string true "Layout ID"
// @Param layout body nameRequest true "Layout name"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboard/layouts/{layoutId} [put]
func (ctrl *DashboardController) RenameLayout(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.RenameLayout(c.UserContext(), c.Params("layoutId"), req.Name); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteLayout godoc
// @Summary Delete layout
// @Tags layouts
// @Param layoutId path string true "Layout ID"
// @Success 204
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/layouts/{layoutId} [delete]
func (ctrl *DashboardController) DeleteLayout(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := ws.DeleteLayout(c.UserContext(), c.Params("layoutId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SwitchLayout godoc
// @Summary Switch layout
// @Description Pop every widget back in and make another layout current
// @Tags layouts
// @Produce json
// @Param layoutId path string true "Layout ID"
// @Success 200 {object} widget.Snapshot
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboard/layouts/{layoutId}/switch [post]
func (ctrl *DashboardController) SwitchLayout(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := ws.SwitchLayout(c.UserContext(), c.Params("layoutId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// ExportLayout godoc
// @Summary Export layout
// @Description Download a layout's widgets as an Excel sheet
// @Tags layouts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param layoutId path string true "Layout ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboard/layouts/{layoutId}/export [get]
func (ctrl *DashboardController) ExportLayout(c *fiber.Ctx) error {
	ws, err := ctrl.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	l, err := ws.Layout(c.UserContext(), c.Params("layoutId"))
	if err != nil {
		return respondError(c, err)
	}
	buf, err := ExportLayout(l)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename(l)))
	return c.Send(buf.Bytes())
}
