package dashboard

import (
	"eegdash/internal/common/api"
	"eegdash/internal/config"
	"eegdash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	DashboardController *DashboardController
	Config              *config.Config
}

func NewDashboardApi(dashboardController *DashboardController, cfg *config.Config) api.Route {
	return &DashboardApi{
		DashboardController: dashboardController,
		Config:              cfg,
	}
}

func (api *DashboardApi) Setup(app *fiber.App) {
	group := app.Group("/api/dashboard", middleware.AuthMiddleware(api.Config.SkipAuth))
	ctrl := api.DashboardController

	group.Get("/", ctrl.GetState)
	group.Get("/restore-report", ctrl.GetRestoreReport)
	group.Get("/overlaps", ctrl.ListOverlaps)
	group.Put("/canvas", ctrl.SetCanvas)
	group.Put("/policy", ctrl.SetPolicy)
	group.Delete("/selection", ctrl.ClearSelection)

	group.Post("/widgets", ctrl.AddWidget)
	group.Get("/widgets/:id", ctrl.GetWidget)
	group.Patch("/widgets/:id", ctrl.UpdateWidget)
	group.Delete("/widgets/:id", ctrl.DeleteWidget)
	group.Put("/widgets/:id/position", ctrl.MoveWidget)
	group.Put("/widgets/:id/size", ctrl.ResizeWidget)
	group.Put("/widgets/:id/minimized", ctrl.MinimizeWidget)
	group.Put("/widgets/:id/maximized", ctrl.MaximizeWidget)
	group.Post("/widgets/:id/select", ctrl.SelectWidget)
	group.Post("/widgets/:id/front", ctrl.BringToFront)
	group.Post("/widgets/:id/popout", ctrl.PopOutWidget)
	group.Post("/widgets/:id/popin", ctrl.PopInWidget)

	group.Post("/widgets/:id/drag", ctrl.StartDrag)
	group.Put("/drag", ctrl.DragTo)
	group.Post("/drag/end", ctrl.EndDrag)
	group.Delete("/drag", ctrl.CancelDrag)

	group.Post("/widgets/:id/resize", ctrl.StartResize)
	group.Put("/resize", ctrl.ResizeTo)
	group.Post("/resize/end", ctrl.EndResize)
	group.Delete("/resize", ctrl.CancelResize)

	group.Get("/layouts", ctrl.ListLayouts)
	group.Post("/layouts", ctrl.CreateLayout)
	group.Get("/layouts/:layoutId", ctrl.GetLayout)
	group.Put("/layouts/:layoutId", ctrl.RenameLayout)
	group.Delete("/layouts/:layoutId", ctrl.DeleteLayout)
	group.Post("/layouts/:layoutId/switch", ctrl.SwitchLayout)
	group.Get("/layouts/:layoutId/export", ctrl.ExportLayout)
}

type SessionApi struct {
	SessionController *SessionController
	Config            *config.Config
}

func NewSessionApi(sessionController *SessionController, cfg *config.Config) api.Route {
	return &SessionApi{
		SessionController: sessionController,
		Config:            cfg,
	}
}

func (api *SessionApi) Setup(app *fiber.App) {
	group := app.Group("/api/session", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.SessionController.GetSession)
	group.Put("/", api.SessionController.UpdateSession)
	group.Post("/flush", api.SessionController.FlushSession)
	group.Delete("/", api.SessionController.ClearSession)
}
