package fileindex

import (
	"eegdash/internal/common/api"
	"eegdash/internal/config"
	"eegdash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileIndexApi struct {
	controller *FileIndexController
	config     *config.Config
}

func NewFileIndexApi(controller *FileIndexController, config *config.Config) api.Route {
	return &FileIndexApi{
		controller: controller,
		config:     config,
	}
}

func (h *FileIndexApi) Setup(app *fiber.App) {
	group := app.Group("/api/files", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListRecordings)
	group.Post("/", h.controller.RegisterRecording)
	group.Get("/:id", h.controller.GetRecording)
	group.Get("/:id/channels", h.controller.GetChannels)
	group.Delete("/:id", h.controller.DeleteRecording)
}
