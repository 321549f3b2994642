package system

import (
	"eegdash/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type SwaggerApi struct{}

func NewSwaggerApi() api.Route {
	return &SwaggerApi{}
}

// Setup serves the generated docs under /swagger
func (h *SwaggerApi) Setup(app *fiber.App) {
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:        "EEG Dashboard API",
		DeepLinking:  true,
		DocExpansion: "list",
	}))
}
