package popout

import (
	"eegdash/internal/common/api"
	"eegdash/internal/config"
	"eegdash/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Hub    *WebSocketHub
	Config *config.Config
}

func NewWebSocketApi(hub *WebSocketHub, cfg *config.Config) api.Route {
	return &WebSocketApi{
		Hub:    hub,
		Config: cfg,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	// browsers cannot set headers on an upgrade; the token comes as ?access_token=
	app.Use("/api/popout/ws", middleware.AuthMiddleware(h.Config.SkipAuth), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/popout/ws/:surfaceId", websocket.New(h.Hub.HandleWebSocket))
}
