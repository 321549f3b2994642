package system

import (
	"context"
	"time"

	"eegdash/internal/common/api"
	"eegdash/internal/database"

	"github.com/gofiber/fiber/v2"
)

const healthTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthApi struct {
	db pinger
}

func NewHealthApi(mongodb *database.MongodbDB) api.Route {
	return &HealthApi{db: mongodb}
}

// Setup registers health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up and the database answers
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Failure      503  {string}  string  "database unavailable"
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
	}
	return c.SendString("OK")
}
