package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "eegdash/internal/common/api"
	"eegdash/internal/config"
	"eegdash/internal/database"
	"eegdash/internal/features/dashboard"
	"eegdash/internal/features/fileindex"
	"eegdash/internal/features/popout"
	"eegdash/internal/features/session"
	"eegdash/internal/features/system"
	"eegdash/internal/logger"
	"eegdash/internal/middleware"
	"eegdash/pkg/utils"

	_ "eegdash/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		route.Setup(app)
		log.Debug("Route registered", zap.String("route", fmt.Sprintf("%T", route)))
	}
	log.Info("All routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer runs Fiber in a goroutine and shuts it down when the app exits
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, recordings fileindex.RecordingRepository, sessions *session.MongoStorage, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := recordings.EnsureIndexes(ctx); err != nil {
					log.Warn("Failed to ensure recording indexes", zap.Error(err))
				}
				if err := sessions.EnsureIndexes(ctx); err != nil {
					log.Warn("Failed to ensure session indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// NewSessionStorage picks the session backend. Mongo is the default; the SQL
// stores are closed when the app stops.
func NewSessionStorage(lc fx.Lifecycle, cfg *config.Config, mongoStorage *session.MongoStorage) (session.StorageAdapter, error) {
	if cfg.SessionStore == "" || cfg.SessionStore == "mongo" {
		return mongoStorage, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sqlStorage, err := session.OpenSQLStorage(ctx, cfg.SessionStore, cfg.SessionDSN)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sqlStorage.Close()
		},
	})
	return sqlStorage, nil
}

// InitializeWorkspaces starts the idle sweeper. On stop every live workspace
// is saved before the database disconnects.
func InitializeWorkspaces(lc fx.Lifecycle, dashboardService dashboard.DashboardService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return dashboardService.InitializeScheduler(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return dashboardService.StopScheduler()
		},
	})
}

// @title           EEG Dashboard API
// @version         1.0
// @description     Widget layout and session persistence for the EEG analysis dashboard.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			fileindex.NewRecordingRepository,
			session.NewMongoStorage,

			NewSessionStorage,

			// Initialize Service
			fileindex.NewFileIndexService,
			popout.NewWebSocketHub,
			dashboard.NewDashboardService,

			// Initialize Controller
			fileindex.NewFileIndexController,
			dashboard.NewDashboardController,
			dashboard.NewSessionController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(fileindex.NewFileIndexApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(dashboard.NewSessionApi),
			AsRoute(popout.NewWebSocketApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			InitializeIndexes,
			InitializeWorkspaces,
			StartServer,
		),
	)

	app.Run()
}
