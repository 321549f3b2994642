package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"eegdash/internal/config"
	"eegdash/internal/database"
	"eegdash/internal/features/fileindex"
	"eegdash/internal/logger"
	"eegdash/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	recordingsPath = "cmd/seed/data/recordings.json"
	devUserID      = "dev-user"
	devTokenTTL    = 30 * 24 * time.Hour
)

// Seed registers the sample recordings that are not indexed yet and prints a
// token for the dev user
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	recordings fileindex.FileIndexService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()

				logger.Info("Starting recording seed", zap.String("source", recordingsPath))

				b, err := os.ReadFile(recordingsPath)
				if err != nil {
					logger.Error("Failed to read recordings", zap.Error(err))
					return
				}
				var seed []*fileindex.Recording
				if err := json.Unmarshal(b, &seed); err != nil {
					logger.Error("Failed to parse recordings", zap.Error(err))
					return
				}

				existing, err := recordings.List(ctx)
				if err != nil {
					logger.Error("Failed to list recordings", zap.Error(err))
					return
				}
				known := make(map[string]bool, len(existing))
				for _, rec := range existing {
					known[rec.Path] = true
				}

				added := 0
				for _, rec := range seed {
					if known[rec.Path] {
						logger.Info("Recording exists, skipping", zap.String("path", rec.Path))
						continue
					}
					if err := recordings.Register(ctx, rec); err != nil {
						logger.Error("Failed to register recording", zap.String("path", rec.Path), zap.Error(err))
						continue
					}
					added++
				}
				logger.Info("Recording seed complete", zap.Int("added", added), zap.Int("skipped", len(seed)-added))

				utils.SetSecret(cfg.JWTSecret)
				token, err := utils.GenerateToken(devUserID, []string{"admin"}, devTokenTTL)
				if err != nil {
					logger.Error("Failed to generate dev token", zap.Error(err))
					return
				}
				fmt.Printf("Dev token for %s:\n%s\n", devUserID, token)
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			fileindex.NewRecordingRepository,
			fileindex.NewFileIndexService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
