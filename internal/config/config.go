package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string

	// Layout policy applied to new workspaces
	GridSize                 float64
	EnableSnapping           bool
	EnableCollisionDetection bool
	CanvasWidth              float64
	CanvasHeight             float64

	// SessionStore is mongo, postgres or mysql; the SQL stores need SessionDSN
	SessionStore string
	SessionDSN   string

	SessionSaveDebounce    time.Duration
	WorkspaceIdleTimeout   time.Duration
	WorkspaceSweepSchedule string // cron expression

	// PopoutConnectTimeout is how long an opened popout surface may wait for
	// its browser window before it counts as disconnected
	PopoutConnectTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "eegdash"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "eegdash"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		GridSize:                 getFloat("GRID_SIZE", 20),
		EnableSnapping:           getEnv("ENABLE_SNAPPING", "true") == "true",
		EnableCollisionDetection: getEnv("ENABLE_COLLISION_DETECTION", "true") == "true",
		CanvasWidth:              getFloat("CANVAS_WIDTH", 1920),
		CanvasHeight:             getFloat("CANVAS_HEIGHT", 1080),

		SessionStore: getEnv("SESSION_STORE", "mongo"),
		SessionDSN:   getEnv("SESSION_DSN", ""),

		SessionSaveDebounce:    getDuration("SESSION_SAVE_DEBOUNCE", 500*time.Millisecond),
		WorkspaceIdleTimeout:   getDuration("WORKSPACE_IDLE_TIMEOUT", 30*time.Minute),
		WorkspaceSweepSchedule: getEnv("WORKSPACE_SWEEP_SCHEDULE", "*/5 * * * *"),

		PopoutConnectTimeout: getDuration("POPOUT_CONNECT_TIMEOUT", 30*time.Second),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
