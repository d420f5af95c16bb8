package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Instagram Graph API Configuration
	Instagram InstagramConfig

	// AI reply drafting configuration
	AI AIConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// InstagramConfig holds the Graph API app credentials
type InstagramConfig struct {
	AppID       string
	AppSecret   string
	RedirectURI string
	GraphURL    string // Override for tests; defaults to the public Graph API
}

// AIConfig holds the external language-model endpoint configuration
type AIConfig struct {
	Endpoint    string
	APIKey      string
	Model       string
	PromptsPath string // YAML prompt templates, empty = built-in defaults
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Database URL - default to a local sqlite file, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "socivio.sqlite"
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	graphURL := os.Getenv("INSTAGRAM_GRAPH_URL")
	if graphURL == "" {
		graphURL = "https://graph.facebook.com/v19.0"
	}

	aiEndpoint := os.Getenv("AI_ENDPOINT")
	if aiEndpoint == "" {
		aiEndpoint = "https://api.openai.com/v1/chat/completions"
	}

	aiModel := os.Getenv("AI_MODEL")
	if aiModel == "" {
		aiModel = "gpt-4o-mini"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Instagram: InstagramConfig{
			AppID:       os.Getenv("INSTAGRAM_APP_ID"),
			AppSecret:   os.Getenv("INSTAGRAM_APP_SECRET"),
			RedirectURI: os.Getenv("INSTAGRAM_REDIRECT_URI"),
			GraphURL:    graphURL,
		},
		AI: AIConfig{
			Endpoint:    aiEndpoint,
			APIKey:      os.Getenv("AI_API_KEY"),
			Model:       aiModel,
			PromptsPath: os.Getenv("AI_PROMPTS_PATH"),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
