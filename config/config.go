package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything supplied from the environment. The vision-service
// credentials are read once here and passed into the AI gateway explicitly;
// nothing reads the environment after startup.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`

	UploadDir    string `envconfig:"UPLOAD_DIR" default:"uploads"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"inspections.db"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// required only rejects an unset variable; an empty value slips through.
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("load config: OPENAI_API_KEY must not be empty")
	}
	return &cfg, nil
}
