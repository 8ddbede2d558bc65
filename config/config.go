// Package config loads process configuration from environment variables,
// with a .env file overlay for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration.
type Config struct {
	App      AppConfig
	Model    ModelConfig
	Loop     LoopConfig
	Workflow WorkflowConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Storage  StorageConfig
}

// AppConfig carries process-wide settings.
type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"agentflow"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// ModelConfig points at an OpenAI-compatible endpoint, a local Ollama by
// default.
type ModelConfig struct {
	BaseURL     string  `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434/v1"`
	APIKey      string  `envconfig:"OLLAMA_API_KEY" default:"ollama"`
	Name        string  `envconfig:"MODEL_NAME" default:"mistral:7b"`
	VisionModel string  `envconfig:"VISION_MODEL_NAME" default:"llama3.2-vision:11b"`
	Temperature float64 `envconfig:"MODEL_TEMPERATURE" default:"0.7"`
}

// LoopConfig bounds the agent execution loop.
type LoopConfig struct {
	MaxIterations    int           `envconfig:"LOOP_MAX_ITERATIONS" default:"10"`
	GatewayTimeout   time.Duration `envconfig:"LOOP_GATEWAY_TIMEOUT" default:"120s"`
	ObservationLimit int           `envconfig:"LOOP_OBSERVATION_LIMIT" default:"3000"`
	ToolTimeout      time.Duration `envconfig:"LOOP_TOOL_TIMEOUT" default:"60s"`
}

// WorkflowConfig bounds the DAG engine.
type WorkflowConfig struct {
	MaxParallel int `envconfig:"WORKFLOW_MAX_PARALLEL" default:"4"`
}

// SMTPConfig configures the send_email tool.
type SMTPConfig struct {
	Host     string `envconfig:"AGENTFLOW_SMTP_HOST"`
	Port     int    `envconfig:"AGENTFLOW_SMTP_PORT" default:"587"`
	Username string `envconfig:"AGENTFLOW_SMTP_USER"`
	Password string `envconfig:"AGENTFLOW_SMTP_PASS"`
	From     string `envconfig:"AGENTFLOW_SMTP_FROM"`
}

// RedisConfig configures the optional Redis event sink. Disabled unless a
// host is set.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Addr returns host:port for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis sink should be wired.
func (c RedisConfig) Enabled() bool { return c.Host != "" }

// StorageConfig locates the local data directories.
type StorageConfig struct {
	DataDir    string `envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `envconfig:"REPORTS_DIR" default:"reports"`
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"uploads"`
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present, so local development does not need exported
// variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}
