package internal

import (
	"fmt"
	"team-relay/runtime"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config is the hub process configuration, read from the environment.
// A .env file in the working directory is loaded first when present.
type Config struct {
	Host                  string        `env:"RELAY_HOST,default=localhost" validate:"required"`
	Port                  int           `env:"RELAY_PORT,default=9999" validate:"min=1,max=65535"`
	LogLevel              string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	HeartbeatInterval     time.Duration `env:"HEARTBEAT_INTERVAL,default=30s" validate:"gt=0"`
	ClientTimeout         time.Duration `env:"CLIENT_TIMEOUT,default=60s" validate:"gt=0"`
	IdleAfter             time.Duration `env:"IDLE_AFTER,default=5m" validate:"gt=0"`
	QuestionSweepInterval time.Duration `env:"QUESTION_SWEEP_INTERVAL,default=5s" validate:"gt=0"`
	QuestionTimeout       time.Duration `env:"QUESTION_TIMEOUT,default=30s" validate:"gt=0"`
	MetricInterval        time.Duration `env:"METRIC_INTERVAL,default=1m" validate:"gt=0"`
	RestartInterval       time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	ConnectionBufferSize  int           `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"min=1"`
	MaxContentLength      int           `env:"MAX_CONTENT_LENGTH,default=50000" validate:"min=1"`
	// DebugPort enables the /stats HTTP endpoint when set.
	DebugPort int `env:"DEBUG_PORT" validate:"omitempty,min=1,max=65535"`
}

// ClientConfig is what the relay CLI needs to reach a hub.
type ClientConfig struct {
	Host     string `env:"RELAY_HOST,default=localhost" validate:"required"`
	Port     int    `env:"RELAY_PORT,default=9999" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=WARN" validate:"required"`
}

func LoadConfig() (Config, error) {
	var config Config
	if err := load(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func LoadClientConfig() (ClientConfig, error) {
	var config ClientConfig
	if err := load(&config); err != nil {
		return ClientConfig{}, err
	}
	return config, nil
}

func load(config any) error {
	// A missing .env is fine, the environment alone is enough.
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ClientConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) HubConfig() runtime.HubConfig {
	return runtime.HubConfig{
		HeartbeatInterval:     c.HeartbeatInterval,
		ClientTimeout:         c.ClientTimeout,
		IdleAfter:             c.IdleAfter,
		QuestionSweepInterval: c.QuestionSweepInterval,
		QuestionTimeout:       c.QuestionTimeout,
		MetricInterval:        c.MetricInterval,
		ConnectionBufferSize:  c.ConnectionBufferSize,
	}
}
