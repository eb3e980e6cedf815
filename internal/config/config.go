package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Messages int           `mapstructure:"messages"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	StaticPath    string        `mapstructure:"static_path"`
	LogLevel      string        `mapstructure:"log_level"`
	Secret        string        `mapstructure:"secret"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	PongWait      time.Duration `mapstructure:"pong_wait"`
	WriteWait     time.Duration `mapstructure:"write_wait"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	SurveyURL     string        `mapstructure:"survey_url"`
	RedirectURL   string        `mapstructure:"redirect_url"`
	ShutdownAfter time.Duration `mapstructure:"shutdown_after"`
	Backpressure  string        `mapstructure:"backpressure"`
	RateLimit     RateLimit     `mapstructure:"rate_limit"`
	ICE           ICEConfig     `mapstructure:"ice"`
}

var envBindings = map[string]string{
	"mode":                "MODE",
	"port":                "PORT",
	"static_path":         "STATIC_PATH",
	"log_level":           "LOG_LEVEL",
	"secret":              "SESSION_SECRET",
	"survey_url":          "SURVEY_URL",
	"redirect_url":        "REDIRECT_URL",
	"shutdown_after":      "SHUTDOWN_AFTER",
	"backpressure":        "BACKPRESSURE_POLICY",
	"ice.stun_enabled":    "STUN_SERVER_ENABLED",
	"ice.stun_url":        "STUN_SERVER_URL",
	"ice.turn_enabled":    "TURN_SERVER_ENABLED",
	"ice.turn_url":        "TURN_SERVER_URL",
	"ice.turn_username":   "TURN_SERVER_USERNAME",
	"ice.turn_credential": "TURN_SERVER_CREDENTIAL",
	"ice.servers_json":    "ICE_SERVERS_JSON",
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then the
// environment. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg(".env not loaded")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load without the .env step and with an explicit config file.
// A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./frontend")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 10_000_000)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("shutdown_after", "0s")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("rate_limit.messages", 200)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("ice.stun_enabled", false)
	v.SetDefault("ice.turn_enabled", false)

	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no session secret set, generated a random one")
	}

	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%s) must be positive and shorter than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	if c.ShutdownAfter < 0 {
		return fmt.Errorf("shutdown_after must not be negative, got %s", c.ShutdownAfter)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
