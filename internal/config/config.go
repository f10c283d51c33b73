package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "KARAOKE"

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	LogLevel   string `mapstructure:"log_level"`
	StaticPath string `mapstructure:"static_path"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	GracePeriod     time.Duration `mapstructure:"grace_period"`
	MaxCodeAttempts int           `mapstructure:"max_code_attempts"`
	StrictReorder   bool          `mapstructure:"strict_reorder"`
	JoinLimit       int           `mapstructure:"join_limit"`
	JoinInterval    time.Duration `mapstructure:"join_interval"`

	CORSOrigins []string `mapstructure:"cors_origins"`

	Search SearchConfig `mapstructure:"search"`
	NATS   NATSConfig   `mapstructure:"nats"`
}

type SearchConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Suffix  string        `mapstructure:"suffix"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default) and applies
// KARAOKE_* environment overrides on top.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load with an explicit file. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./web")

	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)

	v.SetDefault("grace_period", "30s")
	v.SetDefault("max_code_attempts", 64)
	v.SetDefault("strict_reorder", false)
	v.SetDefault("join_limit", 10)
	v.SetDefault("join_interval", "1m")

	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("search.base_url", "https://unofficial-youtube-api.vercel.app")
	v.SetDefault("search.suffix", "karaoke")
	v.SetDefault("search.limit", 15)
	v.SetDefault("search.timeout", "10s")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "karaoke.sessions")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.PongWait <= 0 {
		errs = append(errs, errors.New("pong_wait must be positive"))
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		errs = append(errs, errors.New("ping_period must be positive and shorter than pong_wait"))
	}
	if c.GracePeriod <= 0 {
		errs = append(errs, errors.New("grace_period must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
