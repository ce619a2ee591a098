package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"quiz-runner/internal/app"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration loaded from a YAML file and QUIZ_* environment variables.
type Config struct {
	Server struct {
		Port           string   `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`
	Quiz Quiz `mapstructure:"quiz"`
	Log  Log  `mapstructure:"log"`
}

// Quiz configures the question source and session timing.
type Quiz struct {
	ID               string        `mapstructure:"id"`
	QuestionsPath    string        `mapstructure:"questions_path"` // YAML question bank; empty uses the built-in quiz
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	TimerSeconds     int           `mapstructure:"timer_seconds"`
	AdvanceDelay     time.Duration `mapstructure:"advance_delay"`
	LowTimeThreshold int           `mapstructure:"low_time_threshold"`
}

// Log configures the zerolog output.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Settings converts the quiz section into controller settings.
func (q Quiz) Settings() app.Settings {
	return app.Settings{
		TimerSeconds:     q.TimerSeconds,
		AdvanceDelay:     q.AdvanceDelay,
		LowTimeThreshold: q.LowTimeThreshold,
	}
}

// Load reads YAML config from path (optional) and applies env overrides,
// e.g. QUIZ_QUIZ_TIMER_SECONDS=5.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("quiz")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the rest of the program relies on.
func (c Config) Validate() error {
	if c.Quiz.ID == "" {
		return fmt.Errorf("%w: quiz.id is empty", ErrInvalidConfig)
	}
	if err := c.Quiz.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("postgres.url", "")
	v.SetDefault("quiz.id", "general")
	v.SetDefault("quiz.questions_path", "")
	v.SetDefault("quiz.cache_ttl", "10m")
	v.SetDefault("quiz.timer_seconds", 30)
	v.SetDefault("quiz.advance_delay", "1500ms")
	v.SetDefault("quiz.low_time_threshold", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
