package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the process configuration. The Gemini key is deliberately absent:
// it is read by credential.Resolver at call time.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Journal JournalConfig
	Log     LogConfig
	CORS    CORSConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT"             env-default:":8081"`
	Env             string        `env:"APP_ENV"          env-default:"local"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ShowDiagnostics bool          `env:"SHOW_DIAGNOSTICS" env-default:"false"`
}

type LLMConfig struct {
	Model   string        `env:"GEMINI_MODEL"    env-default:"gemini-2.5-flash"`
	BaseURL string        `env:"GEMINI_BASE_URL"`
	RPS     float64       `env:"LLM_RPS"         env-default:"1"`
	Burst   int           `env:"LLM_BURST"       env-default:"2"`
	Timeout time.Duration `env:"LLM_TIMEOUT"     env-default:"60s"`
	Fake    bool          `env:"LLM_FAKE"        env-default:"false"`
}

type JournalConfig struct {
	PostgresDSN string `env:"JOURNAL_PG_DSN"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

type CORSConfig struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Origins splits AllowedOrigins on commas.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads .env (if present) and then the environment.
// Priority: ENV > .env > defaults (via env-default tags).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.Server.Port = normalizePort(cfg.Server.Port)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

// Validate checks ranges; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.LLM.RPS < 0 {
		return fmt.Errorf("LLM_RPS must be >= 0 (got %v)", c.LLM.RPS)
	}
	if c.LLM.Burst < 0 {
		return fmt.Errorf("LLM_BURST must be >= 0 (got %d)", c.LLM.Burst)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT must be >= 0 (got %s)", c.LLM.Timeout)
	}
	if !c.LLM.Fake && strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text (got %q)", c.Log.Format)
	}
	return nil
}

// IsLocal reports whether APP_ENV is "local".
func (c *Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Server.Env), "local")
}
