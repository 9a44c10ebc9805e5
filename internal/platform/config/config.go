package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración del servicio.
// Se carga desde YAML (opcional) y luego se pisa con env vars.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Feed    FeedConfig    `yaml:"feed"`
	Medid   MedidConfig   `yaml:"medid"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DBConfig struct {
	// DSN de Postgres. Vacío => repos in-memory (modo dev).
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
	Issuer      string        `yaml:"issuer"`
}

type SessionConfig struct {
	// WatchInterval es el tick del session watcher. Más corto = lockout más
	// rápido pero más carga sobre el backend; rango razonable 10s–60s.
	WatchInterval time.Duration `yaml:"watch_interval"`

	// InactiveBlocks decide si status=inactive mata la sesión en el próximo
	// tick (true) o solo bloquea el próximo login (false).
	InactiveBlocks bool `yaml:"inactive_blocks"`
}

type FeedConfig struct {
	PageSize        int           `yaml:"page_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	WindowDays      int           `yaml:"window_days"`
	PlatformLimit   int           `yaml:"platform_limit"`
	SourceLimit     int           `yaml:"source_limit"`
}

// MedidConfig apunta al admin API del identity provider hosteado.
// Solo se usa para la revocación "dura" oportunista de sesiones.
type MedidConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	APIKeyHeader string        `yaml:"api_key_header"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenExpiry: 12 * time.Hour,
			Issuer:      "instadoc-admin",
		},
		Session: SessionConfig{
			WatchInterval:  10 * time.Second,
			InactiveBlocks: true,
		},
		Feed: FeedConfig{
			PageSize:        20,
			RefreshInterval: 30 * time.Second,
			WindowDays:      7,
			PlatformLimit:   200,
			SourceLimit:     100,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load lee el archivo YAML si path != "" y aplica overrides de env.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv carga config sin archivo (CONFIG_FILE opcional).
func FromEnv() (Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("MEDID_BASE_URL"); v != "" {
		c.Medid.BaseURL = v
	}
	if v := os.Getenv("MEDID_API_KEY"); v != "" {
		c.Medid.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}
