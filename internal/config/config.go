package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrPlatformConfigMissing marks a configuration that cannot reach the data platform.
var ErrPlatformConfigMissing = errors.New("data platform configuration missing")

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Storage  StorageConfig  `toml:"storage"`
}

type AppConfig struct {
	Name        string   `toml:"name"`
	Env         string   `toml:"env"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	GinMode     string   `toml:"gin_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
	AdminEmail      string `toml:"admin_email"`
}

type LLMConfig struct {
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// DatabaseConfig selects the relational store. Driver is one of mysql, postgres
// or sqlite; for sqlite only Name is used, as the file path.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Params   string `toml:"params"`
}

// RedisConfig is optional: an empty Addr keeps view state and revocations in memory.
type RedisConfig struct {
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	ViewStateTTLHours int    `toml:"view_state_ttl_hours"`
}

// RabbitMQConfig is optional: an empty URL delivers session events in-process.
type RabbitMQConfig struct {
	URL                  string `toml:"url"`
	SessionEventExchange string `toml:"session_event_exchange"`
}

type StorageConfig struct {
	Driver         string `toml:"driver"`
	Bucket         string `toml:"bucket"`
	LocalDir       string `toml:"local_dir"`
	PublicBaseURL  string `toml:"public_base_url"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// Validate reports ErrPlatformConfigMissing when the store or the session secret
// is not configured. The server still starts and surfaces the condition.
func (c *Config) Validate() error {
	var missing []string
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Name == "" {
			missing = append(missing, "database.name")
		}
	case "mysql", "postgres":
		if c.Database.Host == "" {
			missing = append(missing, "database.host")
		}
		if c.Database.Name == "" {
			missing = append(missing, "database.name")
		}
	default:
		missing = append(missing, "database.driver")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		missing = append(missing, "auth.jwt_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrPlatformConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) DatabaseDSN() string {
	db := c.Database
	switch db.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host, db.Port, db.User, db.Password, db.Name)
		if db.Params != "" {
			dsn += " " + db.Params
		}
		return dsn
	case "sqlite":
		return db.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Params,
		)
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "tutordesk",
			Env:         "dev",
			Host:        "0.0.0.0",
			Port:        8080,
			GinMode:     "debug",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Auth: AuthConfig{
			JWTExpireMinute: 60 * 24,
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-3.5-turbo",
			Temperature:    0.7,
			TimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			Port:   3306,
			User:   "root",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			ViewStateTTLHours: 24,
		},
		RabbitMQ: RabbitMQConfig{
			SessionEventExchange: "tutordesk.session.events",
		},
		Storage: StorageConfig{
			Driver:         "local",
			Bucket:         "documents",
			LocalDir:       "data/storage",
			PublicBaseURL:  "http://localhost:8080/files",
			MaxUploadBytes: 20 << 20,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.CORSOrigins = getEnvAsList("APP_CORS_ORIGINS", cfg.App.CORSOrigins)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)
	cfg.Auth.AdminEmail = getEnv("ADMIN_EMAIL", cfg.Auth.AdminEmail)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.Params = getEnv("DB_PARAMS", cfg.Database.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ViewStateTTLHours = getEnvAsInt("REDIS_VIEW_STATE_TTL_HOURS", cfg.Redis.ViewStateTTLHours)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.SessionEventExchange = getEnv("RABBITMQ_SESSION_EVENT_EXCHANGE", cfg.RabbitMQ.SessionEventExchange)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.MaxUploadBytes = int64(getEnvAsInt("STORAGE_MAX_UPLOAD_BYTES", int(cfg.Storage.MaxUploadBytes)))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
