package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env                 string `yaml:"env"`
	Port                int    `yaml:"port"`
	CORSOrigin          string `yaml:"cors_origin"`
	FrontendURL         string `yaml:"frontend_url"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

func (a AppCfg) ReadTimeout() time.Duration  { return time.Duration(a.ReadTimeoutSeconds) * time.Second }
func (a AppCfg) WriteTimeout() time.Duration { return time.Duration(a.WriteTimeoutSeconds) * time.Second }
func (a AppCfg) IdleTimeout() time.Duration  { return time.Duration(a.IdleTimeoutSeconds) * time.Second }

type JWTCfg struct {
	AccessSecret     string `yaml:"accessSecret"`
	RefreshSecret    string `yaml:"refreshSecret"`
	AccessTTLMinutes int    `yaml:"accessTTLMinutes"`
	RefreshTTLDays   int    `yaml:"refreshTTLDays"`
	ResetTTLMinutes  int    `yaml:"resetTTLMinutes"`
}

type MongoCfg struct {
	URI                   string `yaml:"uri"`
	Database              string `yaml:"database"`
	ConnectTimeoutSeconds int    `yaml:"connectTimeoutSeconds"`
}

func (m MongoCfg) ConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeoutSeconds) * time.Second
}

type RedisCfg struct {
	Addr                  string `yaml:"addr"`
	Password              string `yaml:"password"`
	DB                    int    `yaml:"db"`
	ConnectTimeoutSeconds int    `yaml:"connectTimeoutSeconds"`
}

func (r RedisCfg) ConnectTimeout() time.Duration {
	return time.Duration(r.ConnectTimeoutSeconds) * time.Second
}

type MailerCfg struct {
	APIURL    string `yaml:"apiURL"`
	APIKey    string `yaml:"apiKey"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
}

type SecurityCfg struct {
	PasswordHashCost         int `yaml:"passwordHashCost"`
	LoginRateLimitPerMinute  int `yaml:"loginRateLimitPerMinute"`
	ForgotRateLimitPerHour   int `yaml:"forgotRateLimitPerHour"`
	RegisterRateLimitPerHour int `yaml:"registerRateLimitPerHour"`
}

type CollectionsCfg struct {
	Users  string `yaml:"users"`
	Events string `yaml:"events"`
}

type Config struct {
	App         AppCfg         `yaml:"app"`
	JWT         JWTCfg         `yaml:"jwt"`
	Mongo       MongoCfg       `yaml:"mongo"`
	Redis       RedisCfg       `yaml:"redis"`
	Mailer      MailerCfg      `yaml:"mailer"`
	Security    SecurityCfg    `yaml:"security"`
	Collections CollectionsCfg `yaml:"collections"`
}

// IsProduction reports whether the app runs with production cookie and
// error-reporting behavior.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads the YAML config at path and applies .env / environment
// overrides on top. The returned struct is the only configuration source
// for the rest of the application; business code never reads the
// environment directly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("PORT", func(n int) { cfg.App.Port = n })
	override("CORS_ORIGIN", func(v string) { cfg.App.CORSOrigin = v })
	override("FRONTEND_URL", func(v string) { cfg.App.FrontendURL = v })
	override("ACCESS_TOKEN_SECRET", func(v string) { cfg.JWT.AccessSecret = v })
	override("REFRESH_TOKEN_SECRET", func(v string) { cfg.JWT.RefreshSecret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", func(n int) { cfg.JWT.AccessTTLMinutes = n })
	overrideInt("JWT_REFRESH_TTL_DAYS", func(n int) { cfg.JWT.RefreshTTLDays = n })
	overrideInt("JWT_RESET_TTL_MINUTES", func(n int) { cfg.JWT.ResetTTLMinutes = n })
	override("DATABASE_URL", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	overrideInt("MONGO_CONNECT_TIMEOUT_SECONDS", func(n int) { cfg.Mongo.ConnectTimeoutSeconds = n })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	overrideInt("REDIS_DB", func(n int) { cfg.Redis.DB = n })
	overrideInt("REDIS_CONNECT_TIMEOUT_SECONDS", func(n int) { cfg.Redis.ConnectTimeoutSeconds = n })
	override("MAILER_API_URL", func(v string) { cfg.Mailer.APIURL = v })
	override("MAILER_API_KEY", func(v string) { cfg.Mailer.APIKey = v })
	override("MAILER_FROM_EMAIL", func(v string) { cfg.Mailer.FromEmail = v })
	override("MAILER_FROM_NAME", func(v string) { cfg.Mailer.FromName = v })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Security.PasswordHashCost = n })

	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Env = "development"
	cfg.App.Port = 5000
	cfg.App.FrontendURL = "http://localhost:5173"
	cfg.App.ReadTimeoutSeconds = 10
	cfg.App.WriteTimeoutSeconds = 10
	cfg.App.IdleTimeoutSeconds = 60
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLDays = 7
	cfg.JWT.ResetTTLMinutes = 15
	cfg.Mongo.Database = "blms"
	cfg.Mongo.ConnectTimeoutSeconds = 15
	cfg.Redis.ConnectTimeoutSeconds = 5
	cfg.Security.PasswordHashCost = 10
	cfg.Security.LoginRateLimitPerMinute = 10
	cfg.Security.ForgotRateLimitPerHour = 5
	cfg.Security.RegisterRateLimitPerHour = 20
	cfg.Collections.Users = "users"
	cfg.Collections.Events = "events"
	return cfg
}
