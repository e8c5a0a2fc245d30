// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	JWT        JWTConfig        `koanf:"jwt"`
	Cookie     CookieConfig     `koanf:"cookie"`
	Storage    StorageConfig    `koanf:"storage"`
	ServerAuth ServerAuthConfig `koanf:"server_auth"`
	GiftCards  GiftCardConfig   `koanf:"gift_cards"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

// CookieConfig controls the session cookie carrying the access token.
// Secure is forced on in production regardless of the configured value.
type CookieConfig struct {
	Prefix   string `koanf:"prefix"`
	SameSite string `koanf:"same_site"`
	Secure   bool   `koanf:"secure"`
	Domain   string `koanf:"domain"`
}

// StorageConfig points at the S3-compatible bucket (Cloudflare R2) holding
// audio files. Missing values are tolerated at startup; the media endpoint
// reports them per request.
type StorageConfig struct {
	Endpoint        string        `koanf:"endpoint"`
	AccessKeyID     string        `koanf:"access_key_id"`
	SecretAccessKey string        `koanf:"secret_access_key"`
	Bucket          string        `koanf:"bucket"`
	AudioBucket     string        `koanf:"audio_bucket"`
	Region          string        `koanf:"region"`
	URLExpiry       time.Duration `koanf:"url_expiry"`
}

type ServerAuthConfig struct {
	Token  string `koanf:"token"`
	Header string `koanf:"header"`
}

type GiftCardConfig struct {
	AllowRepeat bool `koanf:"allow_repeat"`
}

type RateLimitConfig struct {
	Requests     int           `koanf:"requests"`
	Window       time.Duration `koanf:"window"`
	Burst        int           `koanf:"burst"`
	SpendPerHour int           `koanf:"spend_per_hour"`
	SpendBurst   int           `koanf:"spend_burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "ASMR Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.migrate_on_start":   false,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.access_token_expire": "2h",
		"jwt.issuer":              "asmr-backend",
		"jwt.audience":            "asmr-backend-api",
		"jwt.private_key_path":    "keys/private.pem",
		"jwt.public_key_path":     "keys/public.pem",

		"cookie.prefix":    "asmr",
		"cookie.same_site": "Lax",
		"cookie.secure":    false,

		"storage.region":     "auto",
		"storage.url_expiry": "5m",

		"server_auth.header": "X-Server-Auth-Token",

		"gift_cards.allow_repeat": false,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"rate_limit.spend_per_hour": 60,
		"rate_limit.spend_burst":    10,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Server-Auth-Token",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "asmr-backend",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_MIGRATE_ON_START":   "database.migrate_on_start",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"COOKIE_PREFIX":               "cookie.prefix",
	"COOKIE_SAME_SITE":            "cookie.same_site",
	"COOKIE_SECURE":               "cookie.secure",
	"COOKIE_DOMAIN":               "cookie.domain",
	"R2_ENDPOINT":                 "storage.endpoint",
	"R2_ACCESS_KEY_ID":            "storage.access_key_id",
	"R2_SECRET_ACCESS_KEY":        "storage.secret_access_key",
	"R2_BUCKET":                   "storage.bucket",
	"R2_AUDIO_BUCKET":             "storage.audio_bucket",
	"R2_REGION":                   "storage.region",
	"SERVER_AUTH_TOKEN":           "server_auth.token",
	"GIFT_CARDS_ALLOW_REPEAT":     "gift_cards.allow_repeat",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_SPEND_PER_HOUR":   "rate_limit.spend_per_hour",
	"RATE_LIMIT_SPEND_BURST":      "rate_limit.spend_burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}

	if c.JWT.AccessTokenExpire <= 0 {
		return fmt.Errorf("jwt.access_token_expire must be positive")
	}

	if c.Cookie.Prefix == "" {
		return fmt.Errorf("cookie.prefix must not be empty")
	}

	if _, ok := sameSiteModes[strings.ToLower(c.Cookie.SameSite)]; !ok {
		return fmt.Errorf("cookie.same_site must be one of Strict, Lax, None")
	}

	if c.RateLimit.SpendPerHour < 1 || c.RateLimit.SpendBurst < 1 {
		return fmt.Errorf("rate_limit.spend_per_hour and rate_limit.spend_burst must be positive")
	}

	if c.Storage.URLExpiry <= 0 {
		return fmt.Errorf("storage.url_expiry must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

var sameSiteModes = map[string]http.SameSite{
	"strict": http.SameSiteStrictMode,
	"lax":    http.SameSiteLaxMode,
	"none":   http.SameSiteNoneMode,
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SameSiteMode resolves the configured mode, defaulting to Lax.
func (c *CookieConfig) SameSiteMode() http.SameSite {
	if mode, ok := sameSiteModes[strings.ToLower(c.SameSite)]; ok {
		return mode
	}
	return http.SameSiteLaxMode
}

func (s *StorageConfig) IsConfigured() bool {
	return s.Endpoint != "" &&
		s.AccessKeyID != "" &&
		s.SecretAccessKey != "" &&
		s.ResolvedAudioBucket() != ""
}

// ResolvedAudioBucket prefers the dedicated audio bucket over the shared one.
func (s *StorageConfig) ResolvedAudioBucket() string {
	if s.AudioBucket != "" {
		return s.AudioBucket
	}
	return s.Bucket
}
