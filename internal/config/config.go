package config

import (
	"net/url"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"taskmaster/internal/logger"

	"github.com/joho/godotenv"
)

const (
	DefaultJWTAlgorithm    = "HS256"
	DefaultOpenRouterModel = "google/gemma-3-4b-it:free"
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
)

type Config struct {
	AppPort    string
	AppVersion string

	DatabaseURL string
	DBMinConns  int32
	DBMaxConns  int32

	JWTSecret    string
	JWTAlgorithm string

	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenRouterURL    string

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
	ChatRateLimit  int
	ChatRateWindow time.Duration

	AllowedOrigin string
}

// Load reads configuration from the environment, after loading .env if present.
// A missing DATABASE_URL or JWT_SECRET terminates the process.
func Load() *Config {
	return load(true)
}

// LoadDatabase is Load for tools that only need DATABASE_URL.
func LoadDatabase() *Config {
	return load(false)
}

func load(needSecret bool) *Config {
	_ = godotenv.Load()

	cfg, missing := FromEnv(os.Getenv)
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if !needSecret {
		missing = slices.DeleteFunc(missing, func(k string) bool { return k == "JWT_SECRET" })
	}

	if len(missing) > 0 {
		logger.Fatal("required configuration is not set", "keys", strings.Join(missing, ","))
	}

	logger.Info("configuration loaded",
		"database_url", MaskDSN(cfg.DatabaseURL),
		"jwt_secret", MaskSecret(cfg.JWTSecret),
		"jwt_algorithm", cfg.JWTAlgorithm,
		"chat_provider_configured", cfg.OpenRouterAPIKey != "",
	)
	return cfg
}

// FromEnv builds a Config from getenv and reports which required keys are empty.
func FromEnv(getenv func(string) string) (*Config, []string) {
	cfg := &Config{
		AppPort:          stringOr(getenv("APP_PORT"), "8000"),
		AppVersion:       stringOr(getenv("APP_VERSION"), "1.0"),
		DatabaseURL:      getenv("DATABASE_URL"),
		DBMinConns:       int32(intOr(getenv("DB_MIN_CONNS"), 1)),
		DBMaxConns:       int32(intOr(getenv("DB_MAX_CONNS"), 20)),
		JWTSecret:        getenv("JWT_SECRET"),
		JWTAlgorithm:     stringOr(getenv("JWT_ALGORITHM"), DefaultJWTAlgorithm),
		OpenRouterAPIKey: getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:  stringOr(getenv("OPENROUTER_MODEL"), DefaultOpenRouterModel),
		OpenRouterURL:    stringOr(getenv("OPENROUTER_URL"), DefaultOpenRouterURL),
		LogLevel:         stringOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:        stringOr(getenv("LOG_FORMAT"), "text"),
		RedisAddr:        getenv("REDIS_ADDR"),
		RedisPassword:    getenv("REDIS_PASSWORD"),
		RedisDB:          intOr(getenv("REDIS_DB"), 0),
		APIRateLimit:     intOr(getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:    secondsOr(getenv("API_RATE_WINDOW_SECONDS"), time.Minute),
		AuthRateLimit:    intOr(getenv("AUTH_RATE_LIMIT"), 10),
		AuthRateWindow:   secondsOr(getenv("AUTH_RATE_WINDOW_SECONDS"), time.Minute),
		ChatRateLimit:    intOr(getenv("CHAT_RATE_LIMIT"), 20),
		ChatRateWindow:   secondsOr(getenv("CHAT_RATE_WINDOW_SECONDS"), time.Minute),
		AllowedOrigin:    getenv("ALLOWED_ORIGIN"),
	}

	if cfg.DBMinConns < 0 {
		cfg.DBMinConns = 0
	}
	if cfg.DBMaxConns < 1 {
		cfg.DBMaxConns = 20
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = cfg.DBMaxConns
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	return cfg, missing
}

const masked = "xxxxx"

// dsnPassword matches the password of a keyword/value connection string,
// quoted or bare.
var dsnPassword = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:[^'\\]|\\.)*'|\S*)`)

// MaskDSN hides the password of a connection string, in URL form
// (user info or password query parameter) or keyword/value form.
func MaskDSN(dsn string) string {
	if !strings.Contains(dsn, "://") {
		return dsnPassword.ReplaceAllString(dsn, "${1}"+masked)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return masked
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), masked)
		}
	}
	if q := u.Query(); q.Has("password") {
		q.Set("password", masked)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// MaskSecret keeps only the last four characters visible.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func intOr(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func secondsOr(v string, def time.Duration) time.Duration {
	n := intOr(v, 0)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
