package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends selectable through configuration.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Env      string
	Port     int
	BasePath string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Session  SessionConfig
	Auth     AuthConfig
	Upstream UpstreamConfig
	Academic AcademicConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig controls where portal sessions are persisted and how long the
// guard waits for a session to finish restoring.
type SessionConfig struct {
	Store          string
	CookieName     string
	CookieSecure   bool
	KeyPrefix      string
	TTL            time.Duration
	RestoreTimeout time.Duration
}

// AuthConfig holds the closed-world email to user id lookup used at login.
type AuthConfig struct {
	Allowlist map[string]string
}

// UpstreamConfig points at the external SIMPADU services.
type UpstreamConfig struct {
	PortalBaseURL    string
	ReferenceBaseURL string
	CourseBaseURL    string
	Timeout          time.Duration
}

// AcademicConfig selects the academic repository backend.
type AcademicConfig struct {
	Store string
}

// CacheConfig governs caching of reference lists.
type CacheConfig struct {
	Enabled      bool
	ReferenceTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.BasePath = normalizeBasePath(v.GetString("BASE_PATH"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Session = SessionConfig{
		Store:          strings.ToLower(v.GetString("SESSION_STORE")),
		CookieName:     v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure:   v.GetBool("SESSION_COOKIE_SECURE"),
		KeyPrefix:      v.GetString("SESSION_KEY_PREFIX"),
		TTL:            parseDuration(v.GetString("SESSION_TTL"), 0),
		RestoreTimeout: parseDuration(v.GetString("SESSION_RESTORE_TIMEOUT"), 3*time.Second),
	}

	cfg.Auth = AuthConfig{Allowlist: parseAllowlist(v.GetString("LOGIN_ALLOWLIST"))}

	cfg.Upstream = UpstreamConfig{
		PortalBaseURL:    strings.TrimRight(v.GetString("UPSTREAM_PORTAL_URL"), "/"),
		ReferenceBaseURL: strings.TrimRight(v.GetString("UPSTREAM_REFERENCE_URL"), "/"),
		CourseBaseURL:    strings.TrimRight(v.GetString("UPSTREAM_COURSE_URL"), "/"),
		Timeout:          parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
	}

	cfg.Academic = AcademicConfig{Store: strings.ToLower(v.GetString("ACADEMIC_STORE"))}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("ENABLE_REFERENCE_CACHE"),
		ReferenceTTL: parseDuration(v.GetString("REFERENCE_CACHE_TTL"), 15*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_PATH", "/simpadu")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "simpadu")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("SESSION_COOKIE_NAME", "simpadu_sid")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_KEY_PREFIX", "simpadu:session")
	v.SetDefault("SESSION_TTL", "")
	v.SetDefault("SESSION_RESTORE_TIMEOUT", "3s")

	v.SetDefault("LOGIN_ALLOWLIST", "admin@admin.com=2,c030323022@mahasiswa.poliban.ac.id=4")

	v.SetDefault("UPSTREAM_PORTAL_URL", "https://ti054c03.agussbn.my.id")
	v.SetDefault("UPSTREAM_REFERENCE_URL", "https://ti054c02.agussbn.my.id")
	v.SetDefault("UPSTREAM_COURSE_URL", "https://ti054c01.agussbn.my.id")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	v.SetDefault("ACADEMIC_STORE", StoreMemory)

	v.SetDefault("ENABLE_REFERENCE_CACHE", false)
	v.SetDefault("REFERENCE_CACHE_TTL", "15m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseAllowlist reads "email=id" pairs separated by commas. Emails are
// lower-cased; malformed pairs are skipped.
func parseAllowlist(raw string) map[string]string {
	result := make(map[string]string)
	for _, pair := range splitAndTrim(raw) {
		email, id, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		email = strings.ToLower(strings.TrimSpace(email))
		id = strings.TrimSpace(id)
		if email == "" || id == "" {
			continue
		}
		result[email] = id
	}
	return result
}

func normalizeBasePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "/" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return strings.TrimRight(raw, "/")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
