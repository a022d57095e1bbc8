package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Redis    RedisConfig
	Meetings MeetingsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// ProviderConfig holds the third-party realtime video API settings.
type ProviderConfig struct {
	BaseURL      string // REST base, e.g. https://rtk.realtime.example.com/v2
	OrgID        string
	APIKey       string
	WebsocketURL string // lifecycle event feed; empty disables the consumer
	WatermarkURL string // default recording watermark
}

// RedisConfig holds Redis connection settings. An empty Addr disables
// redis; the details cache then runs in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MeetingsConfig tunes the reconciliation core's host wiring.
type MeetingsConfig struct {
	TickInterval    time.Duration // live runtime recompute period
	DetailsCacheTTL time.Duration
	GroupsFile      string   // path to group catalog JSON
	SessionDenylist []string // session row ids to hide from the list
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Provider: ProviderConfig{
			BaseURL:      getEnv("PROVIDER_BASE_URL", "https://rtk.realtime.cloudflare.com/v2"),
			OrgID:        getEnv("PROVIDER_ORG_ID", ""),
			APIKey:       getEnv("PROVIDER_API_KEY", ""),
			WebsocketURL: getEnv("PROVIDER_WS_URL", ""),
			WatermarkURL: getEnv("PROVIDER_WATERMARK_URL", "https://example.com"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Meetings: MeetingsConfig{
			TickInterval:    time.Duration(getEnvInt("TICK_INTERVAL_SEC", 10)) * time.Second,
			DetailsCacheTTL: time.Duration(getEnvInt("DETAILS_CACHE_TTL_MIN", 10)) * time.Minute,
			GroupsFile:      getEnv("GROUPS_FILE", "data/group_info.json"),
			SessionDenylist: splitTrim(getEnv("SESSION_DENYLIST", ""), ","),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
