package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port        string
	Env         string // development, staging, production
	CORSOrigins []string

	// Database (payload archive)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream stats API
	StatsAPI StatsAPIConfig

	// Bar layout
	Bars BarConfig

	// Game watcher
	Watcher WatcherConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// StatsAPIConfig holds the upstream outlier service configuration
type StatsAPIConfig struct {
	BaseURL       string
	ScoreboardURL string
	Timeout       time.Duration
	RequestsPerS  int
	GamesTTL      time.Duration
	PayloadTTL    time.Duration
}

// BarConfig holds the bar height policy and image templates
type BarConfig struct {
	HeightPolicy string // linear, table
	Base         int
	Step         int
	Floor        int
	Table        []int
	Fallback     int

	PlayerHeadshotTemplate string
	TeamLogoTemplate       string

	// LayoutFile is an optional YAML file overriding the fields above
	LayoutFile string
}

// WatcherConfig holds the finished-game watcher configuration
type WatcherConfig struct {
	Schedule  string
	Enabled   bool
	ReplayTTL time.Duration // how long new websocket subscribers get a published timeline
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsStringSlice("CORS_ORIGINS", []string{"*"}),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		StatsAPI: StatsAPIConfig{
			BaseURL:       strings.TrimRight(getEnv("STATS_API_BASE_URL", "http://localhost:5000"), "/"),
			ScoreboardURL: getEnv("SCOREBOARD_URL", "https://cdn.nba.com/static/json/liveData/scoreboard/todaysScoreboard_00.json"),
			Timeout:       getEnvAsDuration("STATS_API_TIMEOUT", "30s"),
			RequestsPerS:  getEnvAsInt("STATS_API_RPS", 5),
			GamesTTL:      getEnvAsDuration("STATS_API_GAMES_TTL", "10m"),
			PayloadTTL:    getEnvAsDuration("STATS_API_PAYLOAD_TTL", "1h"),
		},

		Bars: BarConfig{
			HeightPolicy: strings.ToLower(getEnv("BAR_HEIGHT_POLICY", "linear")),
			Base:         getEnvAsInt("BAR_HEIGHT_BASE", 500),
			Step:         getEnvAsInt("BAR_HEIGHT_STEP", 100),
			Floor:        getEnvAsInt("BAR_HEIGHT_FLOOR", 100),
			Table:        getEnvAsIntSlice("BAR_HEIGHT_TABLE", []int{500, 400, 300, 200, 100}),
			Fallback:     getEnvAsInt("BAR_HEIGHT_FALLBACK", 80),

			PlayerHeadshotTemplate: getEnv("PLAYER_HEADSHOT_TEMPLATE", "https://cdn.nba.com/headshots/nba/latest/1040x760/{id}.png"),
			TeamLogoTemplate:       getEnv("TEAM_LOGO_TEMPLATE", "logos/{abbr}.svg"),

			LayoutFile: getEnv("BAR_LAYOUT_FILE", ""),
		},

		Watcher: WatcherConfig{
			Schedule:  getEnv("WATCHER_SCHEDULE", "0 */3 * * * *"),
			Enabled:   getEnvAsBool("WATCHER_ENABLED", false),
			ReplayTTL: getEnvAsDuration("TIMELINE_REPLAY_TTL", "6h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when ARCHIVE_ENABLED is set")
	}

	switch c.Bars.HeightPolicy {
	case "linear", "table":
	default:
		return fmt.Errorf("BAR_HEIGHT_POLICY must be one of: linear, table")
	}

	if c.StatsAPI.BaseURL == "" {
		return fmt.Errorf("STATS_API_BASE_URL is required")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsIntSlice parses a comma separated list such as "500,420,340"
func getEnvAsIntSlice(key string, defaultValue []int) []int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		values = append(values, v)
	}

	return values
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, p := range strings.Split(valueStr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}

	return values
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
