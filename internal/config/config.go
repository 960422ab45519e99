package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                  string
	Environment           string
	AllowedOrigins        []string
	DatabaseURL           string
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	DBConnMaxLifetimeMin  int
	RedisURL              string
	RedisPassword         string
	FrontendURL           string
	JWTSecret             string
	AccessTokenTTLMinutes int
	SessionTTL            time.Duration
	BotMoveDelay          time.Duration
	PostGameWindow        time.Duration
	Engine                EngineConfig
}

// EngineConfig holds the bot's tunables so they can change without a rebuild
type EngineConfig struct {
	CornerWeight       int
	SideWeight         int
	GameOverMultiplier int
	DepthEasy          int
	DepthMedium        int
	DepthHard          int
	// total thinking time per side per game in milliseconds; <= 0 means unlimited
	TimeBudgetMs int
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	// Database Config
	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	AppConfig = &Config{
		Port:                  port,
		Environment:           environment,
		AllowedOrigins:        allowedOrigins,
		DatabaseURL:           dbURL,
		DBMaxOpenConns:        GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:        GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin:  GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:              GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:         GetEnv("REDIS_PASSWORD", ""),
		FrontendURL:           frontendURL,
		JWTSecret:             GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		AccessTokenTTLMinutes: GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60*24),
		SessionTTL:            time.Duration(GetEnvAsInt("SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
		BotMoveDelay:          time.Duration(GetEnvAsInt("BOT_MOVE_DELAY_MS", 500)) * time.Millisecond,
		PostGameWindow:        time.Duration(GetEnvAsInt("POST_GAME_WINDOW_SECONDS", 30)) * time.Second,
		Engine:                LoadEngineConfig(),
	}

	return AppConfig
}

// LoadEngineConfig reads only the engine keys; the self-play tool needs nothing else
func LoadEngineConfig() EngineConfig {
	return EngineConfig{
		CornerWeight:       GetEnvAsInt("ENGINE_CORNER_WEIGHT", 10),
		SideWeight:         GetEnvAsInt("ENGINE_SIDE_WEIGHT", 3),
		GameOverMultiplier: GetEnvAsInt("ENGINE_GAME_OVER_MULTIPLIER", 100),
		DepthEasy:          GetEnvAsInt("ENGINE_DEPTH_EASY", 1),
		DepthMedium:        GetEnvAsInt("ENGINE_DEPTH_MEDIUM", 2),
		DepthHard:          GetEnvAsInt("ENGINE_DEPTH_HARD", 4),
		TimeBudgetMs:       GetEnvAsInt("ENGINE_TIME_BUDGET_MS", -1),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
