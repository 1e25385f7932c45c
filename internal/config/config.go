// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Snapshot SnapshotConfig
	Offsite  OffsiteConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	DataDir     string
	DataFile    string
	SnapshotDir string
}

type AuthConfig struct {
	Password   string
	CookieName string
	CookieTTL  int
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

type SnapshotConfig struct {
	AutoEnabled     bool
	IntervalMinutes int
	KeepCount       int
	KeepDays        int
}

type OffsiteConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("LOG_LEVEL", "")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_DATA_DIR", "./data")
		viper.SetDefault("APP_DATA_FILE", "db.json")
		viper.SetDefault("APP_SNAPSHOT_DIR", "./data/snapshots")
		viper.SetDefault("AUTH_PASSWORD", "")
		viper.SetDefault("AUTH_COOKIE_NAME", "eas_auth")
		viper.SetDefault("AUTH_COOKIE_TTL_HOURS", 720)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)
		viper.SetDefault("SNAPSHOT_AUTO_ENABLED", true)
		viper.SetDefault("SNAPSHOT_INTERVAL_MINUTES", 10)
		viper.SetDefault("SNAPSHOT_KEEP_COUNT", 30)
		viper.SetDefault("SNAPSHOT_KEEP_DAYS", 14)
		viper.SetDefault("OFFSITE_ENABLED", false)
		viper.SetDefault("OFFSITE_ENDPOINT", "")
		viper.SetDefault("OFFSITE_ACCESS_KEY", "")
		viper.SetDefault("OFFSITE_SECRET_KEY", "")
		viper.SetDefault("OFFSITE_BUCKET", "")
		viper.SetDefault("OFFSITE_REGION", "us-east-1")
		viper.SetDefault("OFFSITE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure data and snapshot directories exist
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_SNAPSHOT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       logLevelFor(viper.GetString("SERVER_MODE"), viper.GetString("LOG_LEVEL")),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			App: AppConfig{
				DataDir:     viper.GetString("APP_DATA_DIR"),
				DataFile:    viper.GetString("APP_DATA_FILE"),
				SnapshotDir: viper.GetString("APP_SNAPSHOT_DIR"),
			},
			Auth: AuthConfig{
				Password:   viper.GetString("AUTH_PASSWORD"),
				CookieName: viper.GetString("AUTH_COOKIE_NAME"),
				CookieTTL:  viper.GetInt("AUTH_COOKIE_TTL_HOURS"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				AnalyticsTTLSeconds: viper.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
			},
			Snapshot: SnapshotConfig{
				AutoEnabled:     viper.GetBool("SNAPSHOT_AUTO_ENABLED"),
				IntervalMinutes: viper.GetInt("SNAPSHOT_INTERVAL_MINUTES"),
				KeepCount:       viper.GetInt("SNAPSHOT_KEEP_COUNT"),
				KeepDays:        viper.GetInt("SNAPSHOT_KEEP_DAYS"),
			},
			Offsite: OffsiteConfig{
				Enabled:   viper.GetBool("OFFSITE_ENABLED"),
				Endpoint:  viper.GetString("OFFSITE_ENDPOINT"),
				AccessKey: viper.GetString("OFFSITE_ACCESS_KEY"),
				SecretKey: viper.GetString("OFFSITE_SECRET_KEY"),
				Bucket:    viper.GetString("OFFSITE_BUCKET"),
				Region:    viper.GetString("OFFSITE_REGION"),
				UseSSL:    viper.GetBool("OFFSITE_USE_SSL"),
			},
		}
	})

	return instance
}

// logLevelFor derives the zerolog level from an explicit LOG_LEVEL override
// or, when unset, from the server mode. The mode values are gin's, not
// zerolog's, so they never reach the logger directly.
func logLevelFor(mode, override string) string {
	if override != "" {
		return override
	}
	if mode == "debug" {
		return "debug"
	}
	return "info"
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
