package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	LogMode     string `mapstructure:"LOG_MODE"`
	CORSOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	RedisAddr           string        `mapstructure:"REDIS_ADDR"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int           `mapstructure:"REDIS_DB"`
	LeaderboardCacheTTL time.Duration `mapstructure:"LEADERBOARD_CACHE_TTL"`

	// Daily XP needed for a day to count towards a streak.
	StreakThreshold int    `mapstructure:"STREAK_THRESHOLD"`
	Timezone        string `mapstructure:"APP_TIMEZONE"`
}

var defaults = map[string]interface{}{
	"DB_DRIVER":             "postgres",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "postgres",
	"DB_NAME":               "learning_platform",
	"DB_SSLMODE":            "disable",
	"SQLITE_PATH":           "learning_platform.db",
	"JWT_SECRET":            "secret",
	"JWT_TTL_HOURS":         72,
	"SERVER_PORT":           "8080",
	"LOG_MODE":              "development",
	"CORS_ALLOW_ORIGINS":    "*",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"LEADERBOARD_CACHE_TTL": "60s",
	"STREAK_THRESHOLD":      150,
	"APP_TIMEZONE":          "UTC",
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		// Unmarshal only sees keys viper knows about.
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.StreakThreshold <= 0 {
		return fmt.Errorf("config: STREAK_THRESHOLD must be positive, got %d", c.StreakThreshold)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the timezone that defines calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}
