package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	BaseURL string `mapstructure:"BASE_URL"`

	DBHost    string `mapstructure:"DB_HOST"`
	DBPort    string `mapstructure:"DB_PORT"`
	DBUser    string `mapstructure:"DB_USER"`
	DBPass    string `mapstructure:"DB_PASS"`
	DBName    string `mapstructure:"DB_NAME"`
	DBSSLMode string `mapstructure:"DB_SSLMODE"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	StoreBackend string        `mapstructure:"STORE_BACKEND"`
	CacheEnabled bool          `mapstructure:"CACHE_ENABLED"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`

	ShortCodeLength int   `mapstructure:"SHORT_CODE_LENGTH"`
	MaxAttempts     int   `mapstructure:"MAX_ATTEMPTS"`
	SnowflakeNode   int64 `mapstructure:"SNOWFLAKE_NODE"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MigrationsDir      string `mapstructure:"MIGRATIONS_DIR"`
}

var defaults = map[string]interface{}{
	"APP_PORT":             ":8080",
	"BASE_URL":             "",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_PASS":              "",
	"DB_NAME":              "shrt",
	"DB_SSLMODE":           "disable",
	"REDIS_HOST":           "localhost",
	"REDIS_PORT":           "6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"STORE_BACKEND":        BackendPostgres,
	"CACHE_ENABLED":        false,
	"CACHE_TTL":            10 * time.Minute,
	"SHORT_CODE_LENGTH":    6,
	"MAX_ATTEMPTS":         3,
	"SNOWFLAKE_NODE":       1,
	"CORS_ALLOWED_ORIGINS": "*",
	"MIGRATIONS_DIR":       "./migrations",
}

// Load reads ./config/<APP_ENV>.yaml (local by default) from the given
// search paths, after loading an optional .env file. Environment variables
// override file values; a missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigType("yaml")
	switch env := os.Getenv("APP_ENV"); env {
	case "docker":
		v.SetConfigName("docker")
	default:
		v.SetConfigName("local")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ShortCodeLength < 1 || c.ShortCodeLength > 10 {
		return fmt.Errorf("SHORT_CODE_LENGTH must be in 1..10, got %d", c.ShortCodeLength)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	// snowflake reserves 10 bits for the node number.
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return fmt.Errorf("SNOWFLAKE_NODE must be in 0..1023, got %d", c.SnowflakeNode)
	}
	switch c.StoreBackend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendRedis, c.StoreBackend)
	}
	return nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
