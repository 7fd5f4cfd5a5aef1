package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Store        StoreConfig
	Revocation   RevocationConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	OAuth2Google OAuth2GoogleConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// URL takes precedence over the individual fields.
	URL         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type StoreConfig struct {
	Driver string
}

type RevocationConfig struct {
	Driver string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

type PasswordConfig struct {
	BcryptCost int
	// HashConcurrency bounds concurrent bcrypt operations.
	HashConcurrency int64
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether Google sign-in is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.RedirectURL != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		App: AppConfig{
			Port:           v.GetInt("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			FrontendURL:    v.GetString("FRONTEND_URL"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSL_MODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Revocation: RevocationConfig{
			Driver: strings.ToLower(v.GetString("REVOCATION_DRIVER")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:           v.GetString("JWT_SECRET_KEY"),
			AccessExpiration: v.GetDuration("JWT_ACCESS_EXPIRATION_TIME"),
		},
		Password: PasswordConfig{
			BcryptCost:      v.GetInt("BCRYPT_COST"),
			HashConcurrency: v.GetInt64("HASH_CONCURRENCY"),
		},
		OAuth2Google: OAuth2GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "identity")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("REVOCATION_DRIVER", DriverMemory)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRATION_TIME", "24h")

	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("HASH_CONCURRENCY", 8)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 bytes")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Password == "" {
			return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Revocation.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis revocation store")
		}
	case DriverPostgres:
		if c.Store.Driver != DriverPostgres {
			return fmt.Errorf("REVOCATION_DRIVER=postgres requires STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported REVOCATION_DRIVER %q", c.Revocation.Driver)
	}

	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Password.HashConcurrency < 1 {
		return fmt.Errorf("HASH_CONCURRENCY must be at least 1")
	}

	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientID == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID is required")
		}
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("GOOGLE_REDIRECT_URL is required")
		}
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + c.Database.SSLMode,
	}
	return u.String()
}

func splitList(value string) []string {
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
