package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	GitHub   GitHubConfig
	OAuth    OAuthConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// GitHubConfig drives the upstream crawl.
type GitHubConfig struct {
	Org             string
	Token           string
	APIURL          string
	PerPage         int
	RequestTimeout  time.Duration
	EnrichBatchSize int
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type AuthConfig struct {
	JWTSecret        string
	JWTExpiration    time.Duration
	FrontendURL      string
	PlaceholderLogin bool
}

type CacheConfig struct {
	Backend         string
	ContributorsTTL time.Duration
	RepositoryTTL   time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	WarmOnStart     bool
	RefreshInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Mode:           getEnv("GIN_MODE", "release"),
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 0),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4200"}),
		},
		GitHub: GitHubConfig{
			Org:             getEnv("GITHUB_ORG", "angular"),
			Token:           getEnv("GITHUB_PAT", ""),
			APIURL:          getEnv("GITHUB_API_URL", "https://api.github.com/"),
			PerPage:         getEnvAsInt("GITHUB_PER_PAGE", 100),
			RequestTimeout:  getEnvAsDuration("GITHUB_REQUEST_TIMEOUT", 60*time.Second),
			EnrichBatchSize: getEnvAsInt("GITHUB_ENRICH_BATCH_SIZE", 50),
		},
		OAuth: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			JWTExpiration:    getEnvAsDuration("JWT_EXPIRATION_TIME", time.Hour),
			FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:4200"),
			PlaceholderLogin: getEnvAsBool("AUTH_PLACEHOLDER_LOGIN", false),
		},
		Cache: CacheConfig{
			Backend:         strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
			ContributorsTTL: getEnvAsDuration("CACHE_TTL", time.Hour),
			RepositoryTTL:   getEnvAsDuration("CACHE_REPOSITORY_TTL", 6*time.Hour),
			RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvAsInt("REDIS_DB", 0),
			WarmOnStart:     getEnvAsBool("CACHE_WARM_ON_START", false),
			RefreshInterval: getEnvAsDuration("CACHE_REFRESH_INTERVAL", 0),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./orgscope.db"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.GitHub.Org == "" {
		return fmt.Errorf("GITHUB_ORG is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("GITHUB_PER_PAGE must be between 1 and 100, got %d", c.GitHub.PerPage)
	}
	if c.GitHub.EnrichBatchSize < 1 {
		return fmt.Errorf("GITHUB_ENRICH_BATCH_SIZE must be positive, got %d", c.GitHub.EnrichBatchSize)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}

// OAuthEnabled reports whether the GitHub login flow is configured
func (c *Config) OAuthEnabled() bool {
	return c.OAuth.ClientID != "" && c.OAuth.ClientSecret != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Invalid value for %s, using default: %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Invalid value for %s, using default: %t", key, defaultValue)
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "6h") or plain seconds ("3600")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	log.Printf("Invalid value for %s, using default: %s", key, defaultValue)
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
