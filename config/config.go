// Package config loads settings from the environment and opens the backing
// stores.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config is the service configuration. Every field comes from the environment.
type Config struct {
	Port            string        `env:"PORT"             env-default:"8080"`
	Env             string        `env:"GO_ENV"           env-default:"development"`
	LogLevel        string        `env:"LOG_LEVEL"        env-default:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	StoreDriver   string `env:"STORE_DRIVER"     env-default:"mongo"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" env-default:"civicecho"`

	RedisAddress        string `env:"REDIS_ADDRESS"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RateLimitPrefix     string `env:"REDIS_QUEUE_FOR_ISSUE_LIMIT" env-default:"complaint_limit"`
	ComplaintDailyLimit int    `env:"COMPLAINT_DAILY_LIMIT"       env-default:"20"`

	JWTSecret       string   `env:"JWT_SECRET"                env-required:"true"`
	CORSOrigin      string   `env:"CORS_ORIGIN"               env-default:"*"`
	AuthorityEmails []string `env:"AUTHORITY_EMAIL_WHITELIST" env-separator:","`

	GoogleNLPAPIKey     string        `env:"GOOGLE_NLP_API_KEY"`
	NominatimURL        string        `env:"NOMINATIM_URL"        env-default:"https://nominatim.openstreetmap.org/reverse"`
	GeocodeEnabled      bool          `env:"GEOCODE_ENABLED"      env-default:"true"`
	GeocodeCacheTTL     time.Duration `env:"GEOCODE_CACHE_TTL"    env-default:"24h"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" env-default:"5s"`

	ClusterDistanceKm    float64       `env:"CLUSTER_DISTANCE_KM"    env-default:"0.5"`
	ClusterWindow        time.Duration `env:"CLUSTER_WINDOW"         env-default:"24h"`
	ClusterMinSimilarity float64       `env:"CLUSTER_MIN_SIMILARITY" env-default:"0.8"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	emails := c.AuthorityEmails[:0]
	for _, e := range c.AuthorityEmails {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	c.AuthorityEmails = emails
}

// Validate checks rules the env tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ComplaintDailyLimit < 0 {
		return fmt.Errorf("COMPLAINT_DAILY_LIMIT must be >= 0 (got %d)", c.ComplaintDailyLimit)
	}
	if c.ClusterDistanceKm <= 0 {
		return fmt.Errorf("CLUSTER_DISTANCE_KM must be > 0 (got %v)", c.ClusterDistanceKm)
	}
	if c.ClusterWindow <= 0 {
		return fmt.Errorf("CLUSTER_WINDOW must be > 0 (got %v)", c.ClusterWindow)
	}
	if c.ClusterMinSimilarity <= 0 || c.ClusterMinSimilarity > 1 {
		return fmt.Errorf("CLUSTER_MIN_SIMILARITY must be in (0, 1] (got %v)", c.ClusterMinSimilarity)
	}
	return nil
}

// Production reports whether GO_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
