package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	EventsChannel      string
	JWTSecret          string
	StatsCacheTTL      time.Duration
	ReconcileSchedule  string
	ReconcileBatchSize int
	CORSAllowOrigins   string
	SubmissionRateMax  int
	SeedEnabled        bool
	SeedToken          string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// UsesBroker reports whether grading events should travel through an external broker.
func (c Config) UsesBroker() bool {
	return c.RedisURL != "" || c.NATSURL != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROGRESS")
	v.AutomaticEnv()
	// An explicitly blank variable overrides the default, e.g. a blank reconcile schedule turns the sweep off.
	v.AllowEmptyEnv(true)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Course Progress API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "progress:grading")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("reconcile.schedule", "0 */5 * * * *")
	v.SetDefault("reconcile.batch_size", 100)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("submissions.rate_limit", 30)
	v.SetDefault("seed.enabled", false)

	ttlString := v.GetString("stats.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		EventsChannel:      v.GetString("events.channel"),
		JWTSecret:          v.GetString("jwt.secret"),
		StatsCacheTTL:      ttl,
		ReconcileSchedule:  strings.TrimSpace(v.GetString("reconcile.schedule")),
		ReconcileBatchSize: v.GetInt("reconcile.batch_size"),
		CORSAllowOrigins:   v.GetString("cors.allow_origins"),
		SubmissionRateMax:  v.GetInt("submissions.rate_limit"),
		SeedEnabled:        v.GetBool("seed.enabled"),
		SeedToken:          v.GetString("seed.token"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ReconcileBatchSize <= 0 {
		cfg.ReconcileBatchSize = 100
	}

	return cfg, nil
}
