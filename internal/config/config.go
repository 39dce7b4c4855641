package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the dashboard service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - HealthPort: The port for the monitoring server.
// - HTTPPort: The port for the dashboard server.
// - Source: Which telemetry source to read and how.
// - Workers: The number of concurrent workers annotating a batch.
// - RefreshInterval: The duration between refreshes, zero fetches once at start.
// - AllowNegativeSignal: Whether negative signal strength passes the field validator.
// - Zone: The no-fly zone.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env                 string
	HealthPort          int
	HTTPPort            int
	Source              SourceConfig
	Workers             int
	RefreshInterval     time.Duration
	AllowNegativeSignal bool
	Zone                ZoneConfig
	Database            PostgresConfig
}

// SourceConfig selects and tunes the telemetry source.
type SourceConfig struct {
	Type        string        // mock, http or postgres
	URL         string        // Feed URL for the http source
	RateLimit   int           // Requests per second for the http source
	Delay       time.Duration // Artificial latency of the mock source
	FailureRate float64       // Failure probability of the mock source
}

// ZoneConfig holds the no-fly zone bounds in degrees.
type ZoneConfig struct {
	North     float64
	South     float64
	East      float64
	West      float64
	Normalize bool // Reorder swapped bounds before use
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment, an optional .env file and an optional
// YAML file named by SKYGUARD_CONFIG. Environment variables win over the file.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKYGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range map[string]string{
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.name":     "DB_NAME",
	} {
		_ = v.BindEnv(key, env)
	}

	if path := os.Getenv("SKYGUARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	return &Config{
		Env:        v.GetString("env"),
		HealthPort: mustInt(v, "health.port", "failed to parse port for monitoring server from configuration"),
		HTTPPort:   mustInt(v, "http.port", "failed to parse port for dashboard server from configuration"),
		Source: SourceConfig{
			Type:        v.GetString("source.type"),
			URL:         v.GetString("source.url"),
			RateLimit:   mustInt(v, "source.rate_limit", "failed to parse source rate limit from configuration"),
			Delay:       mustDuration(v, "fetch.delay", "failed to parse fetch delay from configuration"),
			FailureRate: mustFailureRate(v),
		},
		Workers:             mustInt(v, "workers", "failed to parse workers from configuration, must be an integer types"),
		RefreshInterval:     mustDuration(v, "refresh.interval", "failed to parse refresh interval from configuration"),
		AllowNegativeSignal: mustBool(v, "signal.allow_negative", "failed to parse signal policy from configuration"),
		Zone: ZoneConfig{
			North:     mustFloat(v, "zone.north", "failed to parse no-fly zone from configuration"),
			South:     mustFloat(v, "zone.south", "failed to parse no-fly zone from configuration"),
			East:      mustFloat(v, "zone.east", "failed to parse no-fly zone from configuration"),
			West:      mustFloat(v, "zone.west", "failed to parse no-fly zone from configuration"),
			Normalize: mustBool(v, "zone.normalize", "failed to parse no-fly zone from configuration"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.name"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("health.port", "8080")
	v.SetDefault("http.port", "3000")
	v.SetDefault("source.type", "mock")
	v.SetDefault("source.url", "")
	v.SetDefault("source.rate_limit", "1")
	v.SetDefault("fetch.delay", "2500ms")
	v.SetDefault("fetch.failure_rate", "0.05")
	v.SetDefault("workers", "4")
	v.SetDefault("refresh.interval", "0s")
	v.SetDefault("signal.allow_negative", "false")
	v.SetDefault("zone.north", "10.50")
	v.SetDefault("zone.south", "50.50")
	v.SetDefault("zone.east", "30.50")
	v.SetDefault("zone.west", "40.50")
	v.SetDefault("zone.normalize", "false")
	v.SetDefault("postgres.port", "5432")
}

// The helpers below parse the raw value themselves: viper's typed getters silently turn
// malformed input into zero values.

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(v.GetString(key))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustFloat(v *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(v.GetString(key), 64)
	if err != nil {
		panic(msg)
	}
	return value
}

func mustBool(v *viper.Viper, key, msg string) bool {
	value, err := strconv.ParseBool(v.GetString(key))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustFailureRate(v *viper.Viper) float64 {
	const msg = "failed to parse failure rate from configuration, must be within [0, 1]"
	value := mustFloat(v, "fetch.failure_rate", msg)
	if math.IsNaN(value) || value < 0 || value > 1 {
		panic(msg)
	}
	return value
}
