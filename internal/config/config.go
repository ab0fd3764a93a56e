// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the typed view of the service environment.
type Config struct {
	Env         string
	Port        string
	LogLevel    string
	JWTSecret   string
	CORSOrigins string

	DB    DBConfig
	Redis RedisConfig
	Kafka KafkaConfig
	Sweep SweepConfig

	DefaultCurrency string
	ConfigCacheTTL  time.Duration
	// FXRates overrides the pivot table, units per 1 USD keyed by currency code.
	FXRates map[string]string
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	NotifyTopic string
}

type SweepConfig struct {
	Interval  time.Duration
	BatchSize int
	LeaseTTL  time.Duration
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// NewViper returns a viper instance bound to the environment with every
// default the service relies on.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "wallet")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 30*time.Minute)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_NOTIFY_TOPIC", "wallet.request.terminal")

	v.SetDefault("SWEEP_INTERVAL", 5*time.Minute)
	v.SetDefault("SWEEP_BATCH_SIZE", 200)
	v.SetDefault("SWEEP_LEASE_TTL", 2*time.Minute)

	v.SetDefault("DEFAULT_CURRENCY", "INR")
	v.SetDefault("CONFIG_CACHE_TTL", 10*time.Minute)
	v.SetDefault("FX_RATES", "")
	return v
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper builds a Config from v. It fails on a malformed FX_RATES entry.
// JWT_SECRET has no default; callers that verify tokens must reject an empty
// secret.
func FromViper(v *viper.Viper) (*Config, error) {
	rates, err := parseRates(v.GetString("FX_RATES"))
	if err != nil {
		return nil, err
	}
	return &Config{
		Env:         v.GetString("ENV"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		DB: DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Enabled:     v.GetBool("KAFKA_ENABLED"),
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			NotifyTopic: v.GetString("KAFKA_NOTIFY_TOPIC"),
		},
		Sweep: SweepConfig{
			Interval:  v.GetDuration("SWEEP_INTERVAL"),
			BatchSize: v.GetInt("SWEEP_BATCH_SIZE"),
			LeaseTTL:  v.GetDuration("SWEEP_LEASE_TTL"),
		},
		DefaultCurrency: strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
		ConfigCacheTTL:  v.GetDuration("CONFIG_CACHE_TTL"),
		FXRates:         rates,
	}, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRates reads "INR=83,NGN=1500" into a map.
func parseRates(s string) (map[string]string, error) {
	rates := make(map[string]string)
	for _, pair := range splitList(s) {
		k, val, ok := strings.Cut(pair, "=")
		k, val = strings.ToUpper(strings.TrimSpace(k)), strings.TrimSpace(val)
		if !ok || k == "" || val == "" {
			return nil, fmt.Errorf("invalid FX_RATES entry %q: want CODE=rate", pair)
		}
		rates[k] = val
	}
	return rates, nil
}
