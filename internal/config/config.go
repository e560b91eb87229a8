package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shareit/service-shareit/internal/pkg/database"
	"github.com/spf13/viper"
)

const envPrefix = "SHAREIT"

// KafkaConfig holds event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GatewayConfig holds settings for the validating front process.
type GatewayConfig struct {
	Port      string
	ServerURL string
	RateRPS   float64
	RateBurst int
}

// ServiceConfig holds all configuration for the shareit processes.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.Config
	KafkaConfig KafkaConfig
	Gateway     GatewayConfig
}

// Load reads configuration from an optional .env file and SHAREIT_* environment variables.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "9090")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", database.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "shareit")
	v.SetDefault("DB_PASSWORD", "shareit")
	v.SetDefault("DB_NAME", "shareit")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_DSN", "shareit.db")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "booking.events")
	v.SetDefault("GATEWAY_PORT", "8080")
	v.SetDefault("GATEWAY_SERVER_URL", "http://localhost:9090")
	v.SetDefault("GATEWAY_RATE_RPS", 20.0)
	v.SetDefault("GATEWAY_RATE_BURST", 40)
	return v
}

// FromViper builds the config from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Port:   portAddr(v.GetString("SERVICE_PORT")),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.Config{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			DSN:      v.GetString("DB_DSN"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Gateway: GatewayConfig{
			Port:      portAddr(v.GetString("GATEWAY_PORT")),
			ServerURL: v.GetString("GATEWAY_SERVER_URL"),
			RateRPS:   v.GetFloat64("GATEWAY_RATE_RPS"),
			RateBurst: v.GetInt("GATEWAY_RATE_BURST"),
		},
	}

	switch cfg.DBConfig.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported %s_DB_DRIVER %q", envPrefix, cfg.DBConfig.Driver)
	}
	if cfg.Gateway.RateRPS <= 0 {
		return nil, fmt.Errorf("%s_GATEWAY_RATE_RPS must be positive", envPrefix)
	}
	return cfg, nil
}

// portAddr accepts "8080" or ":8080".
func portAddr(p string) string {
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
