package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppEnv          string
	AppPort         string
	ShutdownTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// Redis
	RedisAddr   string
	RedisPwd    string
	RedisDB     int
	RedisPrefix string

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// JWT
	JWTSecret string

	// Transaction retry budget
	TxnMaxAttempts int
}

// Load reads configuration from config.yaml and environment variables;
// env values win.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "echo")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PREFIX", "echo")
	viper.SetDefault("KAFKA_TOPIC", "echo_events")
	viper.SetDefault("TXN_MAX_ATTEMPTS", 5)

	// the config file is optional; env-only deployments are fine
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	}

	cfg := &Config{
		AppEnv:          viper.GetString("APP_ENV"),
		AppPort:         viper.GetString("APP_PORT"),
		ShutdownTimeout: time.Duration(viper.GetInt("SHUTDOWN_TIMEOUT")) * time.Second,
		MongoURI:        viper.GetString("MONGO_URI"),
		MongoDB:         viper.GetString("MONGO_DB"),
		RedisAddr:       viper.GetString("REDIS_ADDR"),
		RedisPwd:        viper.GetString("REDIS_PASSWORD"),
		RedisDB:         viper.GetInt("REDIS_DB"),
		RedisPrefix:     viper.GetString("REDIS_PREFIX"),
		KafkaBrokers:    viper.GetStringSlice("KAFKA_BROKERS"),
		KafkaTopic:      viper.GetString("KAFKA_TOPIC"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		TxnMaxAttempts:  viper.GetInt("TXN_MAX_ATTEMPTS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}
