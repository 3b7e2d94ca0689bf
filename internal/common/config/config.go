package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP struct {
		Port int
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
		Exchange string
		Queue    string
	}
	Proximity struct {
		RadiusMeters float64
	}
	Location struct {
		RefreshThresholdMeters float64
	}
	Alert struct {
		TTL           time.Duration
		SweepInterval time.Duration
	}
	SafeExit struct {
		TickInterval time.Duration
	}
	Lookup struct {
		CacheTTL time.Duration
	}
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.HTTP.Port = getEnvInt("HTTP_PORT", 8080)

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", 5672)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", "guest")
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")
	cfg.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", "alert_topic")
	cfg.RabbitMQ.Queue = getEnv("RABBITMQ_QUEUE", "alert_broadcasts")

	cfg.Proximity.RadiusMeters = getEnvFloat("PROXIMITY_RADIUS_METERS", 2000)
	cfg.Location.RefreshThresholdMeters = getEnvFloat("REFRESH_THRESHOLD_METERS", 100)

	cfg.Alert.TTL = getEnvDuration("ALERT_TTL", 30*time.Minute)
	cfg.Alert.SweepInterval = getEnvDuration("ALERT_SWEEP_INTERVAL", time.Minute)

	cfg.SafeExit.TickInterval = getEnvDuration("SAFE_EXIT_TICK_INTERVAL", 45*time.Second)

	cfg.Lookup.CacheTTL = getEnvDuration("LOOKUP_CACHE_TTL", time.Hour)

	if cfg.Proximity.RadiusMeters <= 0 {
		return nil, fmt.Errorf("proximity radius must be positive, got %f", cfg.Proximity.RadiusMeters)
	}
	if cfg.Alert.TTL <= 0 {
		return nil, fmt.Errorf("alert TTL must be positive, got %s", cfg.Alert.TTL)
	}

	return cfg, nil
}

func (c *Config) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
