package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"PriceAnomaly/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validMethods = map[string]bool{"zscore": true, "moving_avg": true, "rate_of_change": true}

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Detection struct {
		DefaultMethod string        `yaml:"default_method" default:"zscore"`
		DefaultWindow int           `yaml:"default_window" default:"20"`
		CacheCapacity int           `yaml:"cache_capacity" default:"1024"`
		CacheTTL      time.Duration `yaml:"cache_ttl" default:"10m"`
	} `yaml:"detection"`
	RateLimit struct {
		RPS   float64 `yaml:"rps" default:"20"`
		Burst int     `yaml:"burst" default:"40"`
	} `yaml:"ratelimit"`
	Cache struct {
		Redis struct {
			Enabled      bool          `yaml:"enabled"`
			Addr         string        `yaml:"addr" default:"localhost:6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			PoolSize     int           `yaml:"pool_size" default:"10"`
			TTL          time.Duration `yaml:"ttl" default:"30m"`
			Prefix       string        `yaml:"prefix" default:"priceanomaly"`
			PingAttempts int           `yaml:"ping_attempts" default:"5"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"price-anomaly.requests"`
		ResultTopic  string   `yaml:"result_topic" default:"price-anomaly.results"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts    int           `yaml:"max_attempts" default:"3"`
			BatchTimeout   time.Duration `yaml:"batch_timeout" default:"10ms"`
			WriteTimeout   time.Duration `yaml:"write_timeout" default:"10s"`
			PublishRetries int           `yaml:"publish_retries" default:"3"`
			PublishMaxWait time.Duration `yaml:"publish_max_wait" default:"5s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID     string        `yaml:"group_id" default:"price-anomaly"`
			StartOffset string        `yaml:"start_offset" default:"latest"`
			Workers     int           `yaml:"workers" default:"4"`
			BufferSize  int           `yaml:"buffer_size" default:"256"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic    string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (when present) and the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KAFKA_ENABLED: %w", err)
		}
		c.Kafka.Enabled = enabled
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if !validMethods[c.Detection.DefaultMethod] {
		return fmt.Errorf("detection.default_method %q is not supported", c.Detection.DefaultMethod)
	}
	if c.Detection.DefaultWindow < 2 {
		return fmt.Errorf("detection.default_window must be at least 2, got %d", c.Detection.DefaultWindow)
	}
	if c.Detection.CacheCapacity < 1 {
		return fmt.Errorf("detection.cache_capacity must be at least 1, got %d", c.Detection.CacheCapacity)
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestTopic == "" || c.Kafka.ResultTopic == "" {
			return fmt.Errorf("kafka.request_topic and kafka.result_topic are required when kafka is enabled")
		}
	}
	return nil
}
