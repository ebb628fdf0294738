package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes" default:"67108864"`
		RateLimit       struct {
			PerMinute int `yaml:"per_minute" default:"120"`
			Burst     int `yaml:"burst" default:"20"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Analysis struct {
		TypicalTypes []string      `yaml:"typical_types" default:"[\"HLC\",\"HL\"]"`
		MaxBars      int           `yaml:"max_bars" default:"2000000"`
		Timeout      time.Duration `yaml:"timeout" default:"60s"`
		Parallel     bool          `yaml:"parallel" default:"true"`
	} `yaml:"analysis"`
	Source struct {
		Type   string `yaml:"type" default:"csv"`
		CSVDir string `yaml:"csv_dir" default:"data"`
	} `yaml:"source"`
	Cache struct {
		Type    string        `yaml:"type" default:"memory"`
		TTL     time.Duration `yaml:"ttl" default:"10m"`
		MaxSize int           `yaml:"max_size" default:"256"`
	} `yaml:"cache"`
	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		JobsTopic    string   `yaml:"jobs_topic" default:"wave.jobs"`
		ResultsTopic string   `yaml:"results_topic" default:"wave.summaries"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"neelywave"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"wave.jobs.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"market"`
		Table            string        `yaml:"table" default:"candles_1m"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Schedule struct {
		Enabled  bool          `yaml:"enabled"`
		Cron     string        `yaml:"cron" default:"0 */15 * * * *"`
		Symbols  []string      `yaml:"symbols"`
		Lookback time.Duration `yaml:"lookback" default:"168h"`
		LockTTL  time.Duration `yaml:"lock_ttl" default:"10m"`
	} `yaml:"schedule"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	var c Config
	// tags are static, Set cannot fail on them
	_ = defaults.Set(&c)
	return &c
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("CSV_DIR"); v != "" {
		c.Source.CSVDir = v
	}
	if v := getenv("CACHE"); v != "" {
		c.Cache.Type = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Schedule.Symbols = strings.Split(v, ",")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Source.Type {
	case "csv":
		if c.Source.CSVDir == "" {
			return fmt.Errorf("source.csv_dir is required for the csv source")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("source.type 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("source.type must be 'csv' or 'clickhouse', got '%s'", c.Source.Type)
	}
	switch c.Cache.Type {
	case "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.type must be one of none, memory, redis, layered, got '%s'", c.Cache.Type)
	}
	for _, t := range c.Analysis.TypicalTypes {
		if t != "HLC" && t != "HL" {
			return fmt.Errorf("analysis.typical_types: unknown type '%s'", t)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Schedule.Enabled {
		if len(c.Schedule.Symbols) == 0 {
			return fmt.Errorf("schedule.symbols cannot be empty when the schedule is enabled")
		}
		if c.Schedule.Lookback <= 0 {
			return fmt.Errorf("schedule.lookback must be positive")
		}
	}
	return nil
}
