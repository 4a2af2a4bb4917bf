package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"3m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logger struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Finnhub struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url" default:"https://www.alphavantage.co"`
	} `yaml:"alpha_vantage"`
	Yahoo struct {
		BaseURL string `yaml:"base_url" default:"https://query2.finance.yahoo.com"`
	} `yaml:"yahoo"`
	Scrape struct {
		MarketWatchBaseURL string `yaml:"marketwatch_base_url" default:"https://www.marketwatch.com"`
		ReutersBaseURL     string `yaml:"reuters_base_url" default:"https://www.reuters.com"`
		UserAgent          string `yaml:"user_agent"`
	} `yaml:"scrape"`
	Retry struct {
		MaxAttempts    int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
		InitialBackoff time.Duration `yaml:"initial_backoff" default:"1s"`
	} `yaml:"retry"`
	News struct {
		TopK            int     `yaml:"top_k" default:"7" validate:"gte=1"`
		DedupeThreshold float64 `yaml:"dedupe_threshold" default:"0.85" validate:"gt=0,lte=1"`
	} `yaml:"news"`
	Cache struct {
		QuoteTTL time.Duration `yaml:"quote_ttl" default:"60s"`
		NewsTTL  time.Duration `yaml:"news_ttl" default:"5m"`
	} `yaml:"cache"`
	Writer struct {
		Backend string `yaml:"backend" default:"ollama" validate:"oneof=ollama anthropic"`
		Ollama  struct {
			BaseURL string        `yaml:"base_url" default:"http://localhost:11434"`
			Model   string        `yaml:"model" default:"mistral"`
			Timeout time.Duration `yaml:"timeout" default:"2m"`
		} `yaml:"ollama"`
		Anthropic struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model" default:"claude-sonnet-4-20250514"`
		} `yaml:"anthropic"`
	} `yaml:"writer"`
	Prompts struct {
		Dir string        `yaml:"dir" default:"prompts"`
		TTL time.Duration `yaml:"ttl" default:"5m"`
	} `yaml:"prompts"`
	Symbols struct {
		Path string `yaml:"path" default:"static/stocks.json"`
	} `yaml:"symbols"`
	Generations struct {
		Backend string `yaml:"backend" default:"clickhouse" validate:"oneof=kafka clickhouse"`
		Topic   string `yaml:"topic" default:"stock.generations"`
	} `yaml:"generations"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"stockscribe-generations"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"5"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers" default:"2" validate:"gte=1"`
		QueueSize  int           `yaml:"queue_size" default:"64"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"10s"`
	} `yaml:"queue"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Validation runs after the overrides so secrets may live
// in the environment instead of the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Writer.Anthropic.APIKey = v
	}
	if v := os.Getenv("WRITER_BACKEND"); v != "" {
		c.Writer.Backend = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		c.Writer.Ollama.BaseURL = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Generations.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Generations.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func loadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Validate checks the cross-field rules the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Generations.Backend != "kafka" && c.Generations.Backend != "clickhouse" {
		return fmt.Errorf("generations.backend must be 'kafka' or 'clickhouse', got '%s'", c.Generations.Backend)
	}
	if c.Writer.Backend != "ollama" && c.Writer.Backend != "anthropic" {
		return fmt.Errorf("writer.backend must be 'ollama' or 'anthropic', got '%s'", c.Writer.Backend)
	}
	if c.Generations.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when generations.backend is 'kafka'")
	}
	if c.Writer.Backend == "anthropic" && c.Writer.Anthropic.APIKey == "" {
		return fmt.Errorf("writer.anthropic.api_key is required when writer.backend is 'anthropic'")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue requires redis: set redis.enabled")
	}
	return nil
}
