package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
finnhub:
  api_key: test-key
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Environment != "development" {
		t.Errorf("environment = %q, want development", c.Environment)
	}
	if c.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", c.Server.Port)
	}
	if c.Server.WriteTimeout != 3*time.Minute {
		t.Errorf("server.write_timeout = %v, want 3m", c.Server.WriteTimeout)
	}
	if c.Logger.Level != "info" || c.Logger.Format != "json" {
		t.Errorf("logger defaults = %q/%q, want info/json", c.Logger.Level, c.Logger.Format)
	}
	if c.News.TopK != 7 {
		t.Errorf("news.top_k = %d, want 7", c.News.TopK)
	}
	if c.News.DedupeThreshold != 0.85 {
		t.Errorf("news.dedupe_threshold = %v, want 0.85", c.News.DedupeThreshold)
	}
	if c.Generations.Backend != "clickhouse" {
		t.Errorf("generations.backend = %q, want clickhouse", c.Generations.Backend)
	}
	if c.Generations.Topic != "stock.generations" {
		t.Errorf("generations.topic = %q, want stock.generations", c.Generations.Topic)
	}
	if c.Writer.Backend != "ollama" {
		t.Errorf("writer.backend = %q, want ollama", c.Writer.Backend)
	}
	if c.Writer.Ollama.Model != "mistral" {
		t.Errorf("writer.ollama.model = %q, want mistral", c.Writer.Ollama.Model)
	}
	if c.Cache.QuoteTTL != time.Minute {
		t.Errorf("cache.quote_ttl = %v, want 1m", c.Cache.QuoteTTL)
	}
	if c.Prompts.Dir != "prompts" {
		t.Errorf("prompts.dir = %q, want prompts", c.Prompts.Dir)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: production
server:
  port: 9090
finnhub:
  api_key: test-key
news:
  top_k: 3
writer:
  backend: anthropic
  anthropic:
    api_key: sk-test
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Environment != "production" {
		t.Errorf("environment = %q, want production", c.Environment)
	}
	if c.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", c.Server.Port)
	}
	if c.News.TopK != 3 {
		t.Errorf("news.top_k = %d, want 3", c.News.TopK)
	}
	if c.Writer.Backend != "anthropic" {
		t.Errorf("writer.backend = %q, want anthropic", c.Writer.Backend)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	if err == nil || !strings.Contains(err.Error(), "finnhub.api_key") {
		t.Fatalf("Load err = %v, want finnhub.api_key error", err)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
generations:
  backend: mysql
`))
	if err == nil {
		t.Fatal("Load accepted generations.backend=mysql")
	}
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
generations:
  backend: kafka
`))
	if err == nil || !strings.Contains(err.Error(), "kafka.brokers") {
		t.Fatalf("Load err = %v, want kafka.brokers error", err)
	}
}

func TestLoadRejectsAnthropicWithoutKey(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
writer:
  backend: anthropic
`))
	if err == nil || !strings.Contains(err.Error(), "writer.anthropic.api_key") {
		t.Fatalf("Load err = %v, want writer.anthropic.api_key error", err)
	}
}

func TestLoadRejectsQueueWithoutRedis(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
queue:
  enabled: true
`))
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("Load err = %v, want redis error", err)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_TOPIC", "generations.test")
	t.Setenv("REDIS_ADDR", "redis-test:6379")

	// The file carries no secrets at all; the environment supplies them.
	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}

	if c.Finnhub.APIKey != "env-key" {
		t.Errorf("finnhub.api_key = %q, want env-key", c.Finnhub.APIKey)
	}
	if c.Generations.Backend != "kafka" {
		t.Errorf("generations.backend = %q, want kafka", c.Generations.Backend)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("kafka.brokers = %v, want [k1:9092 k2:9092]", c.Kafka.Brokers)
	}
	if c.Generations.Topic != "generations.test" {
		t.Errorf("generations.topic = %q, want generations.test", c.Generations.Topic)
	}
	if !c.Redis.Enabled || c.Redis.Addr != "redis-test:6379" {
		t.Errorf("redis = %+v, want enabled at redis-test:6379", c.Redis)
	}
}

func TestLoadWithEnvRejectsBadBackend(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("BACKEND", "postgres")

	_, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err == nil || !strings.Contains(err.Error(), "generations.backend") {
		t.Fatalf("LoadWithEnv err = %v, want generations.backend error", err)
	}
}
