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

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8000 || c.Server.ShutdownTimeout != 15*time.Second {
		t.Fatalf("server defaults not applied: %+v", c.Server)
	}
	if c.Detection.DefaultMethod != "zscore" || c.Detection.DefaultWindow != 20 || c.Detection.CacheCapacity != 1024 {
		t.Fatalf("detection defaults not applied: %+v", c.Detection)
	}
	if len(c.Server.CORSOrigins) != 1 || c.Server.CORSOrigins[0] != "*" {
		t.Fatalf("cors default = %v", c.Server.CORSOrigins)
	}
	if c.Kafka.Enabled || c.Cache.Redis.Enabled {
		t.Fatalf("optional backends must be off by default")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: prod
server:
  port: 9100
detection:
  default_method: rate_of_change
  default_window: 30
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9100 || c.Detection.DefaultMethod != "rate_of_change" || c.Detection.DefaultWindow != 30 {
		t.Fatalf("yaml values not applied: %+v %+v", c.Server, c.Detection)
	}
	if c.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("untouched default lost: %v", c.Server.ReadTimeout)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty environment", "environment: \"\"\n", "environment"},
		{"bad port", "environment: x\nserver:\n  port: 70000\n", "server.port"},
		{"bad method", "environment: x\ndetection:\n  default_method: median\n", "default_method"},
		{"bad window", "environment: x\ndetection:\n  default_window: 1\n", "default_window"},
		{"bad capacity", "environment: x\ndetection:\n  cache_capacity: 0\n", "cache_capacity"},
		{"kafka without brokers", "environment: x\nkafka:\n  enabled: true\n", "kafka.brokers"},
	}
	for _, c := range cases {
		_, err := Load(writeConfig(t, c.body))
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: err = %v, want mention of %q", c.name, err, c.want)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "true")

	c, err := LoadWithEnv(writeConfig(t, "environment: dev\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "staging" || c.Server.Port != 8081 || c.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %s %d %s", c.Environment, c.Server.Port, c.Log.Level)
	}
	if !c.Cache.Redis.Enabled || c.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("redis override = %+v", c.Cache.Redis)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka override = %v %v", c.Kafka.Enabled, c.Kafka.Brokers)
	}
}

func TestLoadWithEnvRejectsBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	if _, err := LoadWithEnv(writeConfig(t, "environment: dev\n")); err == nil {
		t.Fatalf("expected HTTP_PORT parse error")
	}
}
