package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"CONFIG_FILE", "HOST", "PORT", "LOG_LEVEL", "STATIC_DIR", "VEHICLES_FILE",
	"HISTORY_BACKEND", "HISTORY_FILE", "MONGODB_URI", "MONGODB_DATABASE",
	"DATABASE_URL", "REDIS_URL", "ROUTE_CACHE_TTL", "OSRM_BASE_URL",
	"OSRM_TIMEOUT", "SAMPLE_INTERVAL", "RIDE_PROBABILITY", "EVENTS_BACKEND",
	"NATS_URL", "NATS_SUBJECT_PREFIX", "KAFKA_BROKERS", "KAFKA_TOPIC",
	"METRICS_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.HistoryBackend != "file" || cfg.EventsBackend != "none" {
		t.Errorf("backends = %q/%q", cfg.HistoryBackend, cfg.EventsBackend)
	}
	if cfg.OSRMTimeout != 8*time.Second || cfg.SampleInterval != 30*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.OSRMTimeout, cfg.SampleInterval)
	}
	if cfg.RideProbability != 0.9 || !cfg.MetricsEnabled {
		t.Errorf("probability = %v, metrics = %v", cfg.RideProbability, cfg.MetricsEnabled)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OSRM_BASE_URL", "http://osrm.local:5000/")
	t.Setenv("OSRM_TIMEOUT", "2s")
	t.Setenv("RIDE_PROBABILITY", "0.5")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Errorf("port/level = %q/%q", cfg.Port, cfg.LogLevel)
	}
	if cfg.OSRMBaseURL != "http://osrm.local:5000" {
		t.Errorf("osrm url = %q", cfg.OSRMBaseURL)
	}
	if cfg.OSRMTimeout != 2*time.Second || cfg.RideProbability != 0.5 {
		t.Errorf("timeout/probability = %v/%v", cfg.OSRMTimeout, cfg.RideProbability)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics should be disabled")
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := strings.Join([]string{
		"port: \"7000\"",
		"history_backend: memory",
		"sample_interval: 10s",
		"events_backend: nats",
		"nats_url: nats://127.0.0.1:4222",
	}, "\n")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "7100" {
		t.Errorf("env should override file, port = %q", cfg.Port)
	}
	if cfg.HistoryBackend != "memory" || cfg.SampleInterval != 10*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.NATSURL != "nats://127.0.0.1:4222" {
		t.Errorf("nats url = %q", cfg.NATSURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"OSRM_TIMEOUT": "soon"}},
		{"zero interval", map[string]string{"SAMPLE_INTERVAL": "0s"}},
		{"probability out of range", map[string]string{"RIDE_PROBABILITY": "1.5"}},
		{"probability not a number", map[string]string{"RIDE_PROBABILITY": "most"}},
		{"unknown backend", map[string]string{"HISTORY_BACKEND": "sqlite"}},
		{"mongo without uri", map[string]string{"HISTORY_BACKEND": "mongo"}},
		{"postgres without dsn", map[string]string{"HISTORY_BACKEND": "postgres"}},
		{"nats without url", map[string]string{"EVENTS_BACKEND": "nats"}},
		{"bad metrics flag", map[string]string{"METRICS_ENABLED": "sometimes"}},
		{"missing config file", map[string]string{"CONFIG_FILE": "/nonexistent/config.yml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
