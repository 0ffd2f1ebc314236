package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host      string `yaml:"host" validate:"required"`
	Port      string `yaml:"port" validate:"required,numeric"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	StaticDir string `yaml:"static_dir"`

	VehiclesFile   string `yaml:"vehicles_file" validate:"required"`
	HistoryBackend string `yaml:"history_backend" validate:"oneof=file mongo postgres memory"`
	HistoryFile    string `yaml:"history_file" validate:"required_if=HistoryBackend file"`
	MongoURI       string `yaml:"mongodb_uri" validate:"required_if=HistoryBackend mongo"`
	MongoDatabase  string `yaml:"mongodb_database"`
	DatabaseURL    string `yaml:"database_url" validate:"required_if=HistoryBackend postgres"`

	RedisURL      string        `yaml:"redis_url"`
	RouteCacheTTL time.Duration `yaml:"route_cache_ttl" validate:"gte=0"`

	OSRMBaseURL     string        `yaml:"osrm_base_url" validate:"required,url"`
	OSRMTimeout     time.Duration `yaml:"osrm_timeout" validate:"gt=0"`
	SampleInterval  time.Duration `yaml:"sample_interval" validate:"gt=0"`
	RideProbability float64       `yaml:"ride_probability" validate:"gte=0,lte=1"`

	EventsBackend     string   `yaml:"events_backend" validate:"oneof=none nats kafka"`
	NATSURL           string   `yaml:"nats_url" validate:"required_if=EventsBackend nats"`
	NATSSubjectPrefix string   `yaml:"nats_subject_prefix"`
	KafkaBrokers      []string `yaml:"kafka_brokers" validate:"required_if=EventsBackend kafka"`
	KafkaTopic        string   `yaml:"kafka_topic" validate:"required_if=EventsBackend kafka"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
}

func defaults() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              "8000",
		LogLevel:          "info",
		StaticDir:         "static",
		VehiclesFile:      "static/data/vehicles.json",
		HistoryBackend:    "file",
		HistoryFile:       "static/data/history.json",
		MongoDatabase:     "tracking",
		RouteCacheTTL:     time.Hour,
		OSRMBaseURL:       "http://router.project-osrm.org",
		OSRMTimeout:       8 * time.Second,
		SampleInterval:    30 * time.Second,
		RideProbability:   0.9,
		EventsBackend:     "none",
		NATSSubjectPrefix: "tracker",
		KafkaTopic:        "ride-events",
		MetricsEnabled:    true,
	}
}

// LoadConfig reads .env, then the optional CONFIG_FILE, then the process
// environment, each layer overriding the previous one.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)

	c.VehiclesFile = getEnv("VEHICLES_FILE", c.VehiclesFile)
	c.HistoryBackend = strings.ToLower(getEnv("HISTORY_BACKEND", c.HistoryBackend))
	c.HistoryFile = getEnv("HISTORY_FILE", c.HistoryFile)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGODB_DATABASE", c.MongoDatabase)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.OSRMBaseURL = strings.TrimRight(getEnv("OSRM_BASE_URL", c.OSRMBaseURL), "/")

	c.EventsBackend = strings.ToLower(getEnv("EVENTS_BACKEND", c.EventsBackend))
	c.NATSURL = getEnv("NATS_URL", c.NATSURL)
	c.NATSSubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATSSubjectPrefix)
	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)

	var err error
	if c.RouteCacheTTL, err = getDuration("ROUTE_CACHE_TTL", c.RouteCacheTTL); err != nil {
		return err
	}
	if c.OSRMTimeout, err = getDuration("OSRM_TIMEOUT", c.OSRMTimeout); err != nil {
		return err
	}
	if c.SampleInterval, err = getDuration("SAMPLE_INTERVAL", c.SampleInterval); err != nil {
		return err
	}
	if v := getEnv("RIDE_PROBABILITY", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RIDE_PROBABILITY %q: %w", v, err)
		}
		c.RideProbability = f
	}
	if v := getEnv("METRICS_ENABLED", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.MetricsEnabled = b
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
