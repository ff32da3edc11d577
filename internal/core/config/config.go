package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Topics the worker subscribes to unless overridden.
var DefaultTopics = []string{
	"task.completed",
	"resource.created",
	"resource.updated",
	"resource.deleted",
}

// Config represents the top-level worker configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Consumer ConsumerConfig `koanf:"consumer"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Log      LogConfig      `koanf:"log"`
}

type DatabaseConfig struct {
	Host                 string `koanf:"host"`
	Port                 int    `koanf:"port"`
	User                 string `koanf:"user"`
	Password             string `koanf:"password"`
	Name                 string `koanf:"name"`
	SSLMode              string `koanf:"sslmode"`
	ConnectMaxAttempts   int    `koanf:"connect_max_attempts"`
	ConnectRetryInterval string `koanf:"connect_retry_interval"` // parsed and validated on startup
	AutoMigrate          bool   `koanf:"auto_migrate"`
}

type KafkaConfig struct {
	Brokers         string   `koanf:"brokers"` // comma separated
	GroupID         string   `koanf:"group_id"`
	Topics          []string `koanf:"topics"`
	CommitInterval  string   `koanf:"commit_interval"`
	StartOffset     string   `koanf:"start_offset"` // latest | earliest
	MinBytes        int      `koanf:"min_bytes"`
	MaxBytes        int      `koanf:"max_bytes"`
	DeadLetterTopic string   `koanf:"dead_letter_topic"`
}

type ConsumerConfig struct {
	PollTimeout    string `koanf:"poll_timeout"`
	MaxPollRecords int    `koanf:"max_poll_records"`
	Workers        int    `koanf:"workers"`
}

type MetricsConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	Path string `koanf:"path"`
}

type TracingConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Endpoint       string `koanf:"endpoint"`
	Insecure       bool   `koanf:"insecure"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // json | text
}

// envAliases maps the flat environment names used by existing deployments onto config keys.
var envAliases = map[string]string{
	"WORKER_DB_HOST":              "database.host",
	"WORKER_DB_PORT":              "database.port",
	"WORKER_DB_USER":              "database.user",
	"WORKER_DB_PASSWORD":          "database.password",
	"WORKER_DB_NAME":              "database.name",
	"WORKER_DB_SSLMODE":           "database.sslmode",
	"KAFKA_BROKERS":               "kafka.brokers",
	"KAFKA_CONSUMER_GROUP_WORKER": "kafka.group_id",
	"METRICS_PORT":                "metrics.port",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "tracing.endpoint",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
}

// DSN renders the lib/pq connection URL.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c DatabaseConfig) RetryInterval() time.Duration {
	return durationOr(c.ConnectRetryInterval, 2*time.Second)
}

// BrokerList splits the comma separated broker list, dropping blanks.
func (c KafkaConfig) BrokerList() []string {
	parts := strings.Split(c.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c KafkaConfig) CommitIntervalDuration() time.Duration {
	return durationOr(c.CommitInterval, time.Second)
}

func (c ConsumerConfig) PollTimeoutDuration() time.Duration {
	return durationOr(c.PollTimeout, time.Second)
}

func (c MetricsConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogValue keeps credentials out of startup logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("db_host", c.Database.Host),
		slog.Int("db_port", c.Database.Port),
		slog.String("db_name", c.Database.Name),
		slog.String("db_user", c.Database.User),
		slog.String("kafka_brokers", c.Kafka.Brokers),
		slog.String("kafka_group_id", c.Kafka.GroupID),
		slog.Any("kafka_topics", c.Kafka.Topics),
		slog.Int("workers", c.Consumer.Workers),
		slog.String("metrics_addr", c.Metrics.Addr()),
		slog.Bool("tracing_enabled", c.Tracing.Enabled),
		slog.String("tracing_endpoint", c.Tracing.Endpoint),
	)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Host) == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d (must be 1-65535)", c.Database.Port)
	}
	if strings.TrimSpace(c.Database.Name) == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.ConnectMaxAttempts <= 0 {
		return fmt.Errorf("database.connect_max_attempts must be > 0")
	}
	if err := positiveDuration("database.connect_retry_interval", c.Database.ConnectRetryInterval); err != nil {
		return err
	}

	if len(c.Kafka.BrokerList()) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if strings.TrimSpace(c.Kafka.GroupID) == "" {
		return fmt.Errorf("kafka.group_id is required")
	}
	if len(c.Kafka.Topics) == 0 {
		return fmt.Errorf("kafka.topics must not be empty")
	}
	if err := positiveDuration("kafka.commit_interval", c.Kafka.CommitInterval); err != nil {
		return err
	}
	if c.Kafka.StartOffset != "latest" && c.Kafka.StartOffset != "earliest" {
		return fmt.Errorf("invalid kafka.start_offset %q (must be latest or earliest)", c.Kafka.StartOffset)
	}
	if c.Kafka.MinBytes <= 0 || c.Kafka.MaxBytes < c.Kafka.MinBytes {
		return fmt.Errorf("kafka.min_bytes must be > 0 and <= kafka.max_bytes")
	}

	if err := positiveDuration("consumer.poll_timeout", c.Consumer.PollTimeout); err != nil {
		return err
	}
	if c.Consumer.MaxPollRecords <= 0 {
		return fmt.Errorf("consumer.max_poll_records must be > 0")
	}
	if c.Consumer.Workers <= 0 {
		return fmt.Errorf("consumer.workers must be > 0")
	}

	if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics.port %d (must be 1-65535)", c.Metrics.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") || c.Metrics.Path == "/health" {
		return fmt.Errorf("invalid metrics.path %q", c.Metrics.Path)
	}

	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.Endpoint) == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log.format %q (must be json or text)", c.Log.Format)
	}

	return nil
}

// Load builds the config from defaults, an optional YAML file, and the environment (in that order).
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"database.host":                   "localhost",
		"database.port":                   5432,
		"database.user":                   "postgres",
		"database.password":               "postgres",
		"database.name":                   "workerdb",
		"database.sslmode":                "disable",
		"database.connect_max_attempts":   30,
		"database.connect_retry_interval": "2s",
		"database.auto_migrate":           false,
		"kafka.brokers":                   "localhost:9092",
		"kafka.group_id":                  "python-worker-group",
		"kafka.topics":                    DefaultTopics,
		"kafka.commit_interval":           "1s",
		"kafka.start_offset":              "latest",
		"kafka.min_bytes":                 1,
		"kafka.max_bytes":                 10_000_000,
		"kafka.dead_letter_topic":         "",
		"consumer.poll_timeout":           "1s",
		"consumer.max_poll_records":       500,
		"consumer.workers":                1,
		"metrics.host":                    "0.0.0.0",
		"metrics.port":                    9092,
		"metrics.path":                    "/metrics",
		"tracing.enabled":                 true,
		"tracing.endpoint":                "localhost:4317",
		"tracing.insecure":                true,
		"tracing.service_name":            "event-worker",
		"tracing.service_version":         "1.0.0",
		"log.level":                       "info",
		"log.format":                      "json",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envAliases[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env aliases: %w", err)
	}

	if err := k.Load(env.Provider("WORKER__", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "WORKER__")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func positiveDuration(key, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be > 0", key)
	}
	return nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
