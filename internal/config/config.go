package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/corray333/backend-labs/orders/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Clients  ClientsConfig  `mapstructure:"clients"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Otel     OtelConfig     `mapstructure:"otel"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Cors         CorsConfig    `mapstructure:"cors"`
}

type CorsConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type GRPCConfig struct {
	Port      string          `mapstructure:"port"`
	Keepalive KeepaliveConfig `mapstructure:"keepalive"`
}

type KeepaliveConfig struct {
	MaxConnectionIdle     time.Duration `mapstructure:"max_connection_idle"`
	MaxConnectionAge      time.Duration `mapstructure:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `mapstructure:"max_connection_age_grace"`
	Time                  time.Duration `mapstructure:"time"`
	Timeout               time.Duration `mapstructure:"timeout"`
	MinTime               time.Duration `mapstructure:"min_time"`
	PermitWithoutStream   bool          `mapstructure:"permit_without_stream"`
}

// ClientsConfig configures the outbound customer and inventory clients.
// Timeout bounds every single attempt, RetryCount applies to idempotent reads only.
type ClientsConfig struct {
	CustomerBaseURL       string        `mapstructure:"customer_base_url"`
	InventoryBaseURL      string        `mapstructure:"inventory_base_url"`
	Timeout               time.Duration `mapstructure:"timeout"`
	RetryCount            uint64        `mapstructure:"retry_count"`
	StockCheckConcurrency int           `mapstructure:"stock_check_concurrency"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DB             string `mapstructure:"db"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN returns the libpq style connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

const (
	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

type EventsConfig struct {
	Broker string       `mapstructure:"broker"`
	Queue  string       `mapstructure:"queue"`
	Outbox OutboxConfig `mapstructure:"outbox"`
}

type OutboxConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// URL returns the AMQP connection url.
func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}

	return u.String()
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

const (
	ExporterJaeger = "jaeger"
	ExporterOTLP   = "otlp"
)

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel parses the configured level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.port", "8080")
	v.SetDefault("server.http.read_timeout", 5*time.Second)
	v.SetDefault("server.http.write_timeout", 10*time.Second)
	v.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.http.cors.allowed_headers", []string{"*"})
	v.SetDefault("server.http.cors.exposed_headers", []string{})
	v.SetDefault("server.http.cors.allow_credentials", false)
	v.SetDefault("server.http.cors.max_age", 300)

	v.SetDefault("server.grpc.port", "9090")
	v.SetDefault("server.grpc.keepalive.max_connection_idle", 15*time.Minute)
	v.SetDefault("server.grpc.keepalive.max_connection_age", 30*time.Minute)
	v.SetDefault("server.grpc.keepalive.max_connection_age_grace", 5*time.Second)
	v.SetDefault("server.grpc.keepalive.time", 5*time.Second)
	v.SetDefault("server.grpc.keepalive.timeout", time.Second)
	v.SetDefault("server.grpc.keepalive.min_time", 5*time.Second)
	v.SetDefault("server.grpc.keepalive.permit_without_stream", true)

	v.SetDefault("clients.customer_base_url", "http://localhost:8081")
	v.SetDefault("clients.inventory_base_url", "http://localhost:8082")
	v.SetDefault("clients.timeout", 3*time.Second)
	v.SetDefault("clients.retry_count", 0)
	v.SetDefault("clients.stock_check_concurrency", 8)

	v.SetDefault("storage.driver", StorageMemory)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "orders")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 8)
	v.SetDefault("postgres.migrations_path", "./migrations")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("events.broker", BrokerNone)
	v.SetDefault("events.queue", "orders.created")
	v.SetDefault("events.outbox.poll_interval", 10*time.Second)
	v.SetDefault("events.outbox.retry_interval", 30*time.Second)
	v.SetDefault("events.outbox.batch_size", 100)
	v.SetDefault("events.outbox.max_retries", 10)

	v.SetDefault("rabbitmq.host", "rabbitmq")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.exporter", ExporterJaeger)
	v.SetDefault("otel.endpoint", "http://jaeger:14268/api/traces")
	v.SetDefault("otel.service_name", "order-svc")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("log.level", "info")
}

// Load reads config.yaml from the given directories (plus /etc/order-svc and
// the working directory), applies environment overrides such as
// CLIENTS_CUSTOMER_BASE_URL and validates the result. A missing config file
// is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("/etc/order-svc")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"clients.customer_base_url":  c.Clients.CustomerBaseURL,
		"clients.inventory_base_url": c.Clients.InventoryBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: absolute url required", name, raw)
		}
	}

	if c.Clients.Timeout <= 0 {
		return fmt.Errorf("invalid clients.timeout %s: must be positive", c.Clients.Timeout)
	}

	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Events.Broker {
	case BrokerNone, BrokerRabbitMQ, BrokerKafka:
	default:
		return fmt.Errorf("unknown events.broker %q", c.Events.Broker)
	}

	switch c.Otel.Exporter {
	case ExporterJaeger, ExporterOTLP:
	default:
		return fmt.Errorf("unknown otel.exporter %q", c.Otel.Exporter)
	}

	return nil
}

// MustInit loads .env (when present) and the configuration, then installs the
// process logger. It panics on invalid configuration.
func MustInit() *Config {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	cfg, err := Load()
	if err != nil {
		panic("error while reading config: " + err.Error())
	}

	SetupLogger(cfg.Log)

	return cfg
}

func SetupLogger(cfg LogConfig) {
	handler := logger.NewHandler(&slog.HandlerOptions{Level: cfg.SlogLevel()})
	log := slog.New(handler)
	slog.SetDefault(log)
}
