package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/corray333/backend-labs/storefront/pkg/logger"
)

const envPrefix = "STOREFRONT"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	ChannelWebhook = "webhook"
	ChannelAMQP    = "amqp"
	ChannelKafka   = "kafka"
)

type Config struct {
	Env          string             `mapstructure:"env"          validate:"oneof=dev prod"`
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Checkout     CheckoutConfig     `mapstructure:"checkout"`
	Notification NotificationConfig `mapstructure:"notification"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Outbox       OutboxConfig       `mapstructure:"outbox"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type GRPCConfig struct {
	Port      string          `mapstructure:"port"      validate:"required"`
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

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=postgres memory"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the libpq connection string understood by pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}

type CheckoutConfig struct {
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout" validate:"gt=0"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"      validate:"gt=0"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval" validate:"gt=0"`
}

type NotificationConfig struct {
	Channel string        `mapstructure:"channel" validate:"oneof=webhook amqp kafka"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RabbitMQConfig struct {
	URL               string `mapstructure:"url"`
	NotificationQueue string `mapstructure:"notification_queue"`
	OrderEventsQueue  string `mapstructure:"order_events_queue"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OutboxConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

type AdminConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Validate checks the cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var errs []error
	if c.Storage.Driver == StoragePostgres && c.Postgres.Host == "" {
		errs = append(errs, errors.New("postgres.host is required for the postgres storage driver"))
	}
	switch c.Notification.Channel {
	case ChannelWebhook:
		if c.Notification.Webhook.URL == "" {
			errs = append(errs, errors.New("notification.webhook.url is required for the webhook channel"))
		}
	case ChannelAMQP:
		if c.RabbitMQ.URL == "" || c.RabbitMQ.NotificationQueue == "" {
			errs = append(errs, errors.New("rabbitmq.url and rabbitmq.notification_queue are required for the amqp channel"))
		}
	case ChannelKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			errs = append(errs, errors.New("kafka.brokers and kafka.topic are required for the kafka channel"))
		}
	}
	if c.Outbox.Enabled {
		if c.Storage.Driver != StoragePostgres {
			errs = append(errs, errors.New("outbox requires the postgres storage driver"))
		}
		if c.RabbitMQ.URL == "" || c.RabbitMQ.OrderEventsQueue == "" {
			errs = append(errs, errors.New("rabbitmq.url and rabbitmq.order_events_queue are required for the outbox"))
		}
	}
	if c.Admin.User == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.user and admin.password must be set"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.http.port", "8080")
	v.SetDefault("server.http.read_timeout", 10*time.Second)
	v.SetDefault("server.http.write_timeout", 30*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.http.cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
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

	v.SetDefault("storage.driver", StorageMemory)

	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "storefront")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("checkout.dispatch_timeout", 15*time.Second)
	v.SetDefault("checkout.session_ttl", time.Hour)
	v.SetDefault("checkout.janitor_interval", time.Minute)

	v.SetDefault("notification.channel", ChannelWebhook)
	v.SetDefault("notification.webhook.url", "")
	v.SetDefault("notification.webhook.subject", "New order")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.notification_queue", "storefront.notifications")
	v.SetDefault("rabbitmq.order_events_queue", "storefront.orders")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "storefront.orders")

	v.SetDefault("outbox.enabled", false)
	v.SetDefault("outbox.poll_interval", 10*time.Second)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_attempts", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "http://jaeger:14268/api/traces")
	v.SetDefault("tracing.service", "storefront")

	v.SetDefault("admin.user", "")
	v.SetDefault("admin.password", "")
}

// Load reads config.yaml from /etc/storefront or the working directory and
// applies STOREFRONT_* environment overrides. A missing config file is not
// an error; defaults and the environment are enough to run.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/storefront")
	v.AddConfigPath(".")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error while reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error while decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustInit loads .env if present, reads the config and installs the default logger.
func MustInit() *Config {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}

	SetupLogger(cfg.Env)

	return cfg
}

func SetupLogger(env string) {
	handler := logger.NewHandler(os.Stdout, env, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
}
