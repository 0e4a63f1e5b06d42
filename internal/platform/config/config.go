// Package config loads the process configuration.
//
// Values are resolved in order: built-in defaults, an optional YAML file named by
// CONFIG_FILE, then environment variables (a local .env file is loaded first when present).
// The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	LogLevel    string            `yaml:"log_level" validate:"oneof=debug info warn error"`
	Server      ServerConfig      `yaml:"server"`
	Spanner     SpannerConfig     `yaml:"spanner"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	CRM         CRMConfig         `yaml:"crm"`
	Ecommerce   EcommerceConfig   `yaml:"ecommerce"`
	BotPlatform BotPlatformConfig `yaml:"bot_platform"`
	Saga        SagaConfig        `yaml:"saga"`
}

type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"min=1"`
}

type SpannerConfig struct {
	ProjectID   string `yaml:"project_id" validate:"required"`
	InstanceID  string `yaml:"instance_id" validate:"required"`
	DatabaseID  string `yaml:"database_id" validate:"required"`
	MinSessions uint64 `yaml:"min_sessions"`
	MaxSessions uint64 `yaml:"max_sessions" validate:"omitempty,gtefield=MinSessions"`

	// ReadStaleness applies to listing reads only; the saga always reads strong.
	ReadStaleness time.Duration `yaml:"read_staleness"`
}

type PostgresConfig struct {
	// DSN of the ecommerce store's database, read for catalog products.
	DSN      string `yaml:"dsn" validate:"required"`
	MaxConns int32  `yaml:"max_conns" validate:"min=1"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether the saga event forwarder should run.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 && c.Topic != "" }

type CRMConfig struct {
	BaseURL            string         `yaml:"base_url" validate:"required,url"`
	AuthURL            string         `yaml:"auth_url" validate:"required,url"`
	ClientID           string         `yaml:"client_id"`
	ClientSecret       string         `yaml:"client_secret"`
	PipelineID         int64          `yaml:"pipeline_id" validate:"min=1"`
	StageID            int64          `yaml:"stage_id" validate:"min=1"`
	StageName          string         `yaml:"stage_name"`
	Currency           string         `yaml:"currency" validate:"len=3"`
	Timeout            time.Duration  `yaml:"timeout" validate:"min=1"`
	RateLimit          float64        `yaml:"rate_limit"`
	Burst              int            `yaml:"burst"`
	TitleMaxLength     int            `yaml:"title_max_length" validate:"min=4"`
	AttributeMaxLength int            `yaml:"attribute_max_length" validate:"min=16"`
	Attributes         AttributeSlots `yaml:"attributes"`
}

// AttributeSlots holds the numeric ids of the CRM custom attributes a deal is written to.
type AttributeSlots struct {
	DeliveryCity    int64 `yaml:"delivery_city" validate:"min=1"`
	DeliveryStation int64 `yaml:"delivery_station" validate:"min=1"`
	DeliveryCanton  int64 `yaml:"delivery_canton" validate:"min=1"`
	Products        int64 `yaml:"products" validate:"min=1"`
	Quantities      int64 `yaml:"quantities" validate:"min=1"`
	UnitPrices      int64 `yaml:"unit_prices" validate:"min=1"`
	CustomerName    int64 `yaml:"customer_name" validate:"min=1"`
	Language        int64 `yaml:"language" validate:"min=1"`
	PaymentMethod   int64 `yaml:"payment_method" validate:"min=1"`
	BotOrderID      int64 `yaml:"bot_order_id" validate:"min=1"`
}

type EcommerceConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout" validate:"min=1"`
	Source        string        `yaml:"source" validate:"required"`
	DefaultPickup Station       `yaml:"default_pickup"`
	Stations      []Station     `yaml:"stations" validate:"dive"`
}

// Station is a known delivery point.
type Station struct {
	Name         string   `yaml:"name" validate:"required"`
	Aliases      []string `yaml:"aliases"`
	City         string   `yaml:"city"`
	Canton       string   `yaml:"canton"`
	DeliveryType string   `yaml:"delivery_type" validate:"required"`
	Address      string   `yaml:"address"`
}

type BotPlatformConfig struct {
	BaseURL             string        `yaml:"base_url" validate:"required,url"`
	APIKey              string        `yaml:"api_key"`
	Timeout             time.Duration `yaml:"timeout" validate:"min=1"`
	ActiveOrderVariable string        `yaml:"active_order_variable" validate:"required"`
}

type SagaConfig struct {
	AttachConcurrency int           `yaml:"attach_concurrency" validate:"min=1"`
	SideEffectWorkers int           `yaml:"side_effect_workers" validate:"min=1"`
	SideEffectQueue   int           `yaml:"side_effect_queue" validate:"min=1"`
	SideEffectTimeout time.Duration `yaml:"side_effect_timeout" validate:"min=1"`
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Spanner: SpannerConfig{
			ProjectID:  "local-project",
			InstanceID: "local-instance",
			DatabaseID: "bridge-db",
		},
		Postgres: PostgresConfig{
			DSN:      "postgres://shop@localhost:5432/shop?sslmode=disable",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			CacheTTL: 5 * time.Minute,
		},
		CRM: CRMConfig{
			BaseURL:            "http://localhost:9001/api/v1",
			AuthURL:            "http://localhost:9001/oauth/token",
			PipelineID:         1,
			StageID:            1,
			StageName:          "new order",
			Currency:           "CHF",
			Timeout:            10 * time.Second,
			RateLimit:          5,
			Burst:              5,
			TitleMaxLength:     255,
			AttributeMaxLength: 255,
			Attributes: AttributeSlots{
				DeliveryCity:    101,
				DeliveryStation: 102,
				DeliveryCanton:  103,
				Products:        104,
				Quantities:      105,
				UnitPrices:      106,
				CustomerName:    107,
				Language:        108,
				PaymentMethod:   109,
				BotOrderID:      110,
			},
		},
		Ecommerce: EcommerceConfig{
			BaseURL: "http://localhost:9002/api",
			Timeout: 10 * time.Second,
			Source:  "bot",
			DefaultPickup: Station{
				Name:         "Store pickup",
				DeliveryType: "pickup",
			},
		},
		BotPlatform: BotPlatformConfig{
			BaseURL:             "http://localhost:9003",
			Timeout:             5 * time.Second,
			ActiveOrderVariable: "has_active_order",
		},
		Saga: SagaConfig{
			AttachConcurrency: 4,
			SideEffectWorkers: 4,
			SideEffectQueue:   256,
			SideEffectTimeout: 15 * time.Second,
		},
	}
}

// Load resolves and validates the configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	int64v := func(key string, dst *int64) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	integer("PORT", &c.Server.Port)

	str("SPANNER_PROJECT_ID", &c.Spanner.ProjectID)
	str("SPANNER_INSTANCE_ID", &c.Spanner.InstanceID)
	str("SPANNER_DATABASE_ID", &c.Spanner.DatabaseID)
	duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	duration("SPANNER_READ_STALENESS", &c.Spanner.ReadStaleness)

	str("DATABASE_URL", &c.Postgres.DSN)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	duration("CATALOG_CACHE_TTL", &c.Redis.CacheTTL)

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	str("KAFKA_TOPIC", &c.Kafka.Topic)

	str("CRM_BASE_URL", &c.CRM.BaseURL)
	str("CRM_AUTH_URL", &c.CRM.AuthURL)
	str("CRM_CLIENT_ID", &c.CRM.ClientID)
	str("CRM_CLIENT_SECRET", &c.CRM.ClientSecret)
	int64v("CRM_PIPELINE_ID", &c.CRM.PipelineID)
	int64v("CRM_STAGE_ID", &c.CRM.StageID)
	str("CRM_CURRENCY", &c.CRM.Currency)
	duration("CRM_TIMEOUT", &c.CRM.Timeout)

	str("ECOMMERCE_BASE_URL", &c.Ecommerce.BaseURL)
	str("ECOMMERCE_API_KEY", &c.Ecommerce.APIKey)
	duration("ECOMMERCE_TIMEOUT", &c.Ecommerce.Timeout)

	str("BOT_PLATFORM_BASE_URL", &c.BotPlatform.BaseURL)
	str("BOT_PLATFORM_API_KEY", &c.BotPlatform.APIKey)

	integer("SAGA_ATTACH_CONCURRENCY", &c.Saga.AttachConcurrency)
	duration("SAGA_SIDE_EFFECT_TIMEOUT", &c.Saga.SideEffectTimeout)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
