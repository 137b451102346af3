package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config хранит все параметры приложения
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Store    StoreConfig    `mapstructure:"store"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Kitchen  KitchenConfig  `mapstructure:"kitchen"`
	Barista  BaristaConfig  `mapstructure:"barista"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Store drivers. Every driver except postgres-records persists the whole
// collection as one keyed JSON record.
const (
	StoreMemory          = "memory"
	StoreFile            = "file"
	StorePostgres        = "postgres"
	StoreRedis           = "redis"
	StorePostgresRecords = "postgres-records"
)

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Key    string `mapstructure:"key"`
	Dir    string `mapstructure:"dir"`
	// QuotaBytes caps the memory medium; 0 means unlimited.
	QuotaBytes int `mapstructure:"quota_bytes"`
}

const (
	NotifierMemory   = "memory"
	NotifierRabbitMQ = "rabbitmq"
	NotifierRedis    = "redis"
)

type NotifierConfig struct {
	Driver   string `mapstructure:"driver"`
	Exchange string `mapstructure:"exchange"`
	Channel  string `mapstructure:"channel"`
}

type CheckoutConfig struct {
	DeliveryFee  float64       `mapstructure:"delivery_fee"`
	ConfirmDelay time.Duration `mapstructure:"confirm_delay"`
	// SessionTTL drops customer sessions idle for longer; 0 keeps them.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type KitchenConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type BaristaConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	Temperature   float64       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

type HTTPConfig struct {
	OrderPort   int `mapstructure:"order_port"`
	KitchenPort int `mapstructure:"kitchen_port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "")
	v.SetDefault("rabbitmq.password", "")
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("rabbitmq.use_tls", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.quota_bytes", 0)
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.key", "mr-beans-orders")
	v.SetDefault("store.dir", "data")
	v.SetDefault("notifier.driver", NotifierMemory)
	v.SetDefault("notifier.exchange", "store_changed")
	v.SetDefault("notifier.channel", "cafe:store-changed")
	v.SetDefault("checkout.delivery_fee", 5.00)
	v.SetDefault("checkout.confirm_delay", 1500*time.Millisecond)
	v.SetDefault("checkout.session_ttl", 30*time.Minute)
	v.SetDefault("kitchen.refresh_interval", time.Minute)
	v.SetDefault("barista.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("barista.api_key", "")
	v.SetDefault("barista.model", "gemini-2.5-flash")
	v.SetDefault("barista.temperature", 0.7)
	v.SetDefault("barista.timeout", 10*time.Second)
	v.SetDefault("barista.rate_per_second", 2.0)
	v.SetDefault("barista.burst", 4)
	v.SetDefault("http.order_port", 3000)
	v.SetDefault("http.kitchen_port", 3002)
	v.SetDefault("log.level", "info")
}

// LoadConfig reads path (YAML/JSON by extension) and CAFE_* environment variables
// on top of the defaults. An empty path looks for config.yaml in the working
// directory and tolerates its absence.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("CAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Couldnt read the configuration: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreFile, StoreRedis:
	case StorePostgres, StorePostgresRecords:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			return fmt.Errorf("database config incomplete for store driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Notifier.Driver {
	case NotifierMemory, NotifierRedis:
	case NotifierRabbitMQ:
		if c.RabbitMQ.Host == "" || c.RabbitMQ.User == "" {
			return fmt.Errorf("rabbitmq config incomplete")
		}
	default:
		return fmt.Errorf("unknown notifier driver %q", c.Notifier.Driver)
	}
	if c.Store.Key == "" {
		return errors.New("store.key must not be empty")
	}
	if c.Checkout.DeliveryFee < 0 {
		return errors.New("checkout.delivery_fee must not be negative")
	}
	if c.Checkout.ConfirmDelay < 0 {
		return errors.New("checkout.confirm_delay must not be negative")
	}
	if c.Checkout.SessionTTL < 0 {
		return errors.New("checkout.session_ttl must not be negative")
	}
	if c.Kitchen.RefreshInterval <= 0 {
		return errors.New("kitchen.refresh_interval must be positive")
	}
	return nil
}

// ValidateShared checks that store and notifier reach other processes. The
// memory drivers live inside one process, so a service running on its own
// would never see the others' orders or signals.
func (c *Config) ValidateShared() error {
	if c.Store.Driver == StoreMemory {
		return fmt.Errorf("store driver %q is private to one process; use serve or a shared store", c.Store.Driver)
	}
	if c.Notifier.Driver == NotifierMemory {
		return fmt.Errorf("notifier driver %q cannot signal other processes; use serve or %q/%q",
			c.Notifier.Driver, NotifierRedis, NotifierRabbitMQ)
	}
	return nil
}
