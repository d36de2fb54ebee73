package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "MOTOSHOP_"

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db"`
		CacheTTL time.Duration `koanf:"cache_ttl"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	// Empty URL disables event publishing and the status projection.
	Rabbit struct {
		URL      string `koanf:"url"`
		Prefetch int    `koanf:"prefetch"`
	} `koanf:"rabbitmq"`

	// No brokers disables the relayed-callback consumer.
	Kafka struct {
		Brokers        []string `koanf:"brokers"`
		GroupID        string   `koanf:"group_id"`
		TopicCallbacks string   `koanf:"topic_callbacks"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret  string        `koanf:"jwt_secret"`
		Issuer     string        `koanf:"issuer"`
		Audience   string        `koanf:"audience"`
		TTL        time.Duration `koanf:"ttl"`
		BcryptCost int           `koanf:"bcrypt_cost"`
	} `koanf:"security"`

	Payment struct {
		StoreID       string        `koanf:"store_id"`
		StorePassword string        `koanf:"store_password"`
		Live          bool          `koanf:"live"`
		APIBase       string        `koanf:"api_base"`
		PublicURL     string        `koanf:"public_url"`
		ClientURL     string        `koanf:"client_url"`
		Currency      string        `koanf:"currency"`
		Timeout       time.Duration `koanf:"timeout"`
		AttemptTTL    time.Duration `koanf:"attempt_ttl"`
	} `koanf:"payment"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix MOTOSHOP_, nested with __)
	// e.g. MOTOSHOP_MYSQL__DSN, MOTOSHOP_PAYMENT__STORE_PASSWORD
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "motoshop"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 24 * time.Hour
	}
	if c.Idempotency.TTL <= 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
	if c.Security.TTL <= 0 {
		c.Security.TTL = 7 * 24 * time.Hour
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "BDT"
	}
	if c.Payment.Timeout <= 0 {
		c.Payment.Timeout = 15 * time.Second
	}
	if c.Payment.AttemptTTL <= 0 {
		c.Payment.AttemptTTL = 30 * time.Minute
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "motoshop-payments"
	}
	if c.Kafka.TopicCallbacks == "" {
		c.Kafka.TopicCallbacks = "payments.callbacks"
	}
}

func (c Config) Validate() error {
	switch {
	case c.App.HTTPAddr == "":
		return fmt.Errorf("app.http_addr required")
	case c.MySQL.DSN == "":
		return fmt.Errorf("mysql.dsn required")
	case c.Redis.Addr == "":
		return fmt.Errorf("redis.addr required")
	case c.Security.JWTSecret == "":
		return fmt.Errorf("security.jwt_secret required")
	case c.Payment.StoreID == "" || c.Payment.StorePassword == "":
		return fmt.Errorf("payment.store_id and payment.store_password required")
	case c.Payment.PublicURL == "" || c.Payment.ClientURL == "":
		return fmt.Errorf("payment.public_url and payment.client_url required")
	}
	return nil
}
