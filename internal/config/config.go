package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PHONEBILL"

type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Subscribers SubscribersConfig
	CallRecords CallRecordsConfig
	Pricing     PricingConfig
	Tracing     TracingConfig
}

type AppConfig struct {
	Name          string `validate:"required"`
	Env           string `validate:"required"`
	Version       string
	SnowflakeNode int64 `validate:"gte=0,lte=1023"`
}

type HTTPConfig struct {
	Addr         string        `validate:"required"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	// RateLimit is the sustained requests per second accepted by the API;
	// zero disables limiting.
	RateLimit float64 `validate:"gte=0"`
	RateBurst int     `validate:"gte=0"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type DatabaseConfig struct {
	Driver string `validate:"oneof=sqlite postgres mysql"`
	DSN    string `validate:"required"`
	// Metrics exports connection pool statistics on /metrics.
	Metrics bool
}

// RedisConfig is optional; an empty Addr disables the subscriber cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

type SubscribersConfig struct {
	// URL must contain the :phoneNumber placeholder.
	URL      string        `validate:"required,contains=:phoneNumber"`
	Timeout  time.Duration `validate:"gt=0"`
	CacheTTL time.Duration `validate:"gte=0"`
}

const (
	CallRecordsSourceCSV      = "csv"
	CallRecordsSourceDatabase = "database"
)

type CallRecordsConfig struct {
	Source  string `validate:"oneof=csv database"`
	CSVPath string `validate:"required_if=Source csv"`
	Watch   bool
}

type TracingConfig struct {
	Enabled       bool
	Endpoint      string `validate:"required_if=Enabled true"`
	Insecure      bool
	SamplingRatio float64 `validate:"gte=0,lte=1"`
}

// PricingConfig keeps the raw tariff values. They are parsed and validated by
// the rating module, which refuses to start without them.
type PricingConfig struct {
	NationalPricePerCall        string
	InternationalPricePerSecond string
	FreeFriendsCalls            string
}

// Load reads configuration with the following priority:
//  1. environment variables (PHONEBILL_ prefix, plus the legacy names of the
//     pricing and collaborator settings)
//  2. config.yaml in the working directory or /etc/phonebill
//  3. built-in defaults (never for pricing)
//
// A .env file in the working directory is loaded into the environment first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/phonebill")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds the configuration from an already populated viper
// instance.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)
	setDefaults(v)

	cfg := Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Env:           v.GetString("app.env"),
			Version:       v.GetString("app.version"),
			SnowflakeNode: v.GetInt64("app.snowflake_node"),
		},
		HTTP: HTTPConfig{
			Addr:         v.GetString("http.addr"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			RateLimit:    v.GetFloat64("http.rate_limit"),
			RateBurst:    v.GetInt("http.rate_burst"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Database: DatabaseConfig{
			Driver:  strings.ToLower(v.GetString("database.driver")),
			DSN:     v.GetString("database.dsn"),
			Metrics: v.GetBool("database.metrics"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Subscribers: SubscribersConfig{
			URL:      v.GetString("subscribers.url"),
			Timeout:  v.GetDuration("subscribers.timeout"),
			CacheTTL: v.GetDuration("subscribers.cache_ttl"),
		},
		CallRecords: CallRecordsConfig{
			Source:  strings.ToLower(v.GetString("call_records.source")),
			CSVPath: v.GetString("call_records.csv_path"),
			Watch:   v.GetBool("call_records.watch"),
		},
		Pricing: PricingConfig{
			NationalPricePerCall:        strings.TrimSpace(v.GetString("pricing.national_price_per_call")),
			InternationalPricePerSecond: strings.TrimSpace(v.GetString("pricing.international_price_per_second")),
			FreeFriendsCalls:            strings.TrimSpace(v.GetString("pricing.free_friends_calls")),
		},
		Tracing: TracingConfig{
			Enabled:       v.GetBool("tracing.enabled"),
			Endpoint:      v.GetString("tracing.endpoint"),
			Insecure:      v.GetBool("tracing.insecure"),
			SamplingRatio: v.GetFloat64("tracing.sampling_ratio"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "phonebill")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.snowflake_node", 1)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "phonebill.db")
	v.SetDefault("database.metrics", true)
	v.SetDefault("subscribers.url", "https://fn-interview-api.azurewebsites.net/users/:phoneNumber")
	v.SetDefault("subscribers.timeout", 5*time.Second)
	v.SetDefault("subscribers.cache_ttl", 10*time.Minute)
	v.SetDefault("call_records.source", CallRecordsSourceCSV)
	v.SetDefault("call_records.csv_path", "calls.csv")
	v.SetDefault("call_records.watch", true)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sampling_ratio", 1.0)
}

// bindLegacyEnv keeps the environment names older deployments use.
func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		"pricing.national_price_per_call":        "NATIONAL_PRICE_PER_CALL",
		"pricing.international_price_per_second": "INTERNATIONAL_PRICE_PER_SECOND",
		"pricing.free_friends_calls":             "FRIENDS_CALLS",
		"subscribers.url":                        "USERS_API_URL",
		"call_records.csv_path":                  "CSV_FILE_PATH",
	}
	for key, name := range legacy {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, name)
	}
}
