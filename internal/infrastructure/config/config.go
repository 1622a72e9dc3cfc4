// Package config loads service settings from config.toml and POS_ prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig points at the shared cache. Disabled, the modifier cache and
// the idempotency store live in process memory.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	ModifierTTL time.Duration `mapstructure:"modifier_ttl"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// PricingConfig is the business's pricing policy
type PricingConfig struct {
	// Precision is the number of decimals amounts are rounded to
	Precision int32 `mapstructure:"precision"`
	// EnabledCurrencies restricts the accepted codes; empty accepts any
	// well formed code
	EnabledCurrencies []string `mapstructure:"enabled_currencies"`
	DefaultCurrency   string   `mapstructure:"default_currency"`
}

type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TelemetryConfig controls OTLP export. Disabled, instruments are no-ops.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // host:port of the OTLP gRPC receiver
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	ExportInterval    time.Duration `mapstructure:"export_interval"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
}

// defaults registers every key, which is also what lets AutomaticEnv see
// keys that config.toml does not mention
var defaults = map[string]any{
	"app.name": "pos-pricing",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "pos_pricing",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "pos_pricing.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":      false,
	"redis.host":         "localhost",
	"redis.port":         6379,
	"redis.password":     "",
	"redis.db":           0,
	"redis.modifier_ttl": 10 * time.Minute,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      15 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      1 << 20,
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "X-Request-ID", "X-Tenant-ID", "Idempotency-Key"},
	"http.trusted_proxies":    []string{},

	"pricing.precision":          int(valueobject.DefaultPrecision),
	"pricing.enabled_currencies": []string{},
	"pricing.default_currency":   "",

	"idempotency.enabled": true,
	"idempotency.ttl":     24 * time.Hour,

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.service_name":       "pos-pricing",
	"telemetry.insecure":           false,
	"telemetry.export_interval":    15 * time.Second,
	"telemetry.sampling_ratio":     1.0,
	"telemetry.logs_enabled":       false,
}

// Load reads ./config.toml or /app/config.toml when present, then lets
// POS_SECTION_KEY environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		splitList,
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// A zero pool size from the environment means "unset"
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaults["database.max_open_conns"].(int)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList lets list settings come from the environment as
// "USD CUP" or "USD,CUP"
func splitList(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	return strings.FieldsFunc(reflect.ValueOf(data).String(), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), nil
}

func (c *Config) validate() error {
	db := c.Database
	if db.Driver != "postgres" && db.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", db.Driver)
	}
	if db.MaxOpenConns < 0 {
		return errors.New("database.max_open_conns must be positive")
	}
	if db.MaxIdleConns < 0 {
		return errors.New("database.max_idle_conns cannot be negative")
	}
	if db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}

	if err := c.Pricing.validate(); err != nil {
		return err
	}
	if c.Idempotency.TTL < 0 {
		return errors.New("idempotency.ttl cannot be negative")
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", r)
	}

	if c.App.Env != "production" {
		return nil
	}
	switch {
	case db.Driver != "postgres":
		return errors.New("database.driver must be postgres in production")
	case db.Password == "":
		return errors.New("database.password is required in production")
	case db.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	}
	return nil
}

func (p PricingConfig) validate() error {
	if err := p.RoundingPrecision().Validate(); err != nil {
		return fmt.Errorf("pricing.precision: %w", err)
	}
	enabled, err := p.Currencies()
	if err != nil {
		return fmt.Errorf("pricing.enabled_currencies: %w", err)
	}
	if p.DefaultCurrency == "" {
		return nil
	}
	def := valueobject.Currency(p.DefaultCurrency)
	if err := def.Validate(); err != nil {
		return fmt.Errorf("pricing.default_currency: %w", err)
	}
	if len(enabled) > 0 && !slices.Contains(enabled, def) {
		return fmt.Errorf("pricing.default_currency %s is not in pricing.enabled_currencies", def)
	}
	return nil
}

// Currencies normalizes the enabled codes to upper case and validates them
func (p PricingConfig) Currencies() ([]valueobject.Currency, error) {
	codes := make([]string, 0, len(p.EnabledCurrencies))
	for _, code := range p.EnabledCurrencies {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	return valueobject.ParseCurrencies(codes)
}

func (p PricingConfig) RoundingPrecision() valueobject.Precision {
	return valueobject.Precision(p.Precision)
}

// DSN is the sqlite file path, or a postgres URL with escaped credentials
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}
