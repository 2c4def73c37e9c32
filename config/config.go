// Package config loads the service settings from settings.json.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config mirrors settings.json. Every key can be overridden by an
// AISDECODE_<KEY> environment variable.
type Config struct {
	UDPListenPort         int    `mapstructure:"udp_listen_port"`
	UDPRateLimitPerMinute int    `mapstructure:"udp_rate_limit_per_minute"`
	SerialPort            string `mapstructure:"serial_port"`
	Baud                  int    `mapstructure:"baud"`
	HTTPPort              int    `mapstructure:"http_port"`
	WebPath               string `mapstructure:"web_path"`
	Debug                 bool   `mapstructure:"debug"`

	FragmentTTLMs         int `mapstructure:"fragment_ttl_ms"`
	DeduplicationWindowMs int `mapstructure:"deduplication_window_ms"`
	MetricWindowSize      int `mapstructure:"metric_window_size"`

	FailedDecodeLog           string `mapstructure:"failed_decode_log"`
	FailedDecodeLogMaxMB      int    `mapstructure:"failed_decode_log_max_mb"`
	FailedDecodeLogMaxBackups int    `mapstructure:"failed_decode_log_max_backups"`
	FailedDecodeLogMaxAgeDays int    `mapstructure:"failed_decode_log_max_age_days"`

	MQTTServer string `mapstructure:"mqtt_server"`
	MQTTTLS    bool   `mapstructure:"mqtt_tls"`
	MQTTAuth   string `mapstructure:"mqtt_auth"`
	MQTTTopic  string `mapstructure:"mqtt_topic"`

	PostgresDSN   string `mapstructure:"postgres_dsn"`
	PostgresTable string `mapstructure:"postgres_table"`

	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"`
	RedisTTLSeconds int    `mapstructure:"redis_ttl_seconds"`

	InfluxURL             string `mapstructure:"influx_url"`
	InfluxDB              string `mapstructure:"influx_db"`
	InfluxIntervalSeconds int    `mapstructure:"influx_interval_seconds"`

	SocketIOEnabled          bool `mapstructure:"socketio_enabled"`
	SocketIOVesselTTLSeconds int  `mapstructure:"socketio_vessel_ttl_seconds"`

	// Aggregator receives the raw sentences of every decoded message.
	Aggregator string `mapstructure:"aggregator"`
}

func (c *Config) FragmentTTL() time.Duration {
	return time.Duration(c.FragmentTTLMs) * time.Millisecond
}

func (c *Config) DeduplicationWindow() time.Duration {
	return time.Duration(c.DeduplicationWindowMs) * time.Millisecond
}

func (c *Config) MetricWindow() time.Duration {
	return time.Duration(c.MetricWindowSize) * time.Second
}

func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

// SocketIOVesselTTL is how long a silent vessel stays in the snapshot sent
// to new Socket.IO clients.
func (c *Config) SocketIOVesselTTL() time.Duration {
	return time.Duration(c.SocketIOVesselTTLSeconds) * time.Second
}

func (c *Config) InfluxInterval() time.Duration {
	return time.Duration(c.InfluxIntervalSeconds) * time.Second
}

// MQTTCredentials splits mqtt_auth ("user:pass").
func (c *Config) MQTTCredentials() (user, pass string, ok bool) {
	if c.MQTTAuth == "" {
		return "", "", false
	}
	return strings.Cut(c.MQTTAuth, ":")
}

// SetDefaults configures default values for all settings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("udp_listen_port", 8101)
	v.SetDefault("udp_rate_limit_per_minute", 6000)
	v.SetDefault("serial_port", "")
	v.SetDefault("baud", 38400)
	v.SetDefault("http_port", 8100)
	v.SetDefault("web_path", "web")
	v.SetDefault("debug", false)

	v.SetDefault("fragment_ttl_ms", 10000)
	v.SetDefault("deduplication_window_ms", 1000)
	v.SetDefault("metric_window_size", 60)

	v.SetDefault("failed_decode_log", "")
	v.SetDefault("failed_decode_log_max_mb", 10)
	v.SetDefault("failed_decode_log_max_backups", 5)
	v.SetDefault("failed_decode_log_max_age_days", 28)

	v.SetDefault("mqtt_server", "")
	v.SetDefault("mqtt_tls", false)
	v.SetDefault("mqtt_auth", "")
	v.SetDefault("mqtt_topic", "ais")

	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_table", "messages")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_ttl_seconds", 3600)

	v.SetDefault("influx_url", "")
	v.SetDefault("influx_db", "ais")
	v.SetDefault("influx_interval_seconds", 60)

	v.SetDefault("socketio_enabled", false)
	v.SetDefault("socketio_vessel_ttl_seconds", 3600)
	v.SetDefault("aggregator", "")
}

// Load reads settings from path. A missing path yields defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AISDECODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read settings file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal settings")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.FragmentTTLMs <= 0 {
		return errors.Newf("fragment_ttl_ms must be positive, got %d", c.FragmentTTLMs)
	}
	if c.MetricWindowSize <= 0 {
		return errors.Newf("metric_window_size must be positive, got %d", c.MetricWindowSize)
	}
	if c.DeduplicationWindowMs < 0 {
		return errors.Newf("deduplication_window_ms must not be negative, got %d", c.DeduplicationWindowMs)
	}
	if c.UDPListenPort == 0 && c.SerialPort == "" {
		return errors.New("no input configured: set udp_listen_port or serial_port")
	}
	if c.MQTTAuth != "" && !strings.Contains(c.MQTTAuth, ":") {
		return errors.WithHint(errors.New("mqtt_auth must be user:pass"), "leave mqtt_auth empty for anonymous access")
	}
	return nil
}
