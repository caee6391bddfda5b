package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration (file + env overrides)
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`

	Monitor struct {
		// LiveLimits makes the limit setters rebuild the built-in rules.
		LiveLimits bool `mapstructure:"live_limits"`

		// Notifier is "log" or "console".
		Notifier        string `mapstructure:"notifier"`
		BlinkCycles     int    `mapstructure:"blink_cycles"`
		BlinkIntervalMS int    `mapstructure:"blink_interval_ms"`

		// RulesFile is an optional YAML file of extra range rules.
		RulesFile string `mapstructure:"rules_file"`
	} `mapstructure:"monitor"`

	Postgres struct {
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DBName       string `mapstructure:"db_name"`
		SSLMode      string `mapstructure:"ssl_mode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"postgres"`

	Listener struct {
		Channel          string `mapstructure:"channel"`
		ReconnectSeconds int    `mapstructure:"reconnect_seconds"`
	} `mapstructure:"listener"`
}

// MaxConsoleBlink bounds one console alert's blink animation. Alerts are
// delivered while the request holds the monitor lock, so the animation of
// every violation in a snapshot has to fit inside the 2s request timeout.
const MaxConsoleBlink = 250 * time.Millisecond

// defaults also registers every key so AutomaticEnv can override it
// during Unmarshal.
var defaults = map[string]any{
	"server.addr":                ":8080",
	"server.log_level":           "info",
	"monitor.live_limits":        false,
	"monitor.notifier":           "log",
	"monitor.blink_cycles":       6,
	"monitor.blink_interval_ms":  1000,
	"monitor.rules_file":         "",
	"postgres.host":              "",
	"postgres.port":              5432,
	"postgres.user":              "",
	"postgres.password":          "",
	"postgres.db_name":           "",
	"postgres.ssl_mode":          "disable",
	"postgres.max_open_conns":    10,
	"postgres.max_idle_conns":    2,
	"listener.channel":           "",
	"listener.reconnect_seconds": 5,
}

func Load() Config {
	cfg, err := LoadFrom("configs")
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFrom reads application.yaml from dir, if present, and applies
// VITALS_* environment overrides (e.g. VITALS_SERVER_ADDR).
func LoadFrom(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("VITALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	validate(&cfg)
	return cfg, nil
}

func validate(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Monitor.Notifier != "console" {
		c.Monitor.Notifier = "log"
	}
	if c.Monitor.BlinkCycles < 0 {
		c.Monitor.BlinkCycles = 0
	}
	if c.Monitor.BlinkIntervalMS < 0 {
		c.Monitor.BlinkIntervalMS = 0
	}
	if per := 2 * c.BlinkInterval(); c.Monitor.Notifier == "console" && per > 0 &&
		time.Duration(c.Monitor.BlinkCycles)*per > MaxConsoleBlink {
		c.Monitor.BlinkCycles = int(MaxConsoleBlink / per)
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxOpenConns <= 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns < 0 {
		c.Postgres.MaxIdleConns = 0
	}
	if c.Listener.ReconnectSeconds <= 0 {
		c.Listener.ReconnectSeconds = 5
	}
}

// PostgresEnabled reports whether a rules database is configured.
func (c Config) PostgresEnabled() bool { return c.Postgres.Host != "" }

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}

func (c Config) Backoff() time.Duration { return time.Duration(c.Listener.ReconnectSeconds) * time.Second }

// BlinkDuration is how long one console alert blocks.
func (c Config) BlinkDuration() time.Duration {
	return time.Duration(2*c.Monitor.BlinkCycles) * c.BlinkInterval()
}

func (c Config) BlinkInterval() time.Duration {
	return time.Duration(c.Monitor.BlinkIntervalMS) * time.Millisecond
}
