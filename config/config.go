// Package config loads server configuration from an optional YAML file,
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. FISHING_GAME_MOVE_STEP.
const EnvPrefix = "FISHING"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RPC       RPCConfig       `mapstructure:"rpc"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	PublicDir      string        `mapstructure:"public_dir"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// Addr returns the "host:port" listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	// RateLimit is the sustained number of inbound messages per second a
	// single connection may send; RateBurst is the bucket size. 0 disables
	// the limit.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type GameConfig struct {
	FishCount           int           `mapstructure:"fish_count"`
	MaxPlayers          int           `mapstructure:"max_players"`
	MoveStep            float64       `mapstructure:"move_step"`
	CatchRadius         float64       `mapstructure:"catch_radius"`
	MinFishingWait      time.Duration `mapstructure:"min_fishing_wait"`
	MaxFishingWait      time.Duration `mapstructure:"max_fishing_wait"`
	SchedulerResolution time.Duration `mapstructure:"scheduler_resolution"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type RPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver selects the journal backend: "gorm" or "sql" (database/sql + lib/pq).
	Driver        string `mapstructure:"driver"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbname"`
	SSLMode       string `mapstructure:"sslmode"`
	JournalBuffer int    `mapstructure:"journal_buffer"`
}

// DSN returns the key/value PostgreSQL connection string understood by both
// lib/pq and the gorm postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LoadConfig reads config.yaml from path if present, then applies defaults and
// environment overrides. The bare PORT variable also sets server.port.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding PORT: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and reports all violations at once.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateServer(c.Server),
		validateWebSocket(c.WebSocket),
		validateGame(c.Game),
		validateLogging(c.Logging),
		validateMetrics(c.Metrics),
		validateRPC(c.RPC),
		validateDatabase(c.Database),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.PublicDir == "" {
		errs = append(errs, "server.public_dir must not be empty")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		errs = append(errs, "server timeouts must not be negative")
	}
	return joinErrs(errs)
}

func validateWebSocket(w WebSocketConfig) error {
	var errs []string
	if w.PingInterval <= 0 {
		errs = append(errs, "websocket.ping_interval must be positive")
	}
	if w.PongWait <= w.PingInterval {
		errs = append(errs, "websocket.pong_wait must exceed websocket.ping_interval")
	}
	if w.WriteWait <= 0 {
		errs = append(errs, "websocket.write_wait must be positive")
	}
	if w.MaxMessageSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.max_message_size must be >= 1, got %d", w.MaxMessageSize))
	}
	if w.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("websocket.send_buffer must be >= 1, got %d", w.SendBuffer))
	}
	if w.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("websocket.rate_limit must be >= 0, got %v", w.RateLimit))
	}
	if w.RateLimit > 0 && w.RateBurst < 1 {
		errs = append(errs, fmt.Sprintf("websocket.rate_burst must be >= 1, got %d", w.RateBurst))
	}
	return joinErrs(errs)
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.FishCount < 1 {
		errs = append(errs, fmt.Sprintf("game.fish_count must be >= 1, got %d", g.FishCount))
	}
	if g.MaxPlayers < 1 || g.MaxPlayers > 2 {
		errs = append(errs, fmt.Sprintf("game.max_players must be 1 or 2, got %d", g.MaxPlayers))
	}
	if g.MoveStep <= 0 || g.MoveStep > 100 {
		errs = append(errs, fmt.Sprintf("game.move_step must be in (0,100], got %v", g.MoveStep))
	}
	if g.CatchRadius <= 0 {
		errs = append(errs, fmt.Sprintf("game.catch_radius must be positive, got %v", g.CatchRadius))
	}
	if g.MinFishingWait <= 0 {
		errs = append(errs, "game.min_fishing_wait must be positive")
	}
	if g.MaxFishingWait <= g.MinFishingWait {
		errs = append(errs, "game.max_fishing_wait must exceed game.min_fishing_wait")
	}
	if g.SchedulerResolution <= 0 {
		errs = append(errs, "game.scheduler_resolution must be positive")
	}
	return joinErrs(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	if !m.Enabled {
		return nil
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", m.Path)
	}
	if m.Namespace == "" {
		return errors.New("metrics.namespace must not be empty")
	}
	return nil
}

func validateRPC(r RPCConfig) error {
	if r.Enabled && r.Address == "" {
		return errors.New("rpc.address must not be empty when rpc is enabled")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Driver != "gorm" && d.Driver != "sql" {
		errs = append(errs, fmt.Sprintf("database.driver must be one of [gorm, sql], got %q", d.Driver))
	}
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.DBName == "" {
		errs = append(errs, "database.dbname must not be empty")
	}
	if d.JournalBuffer < 1 {
		errs = append(errs, fmt.Sprintf("database.journal_buffer must be >= 1, got %d", d.JournalBuffer))
	}
	return joinErrs(errs)
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "; "))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.public_dir", "public")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("websocket.rate_limit", 0)
	v.SetDefault("websocket.rate_burst", 100)

	v.SetDefault("game.fish_count", 5)
	v.SetDefault("game.max_players", 2)
	v.SetDefault("game.move_step", 5)
	v.SetDefault("game.catch_radius", 10)
	v.SetDefault("game.min_fishing_wait", "2s")
	v.SetDefault("game.max_fishing_wait", "5s")
	v.SetDefault("game.scheduler_resolution", "20ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "fishduel")

	v.SetDefault("rpc.enabled", false)
	v.SetDefault("rpc.address", "127.0.0.1:3001")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "gorm")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fishduel")
	v.SetDefault("database.password", "fishduel")
	v.SetDefault("database.dbname", "fishduel")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.journal_buffer", 256)
}
