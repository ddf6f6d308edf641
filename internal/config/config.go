// Package config loads skein configuration from file, environment and flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/atikulmunna/skein/internal/aggregator"
	"github.com/atikulmunna/skein/internal/logfile"
	"github.com/atikulmunna/skein/internal/packet"
	"github.com/atikulmunna/skein/internal/settings"
)

// EnvPrefix is prepended to every environment override, e.g. SKEIN_LOGS_DIR.
const EnvPrefix = "SKEIN"

type Config struct {
	Logs     LogsConfig     `mapstructure:"logs"`
	Packets  PacketsConfig  `mapstructure:"packets"`
	Summary  SummaryConfig  `mapstructure:"summary"`
	Settings SettingsConfig `mapstructure:"settings"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type LogsConfig struct {
	Dir     string `mapstructure:"dir"`
	Pattern string `mapstructure:"pattern"`
}

// PacketsConfig seeds the settings store the first time it is created.
type PacketsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Strategy     string `mapstructure:"strategy"`
	StartPattern string `mapstructure:"start_pattern"`
	EndPattern   string `mapstructure:"end_pattern"`
	IDPattern    string `mapstructure:"id_pattern"`
}

type SummaryConfig struct {
	DurationMode string `mapstructure:"duration_mode"`
}

type SettingsConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	d := settings.Defaults()

	v.SetDefault("logs.dir", "logs")
	v.SetDefault("logs.pattern", logfile.DefaultPattern)
	v.SetDefault("packets.enabled", d.EnablePackets)
	v.SetDefault("packets.strategy", d.Strategy)
	v.SetDefault("packets.start_pattern", d.PacketStartPattern)
	v.SetDefault("packets.end_pattern", d.PacketEndPattern)
	v.SetDefault("packets.id_pattern", d.PacketIDPattern)
	v.SetDefault("summary.duration_mode", string(aggregator.ModeFlags))
	v.SetDefault("settings.driver", settings.DriverSQLite)
	v.SetDefault("settings.path", "data/settings.db")
	v.SetDefault("settings.dsn", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
}

// BindEnv makes every key overridable through SKEIN_-prefixed variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that no component accepts.
func (c Config) Validate() error {
	switch c.Settings.Driver {
	case settings.DriverFile, settings.DriverSQLite, settings.DriverPostgres:
	default:
		return fmt.Errorf("settings.driver: unknown driver %q", c.Settings.Driver)
	}
	if _, err := packet.ParseStrategy(c.Packets.Strategy); err != nil {
		return fmt.Errorf("packets.strategy: %w", err)
	}
	if _, err := aggregator.ParseMode(c.Summary.DurationMode); err != nil {
		return fmt.Errorf("summary.duration_mode: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

// SeedSettings converts the packets section into initial store settings.
func (c Config) SeedSettings() settings.Settings {
	strategy, _ := packet.ParseStrategy(c.Packets.Strategy)
	return settings.Settings{
		EnablePackets:      c.Packets.Enabled,
		PacketStartPattern: c.Packets.StartPattern,
		PacketEndPattern:   c.Packets.EndPattern,
		PacketIDPattern:    c.Packets.IDPattern,
		Strategy:           string(strategy),
	}
}

// StoreOptions returns the settings store options for this config.
func (c Config) StoreOptions() settings.Options {
	return settings.Options{
		Driver: c.Settings.Driver,
		Path:   c.Settings.Path,
		DSN:    c.Settings.DSN,
		Seed:   c.SeedSettings(),
	}
}

// DurationMode returns the validated summary duration mode.
func (c Config) DurationMode() aggregator.Mode {
	m, _ := aggregator.ParseMode(c.Summary.DurationMode)
	return m
}
