// Package config provides Viper-based configuration loading for the arena server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// Mode is the gin mode: "debug", "release", or "test".
	Mode string `mapstructure:"mode"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled controls whether finished encounters are recorded.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the static rule tables.
type ContentConfig struct {
	// Dir holds the YAML tables (classes, skills, statuses, terrain, combos, ...).
	Dir string `mapstructure:"dir"`
	// ScriptDir holds Lua AI score hooks; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// CombatConfig holds the numeric tuning constants of the combat core.
type CombatConfig struct {
	// MissChance is the probability in [0, 1) that a basic attack misses.
	MissChance float64 `mapstructure:"miss_chance"`
	// NormalMultiplier scales attacker strength for basic attacks.
	NormalMultiplier float64 `mapstructure:"normal_multiplier"`
	// RandomMin and RandomMax bound the inclusive uniform bonus added to basic attacks.
	RandomMin int `mapstructure:"random_min"`
	RandomMax int `mapstructure:"random_max"`
	// FleeChance is the probability that a flee action ends the encounter.
	FleeChance float64 `mapstructure:"flee_chance"`
	// DefendBonus is the fractional defense increase while defending.
	DefendBonus float64 `mapstructure:"defend_bonus"`
	// ComboWindow is the number of recent player actions kept for combo matching.
	ComboWindow int `mapstructure:"combo_window"`
	// GridWidth and GridHeight size the generated arena.
	GridWidth  int `mapstructure:"grid_width"`
	GridHeight int `mapstructure:"grid_height"`
	// GridComplexity is the probability a cell receives non-plain terrain.
	GridComplexity float64 `mapstructure:"grid_complexity"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Combat   CombatConfig   `mapstructure:"combat"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.Content.ScriptInstructionLimit < 0 {
		errs = append(errs, "content.script_instruction_limit must be >= 0")
	}
	if err := c.Combat.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the combat tuning constants.
//
// Postcondition: Returns nil iff every probability is in [0, 1], the random range is
// ordered, and the grid dimensions are positive.
func (c CombatConfig) Validate() error {
	var errs []string
	if c.MissChance < 0 || c.MissChance >= 1 {
		errs = append(errs, fmt.Sprintf("combat.miss_chance must be in [0, 1), got %v", c.MissChance))
	}
	if c.NormalMultiplier < 0 {
		errs = append(errs, fmt.Sprintf("combat.normal_multiplier must be >= 0, got %v", c.NormalMultiplier))
	}
	if c.RandomMin < 0 || c.RandomMax < c.RandomMin {
		errs = append(errs, fmt.Sprintf("combat.random_min/random_max must satisfy 0 <= min <= max, got [%d, %d]", c.RandomMin, c.RandomMax))
	}
	if c.FleeChance < 0 || c.FleeChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.flee_chance must be in [0, 1], got %v", c.FleeChance))
	}
	if c.DefendBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.defend_bonus must be >= 0, got %v", c.DefendBonus))
	}
	if c.ComboWindow < 1 {
		errs = append(errs, fmt.Sprintf("combat.combo_window must be >= 1, got %d", c.ComboWindow))
	}
	if c.GridWidth < 2 || c.GridHeight < 1 {
		errs = append(errs, fmt.Sprintf("combat.grid_width must be >= 2 and combat.grid_height >= 1, got %dx%d", c.GridWidth, c.GridHeight))
	}
	if c.GridComplexity < 0 || c.GridComplexity > 1 {
		errs = append(errs, fmt.Sprintf("combat.grid_complexity must be in [0, 1], got %v", c.GridComplexity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// DefaultCombat returns the stock combat tuning.
//
// Postcondition: DefaultCombat().Validate() == nil.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		MissChance:       0.10,
		NormalMultiplier: 0.4,
		RandomMin:        0,
		RandomMax:        40,
		FleeChance:       0.5,
		DefendBonus:      0.5,
		ComboWindow:      5,
		GridWidth:        10,
		GridHeight:       8,
		GridComplexity:   0.25,
	}
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[s.Mode] {
		errs = append(errs, fmt.Sprintf("server.mode must be one of [debug, release, test], got %q", s.Mode))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance carrying only the defaults.
//
// Postcondition: LoadFromViper(NewViper()) succeeds.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.script_dir", "content/scripts/ai")
	v.SetDefault("content.script_instruction_limit", 0)

	d := DefaultCombat()
	v.SetDefault("combat.miss_chance", d.MissChance)
	v.SetDefault("combat.normal_multiplier", d.NormalMultiplier)
	v.SetDefault("combat.random_min", d.RandomMin)
	v.SetDefault("combat.random_max", d.RandomMax)
	v.SetDefault("combat.flee_chance", d.FleeChance)
	v.SetDefault("combat.defend_bonus", d.DefendBonus)
	v.SetDefault("combat.combo_window", d.ComboWindow)
	v.SetDefault("combat.grid_width", d.GridWidth)
	v.SetDefault("combat.grid_height", d.GridHeight)
	v.SetDefault("combat.grid_complexity", d.GridComplexity)
}
