package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"scancmp/internal/scanresult"
)

// RegenEnvVar turns fixture regeneration on when set to a true-ish value.
const RegenEnvVar = "PURLDB_TOOLKIT_TEST_FIXTURES_REGEN"

// EnvPrefix prefixes environment overrides of config keys, e.g. SCANCMP_CHECKHEADERS.
const EnvPrefix = "SCANCMP"

// ConfigName is the base name of the optional config file (scancmp.json, .yaml or .toml).
const ConfigName = "scancmp"

// Config represents the complete scancmp configuration
type Config struct {
	// Regen overwrites expected fixtures with the current results instead of comparing.
	Regen bool `json:"regen" mapstructure:"regen"`

	RemoveFileDate bool `json:"removeFileDate" mapstructure:"removeFileDate"`
	CheckHeaders   bool `json:"checkHeaders" mapstructure:"checkHeaders"`
	RemoveUUID     bool `json:"removeUuid" mapstructure:"removeUuid"`

	// ExtraTimeout is the --timeout sentinel stripped from headers on Platform.
	ExtraTimeout string `json:"extraTimeout" mapstructure:"extraTimeout"`
	// Platform is the operating system the scans under test ran on.
	Platform string `json:"platform" mapstructure:"platform"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RemoveUUID:   true,
		ExtraTimeout: scanresult.WindowsCITimeout,
		Platform:     runtime.GOOS,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from an optional scancmp.{json,yaml,toml}
// in dir, then applies SCANCMP_* overrides and finally RegenEnvVar.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("regen", def.Regen)
	v.SetDefault("removeFileDate", def.RemoveFileDate)
	v.SetDefault("checkHeaders", def.CheckHeaders)
	v.SetDefault("removeUuid", def.RemoveUUID)
	v.SetDefault("extraTimeout", def.ExtraTimeout)
	v.SetDefault("platform", def.Platform)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName(ConfigName)
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, &ConfigError{Field: "file", Message: err.Error()}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if regen, ok := RegenFromEnv(); ok {
		cfg.Regen = regen
	}

	return &cfg, nil
}

// RegenFromEnv reads RegenEnvVar. ok is false when the variable is unset.
func RegenFromEnv() (regen bool, ok bool) {
	s, ok := os.LookupEnv(RegenEnvVar)
	if !ok {
		return false, false
	}
	return ParseFlag(s), true
}

// ParseFlag interprets a boolean-like environment value. Empty, "0",
// "false", "no" and "off" (any case) are false; anything else is true.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// ExtraTimeoutPlatform reports whether scans ran on the platform that gets
// the extra CI timeout.
func (c *Config) ExtraTimeoutPlatform() bool {
	return strings.EqualFold(c.Platform, scanresult.ExtraTimeoutOS)
}

// StreamlineOptions returns the scan streamlining options for this config.
func (c *Config) StreamlineOptions() scanresult.Options {
	return scanresult.Options{
		RemoveFileDate:       c.RemoveFileDate,
		ExtraTimeoutPlatform: c.ExtraTimeoutPlatform(),
		ExtraTimeout:         c.ExtraTimeout,
	}
}

// Save writes the configuration to dir/scancmp.json
func (c *Config) Save(dir string) error {
	configPath := filepath.Join(dir, ConfigName+".json")

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ExtraTimeout == "" {
		return &ConfigError{Field: "extraTimeout", Message: "must not be empty"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "unknown level " + c.Logging.Level}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
