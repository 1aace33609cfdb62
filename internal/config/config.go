// Package config loads taskseq settings from defaults, an optional YAML file
// and TASKSEQ_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TASKSEQ"

type Config struct {
	DBPath     string           `mapstructure:"db_path"`
	Log        LogConfig        `mapstructure:"log"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Reminders  RemindersConfig  `mapstructure:"reminders"`
	Delegation DelegationConfig `mapstructure:"delegation"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
	// UseCases reports every service call through the logger.
	UseCases bool `mapstructure:"use_cases"`
}

// IdentityConfig names the household and acting user for CLI calls.
type IdentityConfig struct {
	FamilyID string `mapstructure:"family_id"`
	UserID   string `mapstructure:"user_id"`
}

type RemindersConfig struct {
	// Scope is "next" (the first actionable task of each sequence) or
	// "actionable" (every unblocked task).
	Scope string `mapstructure:"scope"`
}

type DelegationConfig struct {
	EligibleRoles []string `mapstructure:"eligible_roles"`
	Parallel      bool     `mapstructure:"parallel"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(Dir(), "taskseq.db"),
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Identity: IdentityConfig{
			FamilyID: "default",
			UserID:   "me",
		},
		Reminders: RemindersConfig{Scope: "next"},
		Delegation: DelegationConfig{
			EligibleRoles: []string{"parent"},
			Parallel:      true,
		},
		HTTP: HTTPConfig{Addr: "127.0.0.1:8080"},
	}
}

// Dir is the per-user configuration directory, ~/.taskseq.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskseq"
	}
	return filepath.Join(home, ".taskseq")
}

// New builds a viper instance with defaults and environment binding. When
// configFile is empty, config.yaml is looked up in Dir() and the working
// directory; a missing file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.use_cases", d.Log.UseCases)
	v.SetDefault("identity.family_id", d.Identity.FamilyID)
	v.SetDefault("identity.user_id", d.Identity.UserID)
	v.SetDefault("reminders.scope", d.Reminders.Scope)
	v.SetDefault("delegation.eligible_roles", d.Delegation.EligibleRoles)
	v.SetDefault("delegation.parallel", d.Delegation.Parallel)
	v.SetDefault("http.addr", d.HTTP.Addr)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}
