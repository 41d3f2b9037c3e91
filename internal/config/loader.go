package config

import (
	"os"
	"path/filepath"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every setting when read from the environment,
	// e.g. PROCINFO_REFRESH_PER_SECOND.
	EnvPrefix = "PROCINFO"
	// ConfigPathEnv names an explicit config file.
	ConfigPathEnv = "PROCINFO_CONFIG"
	// GlobalConfigDir is the directory for the user config, relative to $HOME.
	GlobalConfigDir = ".config/procinfo"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
)

// Find locates the config file using the search order:
// 1. $PROCINFO_CONFIG (must exist)
// 2. ~/.config/procinfo/config.yaml
//
// Returns an empty path when no config file is present.
func Find() (string, error) {
	if explicit := os.Getenv(ConfigPathEnv); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found: "+explicit,
					"Check the path in "+ConfigPathEnv+" or unset it")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", nil
	}

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}

	return "", nil
}

// Load reads settings from path (empty means defaults plus environment)
// and validates them.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// NO_COLOR is the cross-tool convention, honored alongside our own var.
	_ = v.BindEnv("no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file exists and is valid YAML")
		}
	}

	cfg := DefaultSettings()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Config has values of the wrong type",
			"Durations look like 1s or 500ms; refresh_per_second is a whole number")
	}

	if err := ValidateSettings(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault finds and loads the config file, falling back to defaults
// (still subject to environment overrides) when none exists.
func LoadOrDefault() (*Settings, error) {
	path, err := Find()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("refresh_per_second", DefaultRefreshPerSecond)
	v.SetDefault("cpu_window", DefaultCPUWindow.String())
	v.SetDefault("tick_sleep", DefaultTickSleep.String())
	v.SetDefault("log_file", "")
	v.SetDefault("sequential", false)
	v.SetDefault("no_color", false)
}
