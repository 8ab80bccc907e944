package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"git.sr.ht/~jakintosh/cookieauth/internal/logging"
)

const envPrefix = "SESSIONCTL"

const defaultTimeout = 10 * time.Second

var ErrMissingBaseURL = errors.New("base url is required")

// Config is the resolved client configuration. Flags override environment
// variables, which override the config file.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	LogFormat string
	Verbose   bool
}

// configKeys maps viper keys to the persistent flags that set them.
var configKeys = map[string]string{
	"base_url":   "base-url",
	"timeout":    "timeout",
	"log_format": "log-format",
	"verbose":    "verbose",
}

func newViper(
	flags *pflag.FlagSet,
	configFile string,
) (
	*viper.Viper,
	error,
) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("log_format", logging.FormatText)
	v.SetDefault("verbose", false)

	for key, name := range configKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	return v, nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:   v.GetString("base_url"),
		Timeout:   v.GetDuration("timeout"),
		LogFormat: v.GetString("log_format"),
		Verbose:   v.GetBool("verbose"),
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("%w: set --base-url or %s_BASE_URL", ErrMissingBaseURL, envPrefix)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg, nil
}
