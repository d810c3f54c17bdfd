// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package config loads integrastat settings from an optional config file,
// INTEGRA_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// INTEGRA_CONNECTION_HOST or INTEGRA_USER_CODE.
const EnvPrefix = "INTEGRA"

// ConnectionConfig selects and parameterizes the transport.
// Exactly one of Port, URL or Host is expected to be set.
type ConnectionConfig struct {
	Port        string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	URL         string        `mapstructure:"url"`
	Username    string        `mapstructure:"username"`
	NoSSLVerify bool          `mapstructure:"noSslVerify"`
	Host        string        `mapstructure:"host"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// LumberjackConfig configures the rolling log file.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures the zap logger. An empty Level disables logging.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// LinkConfig tunes the frame link.
type LinkConfig struct {
	RateLimit time.Duration `mapstructure:"rateLimit"`
	IdleReset time.Duration `mapstructure:"idleReset"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MonitorConfig configures the monitor command.
type MonitorConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MetricsAddr string        `mapstructure:"metricsAddr"`
}

// Config is the complete integrastat configuration.
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Link       LinkConfig       `mapstructure:"link"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`

	// UserCode and Prefix authorize control commands. Both are normally
	// supplied through INTEGRA_USER_CODE and INTEGRA_PREFIX.
	UserCode string `mapstructure:"userCode"`
	Prefix   string `mapstructure:"prefix"`
}

// flagKeys maps persistent CLI flags to config keys
var flagKeys = map[string]string{
	"port":          "connection.port",
	"baud":          "connection.baud",
	"url":           "connection.url",
	"username":      "connection.username",
	"no-ssl-verify": "connection.noSslVerify",
	"host":          "connection.host",
	"log-level":     "logging.level",
	"log-file":      "logging.file.filename",
}

// Load reads the configuration. path may be empty, in which case
// integrastat.{yaml,toml,json} is searched in the working directory and
// $HOME/.config/integrastat; a missing file is not an error then. Flags that
// were set on the command line override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/integrastat")
		v.SetConfigName("integrastat")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// camelCase keys do not map onto SNAKE_CASE variables by themselves
	if err := v.BindEnv("userCode", EnvPrefix+"_USER_CODE"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("connection.port", "")
	v.SetDefault("connection.baud", 115200)
	v.SetDefault("connection.url", "")
	v.SetDefault("connection.username", "admin")
	v.SetDefault("connection.noSslVerify", false)
	v.SetDefault("connection.host", "")
	v.SetDefault("connection.dialTimeout", "5s")

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 28)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("link.rateLimit", "50ms")
	v.SetDefault("link.idleReset", "1s")
	v.SetDefault("link.timeout", "3s")

	v.SetDefault("monitor.interval", "1s")
	v.SetDefault("monitor.metricsAddr", "")

	v.SetDefault("userCode", "")
	v.SetDefault("prefix", "")
}
