// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/config"
	"github.com/majektom/satel-integra-integration-protocol/internal/logging"
)

var (
	configFile string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "integrastat",
	Short: "INTEGRA Integration Protocol Tool",
	Long: `Integrastat - A CLI tool for talking to INTEGRA alarm panels over the
integration protocol.

Reads zone, partition, output and door states, sends control commands and
monitors the panel for changes. Raw traffic can be recorded and replayed.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  TCP:       --host 192.168.1.20:7094 (ETHM-1 style module)
  WebSocket: --url ws://host/path [--username user]

Settings may also come from a config file (--config, or integrastat.yaml in
the working directory) and INTEGRA_* environment variables, for example
INTEGRA_CONNECTION_HOST.

The user code for control commands is read from INTEGRA_USER_CODE, or
prompted interactively if not set. A --code flag is intentionally not
provided to avoid leaking codes in shell history.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err = logging.InitLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configFile, "config", "c", "", "Config file (yaml, toml or json)")

	// Serial connection flags
	flags.StringP("port", "p", "", "Serial port device")
	flags.IntP("baud", "b", 115200, "Baud rate (serial only)")

	// TCP connection flags
	flags.String("host", "", "Integration module address (host:port)")

	// WebSocket connection flags
	flags.StringP("url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.String("username", "", "Username for HTTP Basic auth")
	flags.Bool("no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Logging
	flags.String("log-level", "", "Log level (debug, info, warn, error); silent when empty")
	flags.String("log-file", "", "Also write logs to this rolling file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
