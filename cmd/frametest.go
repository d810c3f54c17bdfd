// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/link"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	frameTestTimeout int
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid INTEGRA frame",
	Long: `Ask the panel for NEW_DATA and wait for a valid answer until timeout.

Invalid bytes and frames failing the checksum are ignored; only a complete,
decodable answer counts.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for testing connectivity to a panel or an Ethernet module.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Integrastat - Frame Test\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid INTEGRA frame...\n\n")

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(frameTestTimeout)*time.Second)
	answer, err := s.link.Request(ctx, integra.EncodeNewDataCommand(), integra.CmdNewData)
	cancel()
	if closeErr := s.Close(); closeErr != nil {
		logger.Warn("session close failed", zap.Error(closeErr))
	}

	switch {
	case err == nil:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Print(integra.FormatAnswer(answer))
		os.Exit(0)

	case errors.Is(err, link.ErrTimeout):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameTestTimeout)
		os.Exit(1)

	default:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)
	}

	return nil
}
