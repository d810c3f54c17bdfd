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
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure panel round-trip time with NEW_DATA requests",
	Long: `Send NEW_DATA requests and measure the time until the answer arrives.

NEW_DATA is harmless to the panel and always answered, so it serves as a
ping. Useful for verifying:
  - The connection is established
  - The integration option is enabled on the panel or module
  - Both directions of the line work

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Integrastat - Ping Test\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	frame := integra.EncodeNewDataCommand()
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(pingTimeout)*time.Second)
		startTime := time.Now()
		answer, err := s.link.Request(ctx, frame, integra.CmdNewData)
		rtt := time.Since(startTime)
		cancel()

		switch {
		case err == nil:
			if nd, ok := answer.(*integra.NewDataAnswer); ok {
				fmt.Printf("NEW_DATA answered, %d changed, rtt=%v\n", len(nd.ChangedCommands()), rtt.Round(time.Millisecond))
			} else {
				fmt.Printf("%s answered, rtt=%v\n", integra.FormatCommand(answer.Command()), rtt.Round(time.Millisecond))
			}
			successCount++

		case errors.Is(err, link.ErrTimeout):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++

		default:
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}
	if err := s.Close(); err != nil {
		logger.Warn("session close failed", zap.Error(err))
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
