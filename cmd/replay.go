// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/majektom/satel-integra-integration-protocol/internal/capture"
	"github.com/majektom/satel-integra-integration-protocol/internal/link"
	"github.com/majektom/satel-integra-integration-protocol/internal/monitor"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	replayStats bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Decode a recorded capture file",
	Long: `Decode traffic recorded with raw_log --record without a panel.

Received bytes are fed through the frame decoder exactly as they arrived,
so chunk boundaries and line noise are reproduced. Sent commands are shown
by name only; their user code is never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayStats, "stats", true, "Print statistics at the end")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	stats := monitor.NewStatistics()
	if err := replayCapture(f, os.Stdout, stats); err != nil {
		return err
	}

	if replayStats {
		fmt.Printf("\n%s", stats)
	}
	return nil
}

// replayCapture decodes every record of a capture stream into w
func replayCapture(r io.Reader, w io.Writer, stats *monitor.Statistics) error {
	reader := capture.NewReader(r)
	in := integra.NewDecoder()
	out := integra.NewDecoder()

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch rec.Direction {
		case capture.In:
			for data := rec.Data; len(data) > 0; {
				n, step := in.AddBytes(data)
				data = data[n:]
				if step != integra.FrameReady {
					continue
				}
				payload := in.Frame()
				answer := integra.DecodePayload(payload)
				stats.Update(payload, answer)
				fmt.Fprint(w, formatFrame(link.Frame{Time: rec.Time, Payload: payload, Answer: answer}))
			}

		case capture.Out:
			for data := rec.Data; len(data) > 0; {
				n, step := out.AddBytes(data)
				data = data[n:]
				if step != integra.FrameReady {
					continue
				}
				payload := out.Frame()
				if len(payload) == 0 {
					continue
				}
				c := integra.Command(payload[0])
				fmt.Fprintf(w, "[%s] -> %s (0x%02X)\n", rec.Time.Format("15:04:05.000"), integra.FormatCommand(c), uint8(c))
			}
		}
	}
}
