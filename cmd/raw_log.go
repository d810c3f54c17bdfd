// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/capture"
	"github.com/majektom/satel-integra-integration-protocol/internal/link"
	"github.com/majektom/satel-integra-integration-protocol/internal/monitor"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	rawLogRecord string
	rawLogPoll   time.Duration
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display received frames in human-readable format",
	Long: `Continuously decode and display INTEGRA frames as they arrive.

Every delimited frame is printed with a timestamp and its decoded answer.
Frames that fail to decode are shown as REJECTED with the reason and a hex
dump of the unescaped payload.

The panel only speaks when asked, so --poll sends NEW_DATA at the given
interval to generate traffic. Use --record to save the raw byte stream for
later use with the replay command.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().StringVar(&rawLogRecord, "record", "", "Record raw traffic to this capture file")
	rawLogCmd.Flags().DurationVar(&rawLogPoll, "poll", 0, "Send NEW_DATA at this interval (0 = listen only)")
}

func runRawLog(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []link.Option
	if rawLogRecord != "" {
		f, err := os.Create(rawLogRecord)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer f.Close()

		w := capture.NewWriter(f)
		opts = append(opts, link.WithRecorder(w))
		logger.Info("recording", zap.String("file", rawLogRecord), zap.Stringer("session", w.Session()))
	}

	s, err := openSession(ctx, opts...)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	fmt.Printf("Integrastat - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if rawLogPoll > 0 {
		go pollNewData(ctx, s.link, rawLogPoll)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-s.link.Frames():
			if !ok {
				fmt.Printf("Connection closed\n")
				return nil
			}
			fmt.Print(formatFrame(f))
		}
	}
}

// pollNewData sends NEW_DATA until ctx is done
func pollNewData(ctx context.Context, l *link.Link, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frame := integra.EncodeNewDataCommand()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Send(ctx, frame); err != nil {
				logger.Warn("poll failed", zap.Error(err))
				return
			}
		}
	}
}

// formatFrame renders one received frame for the log
func formatFrame(f link.Frame) string {
	timestamp := f.Time.Format("15:04:05.000")
	if f.Answer != nil {
		return fmt.Sprintf("[%s] %s", timestamp, integra.FormatAnswer(f.Answer))
	}

	cause := monitor.Classify(f.Payload)
	if cause == monitor.RejectNone {
		// Catalogued answer without a decoder, e.g. RTC_AND_BASIC_STATUS
		return fmt.Sprintf("[%s] %s (0x%02X) not decoded\n  Payload: %s\n",
			timestamp, integra.FormatCommand(integra.Command(f.Payload[0])), f.Payload[0], integra.FormatHex(f.Payload))
	}
	return fmt.Sprintf("[%s] REJECTED (%s) len=%d\n  Payload: %s\n",
		timestamp, cause, len(f.Payload), integra.FormatHex(f.Payload))
}
