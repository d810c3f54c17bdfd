// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/link"
	"github.com/majektom/satel-integra-integration-protocol/internal/metrics"
	"github.com/majektom/satel-integra-integration-protocol/internal/monitor"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	monitorTUI         bool
	monitorInterval    time.Duration
	monitorMetricsAddr string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow panel state changes with statistics",
	Long: `Read the panel state once, then poll NEW_DATA and re-read every
category the panel reports as changed.

Changes are shown as events (zones violated, partitions armed, outputs
switched) together with frame statistics: decoded answers, rejected frames
by cause, timeouts and rates.

The connection is re-opened with exponential backoff when it drops.

With --metrics-addr a Prometheus endpoint is served on /metrics.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorTUI, "tui", true, "Use terminal UI (false for text mode)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "NEW_DATA poll interval (default from config)")
	monitorCmd.Flags().StringVar(&monitorMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (default from config)")
}

// monitorEvent is one line of the event log
type monitorEvent struct {
	Time    time.Time
	Message string
	IsError bool
}

// tracker owns the statistics and state table shared by the frame consumer
// and the display
type tracker struct {
	mu      sync.Mutex
	stats   *monitor.Statistics
	state   *monitor.State
	metrics *metrics.LinkMetrics
	synced  bool
}

func newTracker(m *metrics.LinkMetrics) *tracker {
	return &tracker{
		stats:   monitor.NewStatistics(),
		state:   monitor.NewState(),
		metrics: m,
	}
}

// observe accounts one received frame and returns the events it caused
func (t *tracker) observe(f link.Frame) []monitorEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Update(f.Payload, f.Answer)

	if f.Answer == nil {
		cause := monitor.Classify(f.Payload)
		if cause == monitor.RejectNone {
			return nil
		}
		return []monitorEvent{{
			Time:    f.Time,
			Message: fmt.Sprintf("Rejected frame (%s): %s", cause, integra.FormatHex(f.Payload)),
			IsError: true,
		}}
	}

	fa, ok := f.Answer.(*integra.FlagArrayAnswer)
	if !ok {
		return nil
	}

	changed := t.state.Apply(fa)
	if t.metrics != nil {
		t.metrics.ObserveState(fa, changed)
	}
	if !changed {
		return nil
	}

	changes := t.state.Changes()
	return []monitorEvent{{Time: f.Time, Message: formatChange(changes[len(changes)-1])}}
}

func (t *tracker) timeout() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Timeout()
}

func (t *tracker) setSynced(synced bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.synced = synced
}

// trackerSnapshot is a copy of the tracker for rendering
type trackerSnapshot struct {
	Stats  monitor.Statistics
	Active map[integra.Command][]int
	Synced bool
}

func (t *tracker) snapshot() trackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.CalculateRates()
	snap := trackerSnapshot{
		Stats:  *t.stats,
		Active: make(map[integra.Command][]int),
		Synced: t.synced,
	}
	snap.Stats.Results = maps.Clone(t.stats.Results)
	for _, c := range t.state.Commands() {
		snap.Active[c] = t.state.Active(c)
	}
	return snap
}

func (t *tracker) summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.String()
}

// formatChange describes a state change for the event log
func formatChange(c monitor.Change) string {
	var parts []string
	if len(c.Set) > 0 {
		parts = append(parts, "on "+integra.FormatNumbers(c.Set))
	}
	if len(c.Cleared) > 0 {
		parts = append(parts, "off "+integra.FormatNumbers(c.Cleared))
	}
	if len(parts) == 0 {
		parts = append(parts, "none active")
	}
	return fmt.Sprintf("%s: %s", integra.FormatCommand(c.Command), strings.Join(parts, "; "))
}

// poller issues reads over one link
type poller struct {
	link    *link.Link
	tracker *tracker
	timeout time.Duration
}

// read sends one read command and waits for its answer
func (p *poller) read(ctx context.Context, frame []byte, c integra.Command) (integra.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	a, err := p.link.Request(ctx, frame, c)
	if errors.Is(err, link.ErrTimeout) {
		p.tracker.timeout()
	}
	return a, err
}

// readAll issues the given reads, skipping commands the panel does not answer
func (p *poller) readAll(ctx context.Context, commands []integra.Command) error {
	for _, c := range commands {
		frame, err := integra.EncodeReadCommand(c)
		if err != nil {
			return err
		}
		if _, err := p.read(ctx, frame, c); err != nil {
			if errors.Is(err, link.ErrTimeout) {
				logger.Warn("no answer", zap.Stringer("command", c))
				continue
			}
			return err
		}
	}
	return nil
}

// run reads the initial state then polls NEW_DATA until the link fails or
// ctx is cancelled
func (p *poller) run(ctx context.Context, interval time.Duration) error {
	if err := p.readAll(ctx, monitor.DefaultReads); err != nil {
		return err
	}
	p.tracker.setSynced(true)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	newData := integra.EncodeNewDataCommand()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		a, err := p.read(ctx, newData, integra.CmdNewData)
		if errors.Is(err, link.ErrTimeout) {
			continue
		}
		if err != nil {
			return err
		}

		nd, ok := a.(*integra.NewDataAnswer)
		if !ok {
			continue
		}
		if err := p.readAll(ctx, monitor.PollPlan(nd)); err != nil {
			return err
		}
	}
}

// consumeFrames feeds every received frame to the tracker until the link
// closes
func consumeFrames(l *link.Link, t *tracker, emit func(monitorEvent)) {
	for f := range l.Frames() {
		for _, ev := range t.observe(f) {
			emit(ev)
		}
	}
}

// monitorLoop keeps a session open, re-connecting with exponential backoff
func monitorLoop(ctx context.Context, t *tracker, m *metrics.LinkMetrics, interval time.Duration, emit func(monitorEvent)) {
	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		lost := "Connection failed"
		s, err := openSession(ctx, link.WithMetrics(m))
		if err == nil {
			lost = "Connection lost"
			backoff = 1 * time.Second
			emit(monitorEvent{Time: time.Now(), Message: "Connected: " + s.info})

			consumed := make(chan struct{})
			go func() {
				defer close(consumed)
				consumeFrames(s.link, t, emit)
			}()

			p := &poller{link: s.link, tracker: t, timeout: cfg.Link.Timeout}
			err = p.run(ctx, interval)
			if closeErr := s.Close(); closeErr != nil {
				logger.Warn("session close failed", zap.Error(closeErr))
			}
			<-consumed
			t.setSynced(false)
		}

		if ctx.Err() != nil {
			return
		}
		emit(monitorEvent{Time: time.Now(), Message: fmt.Sprintf("%s: %v", lost, err), IsError: true})

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// serveMetrics exposes reg on addr until ctx is done
func serveMetrics(ctx context.Context, addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", zap.Error(err))
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	interval := monitorInterval
	if interval == 0 {
		interval = cfg.Monitor.Interval
	}
	addr := monitorMetricsAddr
	if addr == "" {
		addr = cfg.Monitor.MetricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	m := metrics.NewLinkMetrics(reg)
	if addr != "" {
		go serveMetrics(ctx, addr, metrics.Handler(reg))
	}

	t := newTracker(m)

	if monitorTUI {
		return runMonitorTUI(ctx, t, m, interval)
	}
	return runMonitorText(ctx, t, m, interval)
}

func runMonitorText(ctx context.Context, t *tracker, m *metrics.LinkMetrics, interval time.Duration) error {
	fmt.Printf("Integrastat - Monitor\n")
	fmt.Printf("Poll interval: %s\n", interval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	var printMu sync.Mutex
	emit := func(ev monitorEvent) {
		printMu.Lock()
		defer printMu.Unlock()
		timestamp := ev.Time.Format("15:04:05.000")
		if ev.IsError {
			fmt.Printf("[%s] \033[1;31m%s\033[0m\n", timestamp, ev.Message)
			return
		}
		fmt.Printf("[%s] %s\n", timestamp, ev.Message)
	}

	monitorLoop(ctx, t, m, interval, emit)

	fmt.Printf("\n%s", t.summary())
	return nil
}

func runMonitorTUI(ctx context.Context, t *tracker, m *metrics.LinkMetrics, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newMonitorModel(t, cfg.Connection, interval)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		monitorLoop(ctx, t, m, interval, func(ev monitorEvent) {
			p.Send(eventMsg(ev))
		})
	}()

	_, err := p.Run()
	cancel()
	<-loopDone

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
