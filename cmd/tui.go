// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/majektom/satel-integra-integration-protocol/internal/config"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// stateRow is one line of the state panel
type stateRow struct {
	label   string
	command integra.Command
}

var stateRows = []stateRow{
	{"Armed partitions", integra.CmdArmedPartitionsReally},
	{"Partition alarms", integra.CmdPartitionsAlarm},
	{"Entry time", integra.CmdPartitionsEntryTime},
	{"Exit time", integra.CmdPartitionsExitTimeOver10s},
	{"Violated zones", integra.CmdZonesViolation},
	{"Tampered zones", integra.CmdZonesTamper},
	{"Zone alarms", integra.CmdZonesAlarm},
	{"Bypassed zones", integra.CmdZonesBypassStatus},
	{"Active outputs", integra.CmdOutputsState},
	{"Open doors", integra.CmdDoorsOpened},
}

type monitorKeyMap struct {
	Quit  key.Binding
	Clear key.Binding
}

var monitorKeys = monitorKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear events"),
	),
}

// TUI model
type monitorModel struct {
	tracker       *tracker
	connInfo      string
	interval      time.Duration
	startTime     time.Time
	spinner       spinner.Model
	keys          monitorKeyMap
	events        []monitorEvent
	maxLogEntries int
	snap          trackerSnapshot
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type eventMsg monitorEvent

// formatUptime formats a duration to a human-friendly string
func formatUptime(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return "0 seconds"
	}

	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	unit := func(n int64, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, unit(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, unit(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, unit(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, unit(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

// describeConnection names the configured transport for the header
func describeConnection(cc config.ConnectionConfig) string {
	switch {
	case cc.URL != "":
		return cc.URL
	case cc.Host != "":
		return cc.Host
	case cc.Port != "":
		return fmt.Sprintf("%s @ %d baud", cc.Port, cc.Baud)
	}
	return "(none)"
}

func newMonitorModel(t *tracker, cc config.ConnectionConfig, interval time.Duration) monitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return monitorModel{
		tracker:       t,
		connInfo:      describeConnection(cc),
		interval:      interval,
		startTime:     time.Now(),
		spinner:       s,
		keys:          monitorKeys,
		events:        make([]monitorEvent, 0),
		maxLogEntries: 100,
		snap:          t.snapshot(),
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.events = m.events[:0]
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.snap = m.tracker.snapshot()
		return m, tickCmd()

	case eventMsg:
		m.addLogEntry(monitorEvent(msg))
		m.snap = m.tracker.snapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(ev monitorEvent) {
	m.events = append(m.events, ev)

	// Keep only last N entries
	if len(m.events) > m.maxLogEntries {
		m.events = m.events[len(m.events)-m.maxLogEntries:]
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("INTEGRASTAT - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Poll: %s | Up: %s | %s: %s, %s: %s",
		m.connInfo, m.interval, formatUptime(time.Since(m.startTime)),
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc,
		m.keys.Clear.Help().Key, m.keys.Clear.Help().Desc)))
	s.WriteString("\n\n")

	// Sync status
	if !m.snap.Synced {
		s.WriteString(m.spinner.View())
		s.WriteString(warningStyle.Render(" Reading panel state..."))
	} else {
		s.WriteString(valueStyle.Render("✓ Synchronized"))
	}
	s.WriteString("\n\n")

	// Statistics
	stats := m.snap.Stats
	rejected := stats.Rejected()
	var decodedPercent, rejectedPercent float64
	if stats.TotalFrames > 0 {
		decodedPercent = float64(stats.DecodedAnswers) * 100.0 / float64(stats.TotalFrames)
		rejectedPercent = float64(rejected) * 100.0 / float64(stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", stats.TotalFrames)),
		labelStyle.Render("Decoded:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", stats.DecodedAnswers, decodedPercent)),
		labelStyle.Render("Rejected:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", rejected, rejectedPercent)),
		labelStyle.Render("Timeouts:"), warningStyle.Render(fmt.Sprintf("%d", stats.Timeouts)),
	))

	if rejected > 0 {
		statsContent.WriteString(fmt.Sprintf("  (%s: %d, %s: %d, %s: %d, %s: %d)\n",
			headerStyle.Render("short"), stats.ShortFrames,
			headerStyle.Render("checksum"), stats.ChecksumErrors,
			headerStyle.Render("unknown command"), stats.UnknownCommands,
			headerStyle.Render("length"), stats.LengthMismatches,
		))
	}

	if len(stats.Results) > 0 {
		codes := make([]integra.ResultCode, 0, len(stats.Results))
		for code := range stats.Results {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		for _, code := range codes {
			statsContent.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render(fmt.Sprintf("Result 0x%02X:", uint8(code))),
				valueStyle.Render(fmt.Sprintf("%d (%s)", stats.Results[code], code.Message())),
			))
		}
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", stats.FrameRate)),
		labelStyle.Render("Error Rate:"), func() string {
			if stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
			}
			return valueStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Panel state
	s.WriteString(labelStyle.Render("Panel State:"))
	s.WriteString("\n")

	stateContent := strings.Builder{}
	for i, row := range stateRows {
		value := headerStyle.Render("unknown")
		if active, ok := m.snap.Active[row.command]; ok {
			if len(active) > 0 {
				value = warningStyle.Render(integra.FormatNumbers(active))
			} else {
				value = valueStyle.Render("none")
			}
		}
		stateContent.WriteString(fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-17s", row.label+":")), value))
		if i < len(stateRows)-1 {
			stateContent.WriteString("\n")
		}
	}
	s.WriteString(boxStyle.Render(stateContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 28 // Reserve space for header, stats and state
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.events) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.events); i++ {
			entry := m.events[i]
			timestamp := entry.Time.Format("01/02/06 15:04:05.000")
			if entry.IsError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.Message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.Message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
