// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package metrics exposes link and codec counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

const namespace = "integra"

// NewRegistry creates a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// LinkMetrics counts traffic through a frame link.
type LinkMetrics struct {
	BytesReceived  prometheus.Counter
	BytesSent      prometheus.Counter
	Frames         prometheus.Counter
	Answers        *prometheus.CounterVec // labels: command
	Rejected       *prometheus.CounterVec // labels: cause
	CommandsSent   *prometheus.CounterVec // labels: command
	Results        *prometheus.CounterVec // labels: code
	Timeouts       prometheus.Counter
	DecoderResets  prometheus.Counter
	ChangedStates  *prometheus.CounterVec // labels: command
	ActiveElements *prometheus.GaugeVec   // labels: command
}

// NewLinkMetrics registers and returns the link metrics
func NewLinkMetrics(reg prometheus.Registerer) *LinkMetrics {
	m := &LinkMetrics{
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Raw bytes read from the transport.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Raw bytes written to the transport.",
		}),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames delimited by the decoder.",
		}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Frames decoded into answers, by command.",
		}, []string{"command"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_frames_total",
			Help:      "Frames that did not decode, by cause.",
		}, []string{"cause"}),
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Command frames written, by command.",
		}, []string{"command"}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_results_total",
			Help:      "COMMAND_RESULT answers, by result code.",
		}, []string{"code"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_timeouts_total",
			Help:      "Requests that got no matching answer in time.",
		}),
		DecoderResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decoder_idle_resets_total",
			Help:      "Partial frames dropped after the line went idle.",
		}),
		ChangedStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "Decoded flag arrays that differed from the previous read.",
		}, []string{"command"}),
		ActiveElements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_elements",
			Help:      "Number of set flags in the latest answer, by command.",
		}, []string{"command"}),
	}
	reg.MustRegister(
		m.BytesReceived, m.BytesSent, m.Frames, m.Answers, m.Rejected,
		m.CommandsSent, m.Results, m.Timeouts, m.DecoderResets,
		m.ChangedStates, m.ActiveElements,
	)
	return m
}

// ObserveAnswer counts a decoded answer
func (m *LinkMetrics) ObserveAnswer(a integra.Answer) {
	m.Answers.WithLabelValues(a.Command().String()).Inc()
	if r, ok := a.(*integra.ResultAnswer); ok {
		m.Results.WithLabelValues(fmt.Sprintf("0x%02X", uint8(r.Code()))).Inc()
	}
}

// ObserveCommand counts an outbound command frame of n bytes
func (m *LinkMetrics) ObserveCommand(c integra.Command, n int) {
	m.CommandsSent.WithLabelValues(c.String()).Inc()
	m.BytesSent.Add(float64(n))
}

// ObserveState records a flag array state update
func (m *LinkMetrics) ObserveState(a *integra.FlagArrayAnswer, changed bool) {
	name := a.Command().String()
	if changed {
		m.ChangedStates.WithLabelValues(name).Inc()
	}
	m.ActiveElements.WithLabelValues(name).Set(float64(len(a.ActiveNumbers())))
}
