// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majektom/satel-integra-integration-protocol/internal/link"
	"github.com/majektom/satel-integra-integration-protocol/internal/monitor"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

func flagFrame(t *testing.T, c integra.Command, data ...byte) link.Frame {
	t.Helper()
	payload := append([]byte{byte(c)}, data...)
	crc := integra.CalculateChecksum(payload)
	payload = append(payload, byte(crc>>8), byte(crc))
	return link.Frame{Time: time.Now(), Payload: payload, Answer: integra.DecodePayload(payload)}
}

func TestTracker_Observe(t *testing.T) {
	tr := newTracker(nil)

	events := tr.observe(flagFrame(t, integra.CmdZonesViolation, zonesData(0x05)...))
	require.Len(t, events, 1)
	assert.Equal(t, "ZONES_VIOLATION: on 1, 3", events[0].Message)
	assert.False(t, events[0].IsError)

	assert.Empty(t, tr.observe(flagFrame(t, integra.CmdZonesViolation, zonesData(0x05)...)))

	events = tr.observe(flagFrame(t, integra.CmdZonesViolation, zonesData(0x04)...))
	require.Len(t, events, 1)
	assert.Equal(t, "ZONES_VIOLATION: off 1", events[0].Message)

	// Non flag answers update statistics only
	assert.Empty(t, tr.observe(flagFrame(t, integra.CmdCommandResult, 0xFF)))

	events = tr.observe(link.Frame{Time: time.Now(), Payload: []byte{0x17, 0x00, 0x50, 0x5D}})
	require.Len(t, events, 1)
	assert.True(t, events[0].IsError)
	assert.Equal(t, "Rejected frame (checksum): 17 00 50 5D", events[0].Message)

	snap := tr.snapshot()
	assert.Equal(t, uint64(5), snap.Stats.TotalFrames)
	assert.Equal(t, uint64(4), snap.Stats.DecodedAnswers)
	assert.Equal(t, uint64(1), snap.Stats.ChecksumErrors)
	assert.Equal(t, uint64(1), snap.Stats.Results[integra.ResultCommandAccepted])
	assert.Equal(t, []int{3}, snap.Active[integra.CmdZonesViolation])
	assert.False(t, snap.Synced)
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := newTracker(nil)
	tr.observe(flagFrame(t, integra.CmdCommandResult, 0x00))

	snap := tr.snapshot()
	tr.observe(flagFrame(t, integra.CmdCommandResult, 0x00))

	assert.Equal(t, uint64(1), snap.Stats.Results[integra.ResultOK])
	assert.Equal(t, uint64(2), tr.snapshot().Stats.Results[integra.ResultOK])
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		change monitor.Change
		want   string
	}{
		{monitor.Change{Command: integra.CmdOutputsState, Set: []int{1, 2, 3}}, "OUTPUTS_STATE: on 1-3"},
		{monitor.Change{Command: integra.CmdDoorsOpened, Cleared: []int{4}}, "DOORS_OPENED: off 4"},
		{monitor.Change{Command: integra.CmdZonesTamper, Set: []int{9}, Cleared: []int{2, 7}}, "ZONES_TAMPER: on 9; off 2, 7"},
		{monitor.Change{Command: integra.CmdZonesAlarm}, "ZONES_ALARM: none active"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatChange(tt.change))
	}
}

// fakePanel answers ZONES_VIOLATION reads and ignores everything else
func fakePanel(conn net.Conn) {
	d := integra.NewDecoder()
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for data := buf[:n]; len(data) > 0; {
			used, step := d.AddBytes(data)
			data = data[used:]
			if step != integra.FrameReady {
				continue
			}
			if integra.Command(d.Frame()[0]) == integra.CmdZonesViolation {
				answer := integra.EncodeFrame(append([]byte{byte(integra.CmdZonesViolation)}, zonesData(0x01)...))
				if _, err := conn.Write(answer); err != nil {
					return
				}
			}
		}
	}
}

func TestPoller_ReadAll(t *testing.T) {
	client, panel := net.Pipe()
	l := link.New(client)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		client.Close()
		panel.Close()
	})
	go l.Run(ctx)
	go fakePanel(panel)

	tr := newTracker(nil)
	go consumeFrames(l, tr, func(monitorEvent) {})

	p := &poller{link: l, tracker: tr, timeout: 200 * time.Millisecond}
	err := p.readAll(ctx, []integra.Command{integra.CmdZonesViolation, integra.CmdOutputsState})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(tr.snapshot().Active[integra.CmdZonesViolation]) == 1
	}, time.Second, 10*time.Millisecond)

	snap := tr.snapshot()
	assert.Equal(t, []int{1}, snap.Active[integra.CmdZonesViolation])
	assert.Equal(t, uint64(1), snap.Stats.Timeouts)
	_, known := snap.Active[integra.CmdOutputsState]
	assert.False(t, known)
}

func TestPoller_ReadAllRejectsNonRead(t *testing.T) {
	p := &poller{tracker: newTracker(nil), timeout: time.Millisecond}
	err := p.readAll(context.Background(), []integra.Command{integra.CmdDisarm})
	require.Error(t, err)
}
