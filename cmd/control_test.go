// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

const testCode = "1234FFFFFFFFFFFF"

func findAction(t *testing.T, name string) controlAction {
	t.Helper()
	for _, a := range controlActions {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("no control action %q", name)
	return controlAction{}
}

func TestBuildControlFrame_Vectors(t *testing.T) {
	code := []byte{0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	t.Run("arm", func(t *testing.T) {
		frame, err := buildControlFrame(findAction(t, "arm"), testCode, controlOptions{Partitions: []int{1, 2}})
		require.NoError(t, err)

		want := []byte{0xFE, 0xFE, 0x80}
		want = append(want, code...)
		want = append(want, 0x03, 0x00, 0x00, 0x00, 0x9D, 0x8D, 0xFE, 0x0D)
		assert.Equal(t, want, frame)
	})

	t.Run("outputs-on", func(t *testing.T) {
		frame, err := buildControlFrame(findAction(t, "outputs-on"), testCode, controlOptions{Outputs: []int{1, 17}})
		require.NoError(t, err)

		want := []byte{0xFE, 0xFE, 0x88}
		want = append(want, code...)
		want = append(want, 0x01, 0x00, 0x01)
		want = append(want, make([]byte, 13)...)
		want = append(want, 0x38, 0x8E, 0xFE, 0x0D)
		assert.Equal(t, want, frame)
	})

	t.Run("open-door", func(t *testing.T) {
		frame, err := buildControlFrame(findAction(t, "open-door"), testCode, controlOptions{Doors: []int{3}})
		require.NoError(t, err)

		want := []byte{0xFE, 0xFE, 0x8A}
		want = append(want, code...)
		want = append(want, 0x04)
		want = append(want, make([]byte, 7)...)
		want = append(want, 0xEE, 0x76, 0xFE, 0x0D)
		assert.Equal(t, want, frame)
	})
}

func TestBuildControlFrame_Commands(t *testing.T) {
	tests := []struct {
		action string
		opts   controlOptions
		want   integra.Command
	}{
		{"arm", controlOptions{Partitions: []int{1}, Mode: 2}, integra.CmdArmInMode2},
		{"force-arm", controlOptions{Partitions: []int{1}, Mode: 3}, integra.CmdForceArmInMode3},
		{"disarm", controlOptions{Partitions: []int{32}}, integra.CmdDisarm},
		{"clear-alarm", controlOptions{Partitions: []int{5}}, integra.CmdClearAlarm},
		{"bypass", controlOptions{Zones: []int{7}}, integra.CmdZonesBypass},
		{"unbypass", controlOptions{Zones: []int{7}}, integra.CmdZonesUnbypass},
		{"isolate", controlOptions{Zones: []int{7}}, integra.CmdZonesIsolate},
		{"outputs-off", controlOptions{Outputs: []int{2}}, integra.CmdOutputsOff},
		{"outputs-switch", controlOptions{Outputs: []int{2}}, integra.CmdOutputsSwitch},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			frame, err := buildControlFrame(findAction(t, tt.action), testCode, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, byte(tt.want), frame[2])
		})
	}
}

func TestBuildControlFrame_Extended(t *testing.T) {
	a := findAction(t, "bypass")

	_, err := buildControlFrame(a, testCode, controlOptions{Zones: []int{200}})
	require.Error(t, err, "zone 200 needs --extended")

	short, err := buildControlFrame(a, testCode, controlOptions{Zones: []int{1}})
	require.NoError(t, err)
	long, err := buildControlFrame(a, testCode, controlOptions{Zones: []int{200}, Extended: true})
	require.NoError(t, err)

	// 128 extra flags pack into 16 more bytes, some of which may be stuffed
	assert.GreaterOrEqual(t, len(long)-len(short), 16)
}

func TestBuildControlFrame_Errors(t *testing.T) {
	t.Run("missing selection", func(t *testing.T) {
		_, err := buildControlFrame(findAction(t, "disarm"), testCode, controlOptions{Zones: []int{1}})
		require.EqualError(t, err, "disarm requires --partitions")
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := buildControlFrame(findAction(t, "arm"), testCode, controlOptions{Partitions: []int{1}, Mode: 4})
		require.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := buildControlFrame(findAction(t, "open-door"), testCode, controlOptions{Doors: []int{65}})
		require.EqualError(t, err, "number 65 out of range 1-64")
	})

	t.Run("bad code", func(t *testing.T) {
		_, err := buildControlFrame(findAction(t, "outputs-on"), "12", controlOptions{Outputs: []int{1}})
		var verr *integra.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, integra.ErrorKindLength, verr.Kind)
	})
}

func TestControlActions_Registered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range controlCmd.Commands() {
		names[c.Name()] = true
	}
	for _, a := range controlActions {
		assert.True(t, names[a.Name], "subcommand %s", a.Name)
	}
	assert.Len(t, controlActions, 11)
}

func TestControlOptions_Selection(t *testing.T) {
	o := controlOptions{Partitions: []int{1}, Zones: []int{2}, Outputs: []int{3}, Doors: []int{4}}
	assert.Equal(t, []int{1}, o.selection("partitions"))
	assert.Equal(t, []int{2}, o.selection("zones"))
	assert.Equal(t, []int{3}, o.selection("outputs"))
	assert.Equal(t, []int{4}, o.selection("doors"))
	assert.Nil(t, o.selection("other"))

	// Command byte followed by the packed code
	frame, err := buildControlFrame(findAction(t, "disarm"), testCode, o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(frame, []byte{0xFE, 0xFE, 0x84, 0x12, 0x34}))
}
