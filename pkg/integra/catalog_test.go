// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_UniqueNames(t *testing.T) {
	seen := make(map[string]Command)
	for c, info := range catalog {
		require.NotEmptyf(t, info.Name, "command 0x%02X", uint8(c))
		if other, ok := seen[info.Name]; ok {
			t.Errorf("name %s used by 0x%02X and 0x%02X", info.Name, uint8(c), uint8(other))
		}
		seen[info.Name] = c
	}
}

func TestCatalog_Shapes(t *testing.T) {
	for c, info := range catalog {
		switch info.Encoding {
		case EncodingFlags:
			assert.NotEmptyf(t, info.FlagParam, "%s", info.Name)
			assert.NotEmptyf(t, info.FlagCounts, "%s", info.Name)
			assert.GreaterOrEqualf(t, uint8(c), uint8(0x80), "%s is a control command", info.Name)
		case EncodingNoData:
			assert.Lessf(t, uint8(c), uint8(0x80), "%s is a read command", info.Name)
		}
		if info.Answer != AnswerNone {
			assert.NotEmptyf(t, info.AnswerLengths, "%s", info.Name)
		}
		if info.Extended {
			assert.Equalf(t, zoneAnswerLengths, info.AnswerLengths, "%s", info.Name)
		}
	}
}

func TestLookupCommand(t *testing.T) {
	info, ok := LookupCommand(CmdOutputsOn)
	require.True(t, ok)
	assert.Equal(t, "OUTPUTS_ON", info.Name)
	assert.Equal(t, EncodingFlags, info.Encoding)
	assert.Equal(t, "outputs", info.FlagParam)
	assert.Equal(t, []int{128, 256}, info.FlagCounts)

	info.FlagCounts[0] = 1
	again, _ := LookupCommand(CmdOutputsOn)
	assert.Equal(t, []int{128, 256}, again.FlagCounts, "lookup must not expose catalog slices")

	_, ok = LookupCommand(Command(0x60))
	assert.False(t, ok)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
		ok   bool
	}{
		{"ZONES_VIOLATION", CmdZonesViolation, true},
		{"zones-violation", CmdZonesViolation, true},
		{" new_data ", CmdNewData, true},
		{"Force-Arm-In-Mode-2", CmdForceArmInMode2, true},
		{"COMMAND_RESULT", CmdCommandResult, true},
		{"ZONES", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := ParseCommand(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, c)
			}
		})
	}
}

func TestCommands_Sorted(t *testing.T) {
	list := Commands()
	require.Len(t, list, len(catalog))
	assert.Equal(t, CmdZonesViolation, list[0])
	assert.Equal(t, CmdCommandResult, list[len(list)-1])
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1], list[i])
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "ZONES_TAMPER", CmdZonesTamper.String())
	assert.Equal(t, "PARTITIONS_BLOCKED_FOR_GUARD_ROUND", CmdPartitionsBlockedForGuard.String())
	assert.Equal(t, "UNKNOWN(0x60)", Command(0x60).String())
}

func TestResultCode_Message(t *testing.T) {
	assert.Equal(t, "Command accepted", ResultCommandAccepted.Message())
	assert.Equal(t, "Other error", ResultOtherError.Message())
	assert.Equal(t, UnknownResultMessage, ResultCode(0xEE).Message())
	assert.Equal(t, UnknownResultMessage, ResultCode(0x09).Message())
}
