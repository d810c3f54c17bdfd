// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answerFrame encodes a panel answer the way the panel sends it
func answerFrame(c Command, data ...byte) []byte {
	return EncodeFrame(append([]byte{byte(c)}, data...))
}

// rawFrame wraps body (payload and checksum) in start and end bytes without
// computing a checksum.
func rawFrame(body []byte) []byte {
	frame := []byte{StartByte, StartByte}
	for _, b := range body {
		frame = stuffByte(frame, b)
	}
	return append(frame, StartByte, EndByte)
}

func TestDecodeMessage_ZonesViolation(t *testing.T) {
	for _, size := range []int{16, 32} {
		msg := DecodeMessage(answerFrame(CmdZonesViolation, bytes.Repeat([]byte{0xAA}, size)...))
		require.NotNil(t, msg)

		a, ok := msg.(*FlagArrayAnswer)
		require.True(t, ok, "got %T", msg)
		assert.Equal(t, CmdZonesViolation, a.Command())
		require.Equal(t, size*8, a.Len())
		for i, set := range a.Flags() {
			assert.Equalf(t, i%2 == 1, set, "flag %d", i)
		}
	}
}

func TestDecodeMessage_FlagArrayLengths(t *testing.T) {
	tests := []struct {
		name    string
		command Command
		size    int
		valid   bool
	}{
		{"zones short", CmdZonesTamper, 16, true},
		{"zones long", CmdZonesTamper, 32, true},
		{"zones 17 bytes", CmdZonesViolation, 17, false},
		{"zones empty", CmdZonesViolation, 0, false},
		{"outputs", CmdOutputsState, 16, true},
		{"outputs 4 bytes", CmdOutputsState, 4, false},
		{"partitions", CmdArmedPartitionsReally, 4, true},
		{"partitions 16 bytes", CmdArmedPartitionsReally, 16, false},
		{"doors", CmdDoorsOpened, 8, true},
		{"doors 4 bytes", CmdDoorsOpened, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := DecodeMessage(answerFrame(tt.command, make([]byte, tt.size)...))
			if !tt.valid {
				assert.Nil(t, msg)
				return
			}
			require.NotNil(t, msg)
			assert.Equal(t, tt.command, msg.Command())
			assert.Equal(t, tt.size*8, msg.(*FlagArrayAnswer).Len())
		})
	}
}

func TestDecodeMessage_NewData(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		violation bool
		tamper    bool
		outputs   bool
	}{
		{"zones violation", []byte{0x01, 0x00, 0x00, 0x00, 0x00}, true, false, false},
		{"zones tamper", []byte{0x02, 0x00, 0x00, 0x00, 0x00}, false, true, false},
		{"outputs state", []byte{0x00, 0x00, 0x80, 0x00, 0x00}, false, false, true},
		{"nothing", []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, false, false, false},
		{"seven bytes", []byte{0x03, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := DecodeMessage(answerFrame(CmdNewData, tt.data...))
			require.NotNil(t, msg)

			a, ok := msg.(*NewDataAnswer)
			require.True(t, ok, "got %T", msg)
			assert.Equal(t, CmdNewData, a.Command())
			assert.Equal(t, tt.violation, a.ZonesViolationChanged())
			assert.Equal(t, tt.tamper, a.ZonesTamperChanged())
			assert.Equal(t, tt.outputs, a.OutputsStateChanged())
		})
	}
}

func TestDecodeMessage_NewDataChangedCommands(t *testing.T) {
	// Bit 2 of the second byte is 0x0A; bit 1 (0x09) stays clear
	msg := DecodeMessage(answerFrame(CmdNewData, 0x01, 0x04, 0x80, 0x00, 0x00))
	require.NotNil(t, msg)

	a := msg.(*NewDataAnswer)
	assert.Equal(t, []Command{CmdZonesViolation, CmdArmedPartitionsReally, CmdOutputsState}, a.ChangedCommands())
	assert.True(t, a.Changed(CmdArmedPartitionsReally))
	assert.False(t, a.Changed(CmdArmedPartitionsSuppressed))
	assert.False(t, a.Changed(CmdDoorsOpened))

	// Each bit maps to the command with the same code
	msg = DecodeMessage(answerFrame(CmdNewData, 0x00, 0x02, 0x00, 0x00, 0x00))
	require.NotNil(t, msg)
	assert.Equal(t, []Command{CmdArmedPartitionsSuppressed}, msg.(*NewDataAnswer).ChangedCommands())
}

func TestDecodeMessage_NewDataLengths(t *testing.T) {
	assert.Nil(t, DecodeMessage(answerFrame(CmdNewData, 0x01, 0x00, 0x00, 0x00)))
	assert.Nil(t, DecodeMessage(answerFrame(CmdNewData, make([]byte, 8)...)))
}

func TestDecodeMessage_CommandResult(t *testing.T) {
	tests := []struct {
		code     byte
		message  string
		accepted bool
	}{
		{0xFF, "Command accepted", true},
		{0x00, "OK", true},
		{0x01, "Requesting user code not found", false},
		{0x11, "Can not arm, but can use force arm", false},
		{0x12, "Can not arm", false},
		{0xEE, "Unknown result code", false},
	}

	for _, tt := range tests {
		msg := DecodeMessage(answerFrame(CmdCommandResult, tt.code))
		require.NotNil(t, msg)

		a, ok := msg.(*ResultAnswer)
		require.True(t, ok, "got %T", msg)
		assert.Equal(t, CmdCommandResult, a.Command())
		assert.Equal(t, ResultCode(tt.code), a.Code())
		assert.Equal(t, tt.message, a.Message())
		assert.Equal(t, tt.accepted, a.Accepted())
	}

	assert.Nil(t, DecodeMessage(answerFrame(CmdCommandResult)))
	assert.Nil(t, DecodeMessage(answerFrame(CmdCommandResult, 0xFF, 0x00)))
}

func TestDecodeMessage_Unsupported(t *testing.T) {
	assert.Nil(t, DecodeMessage(answerFrame(CmdModuleVersion, 0x01, 0x00, 0x00, 0x00, 0x00)))
	assert.Nil(t, DecodeMessage(answerFrame(CmdTroublesPart1, make([]byte, 47)...)))
	assert.Nil(t, DecodeMessage(answerFrame(Command(0x60), make([]byte, 16)...)))
	assert.Nil(t, DecodeMessage(answerFrame(CmdDisarm, 0x00)))
}

func TestDecodeMessage_Incomplete(t *testing.T) {
	frame := answerFrame(CmdZonesViolation, make([]byte, 16)...)

	assert.Nil(t, DecodeMessage(nil))
	assert.Nil(t, DecodeMessage(frame[:len(frame)-1]))
	assert.Nil(t, DecodeMessage([]byte{0xAA, 0xBB, 0xCC}))
}

func TestDecodeMessage_TooShort(t *testing.T) {
	// command byte and a single trailing byte
	assert.Nil(t, DecodeMessage(rawFrame([]byte{0x00, 0xD7})))
	assert.Nil(t, DecodeMessage([]byte{0xFE, 0xFE, 0x00, 0xFE, 0x0D}))
}

func TestDecodeMessage_LeadingJunk(t *testing.T) {
	raw := append([]byte{0x00, 0x13, 0xFE, 0x42}, answerFrame(CmdCommandResult, 0xFF)...)

	msg := DecodeMessage(raw)
	require.NotNil(t, msg)
	assert.Equal(t, CmdCommandResult, msg.Command())
}

func TestDecodeMessage_FirstFrameOnly(t *testing.T) {
	raw := append(answerFrame(CmdCommandResult, 0x00), answerFrame(CmdCommandResult, 0xFF)...)

	msg := DecodeMessage(raw)
	require.NotNil(t, msg)
	assert.Equal(t, ResultOK, msg.(*ResultAnswer).Code())
}

func TestDecodeMessage_SingleBitCorruption(t *testing.T) {
	payloads := [][]byte{
		append([]byte{byte(CmdZonesViolation)}, bytes.Repeat([]byte{0xAA}, 16)...),
		{0x88, 0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}

	for _, payload := range payloads {
		crc := CalculateChecksum(payload)
		trailer := []byte{byte(crc >> 8), byte(crc)}

		for i := range payload {
			for bit := 0; bit < 8; bit++ {
				corrupted := append([]byte(nil), payload...)
				corrupted[i] ^= 1 << bit

				msg := DecodeMessage(rawFrame(append(corrupted, trailer...)))
				assert.Nilf(t, msg, "byte %d bit %d", i, bit)
			}
		}
	}
}

func TestDecodeMessage_ChecksumMismatch(t *testing.T) {
	payload := []byte{byte(CmdCommandResult), 0xFF}
	crc := CalculateChecksum(payload)

	assert.NotNil(t, DecodeMessage(rawFrame(append(payload, byte(crc>>8), byte(crc)))))
	assert.Nil(t, DecodeMessage(rawFrame(append(payload, byte(crc>>8), byte(crc)+1))))
	assert.Nil(t, DecodeMessage(rawFrame(append(payload, byte(crc), byte(crc>>8)))))
}

func TestDecodePayload(t *testing.T) {
	payload := []byte{byte(CmdCommandResult), 0xFF}
	crc := CalculateChecksum(payload)

	msg := DecodePayload(append(payload, byte(crc>>8), byte(crc)))
	require.NotNil(t, msg)
	assert.True(t, msg.(*ResultAnswer).Accepted())

	assert.Nil(t, DecodePayload(nil))
	assert.Nil(t, DecodePayload([]byte{0xEF, 0xFF}))
}

func TestChecksumValid(t *testing.T) {
	assert.False(t, ChecksumValid(nil))
	assert.False(t, ChecksumValid([]byte{0x00, 0xD7}))
	assert.True(t, ChecksumValid([]byte{0x00, 0xD7, 0xE2}))
	assert.False(t, ChecksumValid([]byte{0x00, 0xE2, 0xD7}))
}

func TestFlagArrayAnswer_Accessors(t *testing.T) {
	msg := DecodeMessage(answerFrame(CmdArmedPartitionsReally, 0x05, 0x00, 0x00, 0x80))
	require.NotNil(t, msg)

	a := msg.(*FlagArrayAnswer)
	assert.Equal(t, []int{1, 3, 32}, a.ActiveNumbers())
	assert.True(t, a.Flag(0))
	assert.False(t, a.Flag(1))
	assert.False(t, a.Flag(-1))
	assert.False(t, a.Flag(32))

	flags := a.Flags()
	flags[1] = true
	assert.False(t, a.Flag(1), "Flags must return a copy")
}
