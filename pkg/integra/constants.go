// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package integra provides a Go implementation of the INTEGRA integration protocol
// used by security alarm panels over RS-232 and ETHM-1 style TCP modules.
//
// The package covers frame encoding/decoding (byte stuffing and the 16-bit
// running checksum), a closed catalog of command codes, command encoders and
// answer decoders. Everything here is pure in-memory transformation; the
// transport is supplied by the caller.
package integra

// Protocol framing bytes
const (
	StartByte        = 0xFE
	EndByte          = 0x0D
	EscapedStartByte = 0xF0
)

// Checksum seed
const checksumInitial = 0x147A

// Payload sizes
const (
	PrefixAndUserCodeLength = 16 // characters
	PrefixAndUserCodeSize   = 8  // packed bytes
	minPayloadSize          = 3  // command + 2 checksum bytes
	extendedSelector        = 0x00
)

// Command is a one-byte command/answer code.
type Command uint8

// Read commands - zones 0x00-0x08
const (
	CmdZonesViolation            Command = 0x00
	CmdZonesTamper               Command = 0x01
	CmdZonesAlarm                Command = 0x02
	CmdZonesTamperAlarm          Command = 0x03
	CmdZonesAlarmMemory          Command = 0x04
	CmdZonesTamperAlarmMemory    Command = 0x05
	CmdZonesBypassStatus         Command = 0x06
	CmdZonesNoViolationTrouble   Command = 0x07
	CmdZonesLongViolationTrouble Command = 0x08
)

// Read commands - partitions 0x09-0x16
const (
	CmdArmedPartitionsSuppressed    Command = 0x09
	CmdArmedPartitionsReally        Command = 0x0A
	CmdPartitionsArmedInMode2       Command = 0x0B
	CmdPartitionsArmedInMode3       Command = 0x0C
	CmdPartitionsWith1stCodeEntered Command = 0x0D
	CmdPartitionsEntryTime          Command = 0x0E
	CmdPartitionsExitTimeOver10s    Command = 0x0F
	CmdPartitionsExitTimeUnder10s   Command = 0x10
	CmdPartitionsTemporaryBlocked   Command = 0x11
	CmdPartitionsBlockedForGuard    Command = 0x12
	CmdPartitionsAlarm              Command = 0x13
	CmdPartitionsFireAlarm          Command = 0x14
	CmdPartitionsAlarmMemory        Command = 0x15
	CmdPartitionsFireAlarmMemory    Command = 0x16
)

// Read commands - outputs, doors, status 0x17-0x31
const (
	CmdOutputsState                 Command = 0x17
	CmdDoorsOpened                  Command = 0x18
	CmdDoorsOpenedLong              Command = 0x19
	CmdRTCAndBasicStatus            Command = 0x1A
	CmdTroublesPart1                Command = 0x1B
	CmdTroublesPart2                Command = 0x1C
	CmdTroublesPart3                Command = 0x1D
	CmdTroublesPart4                Command = 0x1E
	CmdTroublesPart5                Command = 0x1F
	CmdTroublesMemoryPart1          Command = 0x20
	CmdTroublesMemoryPart2          Command = 0x21
	CmdTroublesMemoryPart3          Command = 0x22
	CmdTroublesMemoryPart4          Command = 0x23
	CmdTroublesMemoryPart5          Command = 0x24
	CmdPartitionsWithViolatedZones  Command = 0x25
	CmdZonesIsolateState            Command = 0x26
	CmdPartitionsWithVerifiedAlarms Command = 0x27
	CmdZonesMasked                  Command = 0x28
	CmdZonesMaskedMemory            Command = 0x29
	CmdPartitionsArmedInMode1       Command = 0x2A
	CmdPartitionsWithWarningAlarms  Command = 0x2B
	CmdTroublesPart6                Command = 0x2C
	CmdTroublesPart7                Command = 0x2D
	CmdTroublesMemoryPart6          Command = 0x2E
	CmdTroublesMemoryPart7          Command = 0x2F
	CmdTroublesPart8                Command = 0x30
	CmdTroublesMemoryPart8          Command = 0x31
)

// Read commands - device information 0x7C-0x7F
const (
	CmdIntegraVersion  Command = 0x7C
	CmdZoneTemperature Command = 0x7D
	CmdModuleVersion   Command = 0x7E
	CmdNewData         Command = 0x7F
)

// Control commands 0x80-0xA3
const (
	CmdArmInMode0         Command = 0x80
	CmdArmInMode1         Command = 0x81
	CmdArmInMode2         Command = 0x82
	CmdArmInMode3         Command = 0x83
	CmdDisarm             Command = 0x84
	CmdClearAlarm         Command = 0x85
	CmdZonesBypass        Command = 0x86
	CmdZonesUnbypass      Command = 0x87
	CmdOutputsOn          Command = 0x88
	CmdOutputsOff         Command = 0x89
	CmdOpenDoor           Command = 0x8A
	CmdClearTroubleMemory Command = 0x8B
	CmdReadEvent          Command = 0x8C
	CmdEnter1stCode       Command = 0x8D
	CmdSetRTCClock        Command = 0x8E
	CmdGetEventText       Command = 0x8F
	CmdZonesIsolate       Command = 0x90
	CmdOutputsSwitch      Command = 0x91
	CmdForceArmInMode0    Command = 0xA0
	CmdForceArmInMode1    Command = 0xA1
	CmdForceArmInMode2    Command = 0xA2
	CmdForceArmInMode3    Command = 0xA3
)

// Answers
const (
	CmdCommandResult Command = 0xEF
)

// Flag counts of the flags-with-authorization command families
const (
	PartitionCount      = 32
	ZoneCount           = 128
	ZoneCountExtended   = 256
	OutputCount         = 128
	OutputCountExtended = 256
	DoorCount           = 64
)

// ResultCode is the single-byte outcome carried by a COMMAND_RESULT answer.
type ResultCode uint8

// Result code values
const (
	ResultOK                  ResultCode = 0x00
	ResultUserCodeNotFound    ResultCode = 0x01
	ResultNoAccess            ResultCode = 0x02
	ResultUserDoesNotExist    ResultCode = 0x03
	ResultUserAlreadyExists   ResultCode = 0x04
	ResultWrongCode           ResultCode = 0x05
	ResultTelephoneCodeExists ResultCode = 0x06
	ResultChangedCodeSame     ResultCode = 0x07
	ResultOtherError          ResultCode = 0x08
	ResultCanForceArm         ResultCode = 0x11
	ResultCannotArm           ResultCode = 0x12
	ResultCommandAccepted     ResultCode = 0xFF
)

// UnknownResultMessage is reported for result codes missing from the table.
const UnknownResultMessage = "Unknown result code"

var resultMessages = map[ResultCode]string{
	ResultOK:                  "OK",
	ResultUserCodeNotFound:    "Requesting user code not found",
	ResultNoAccess:            "No access",
	ResultUserDoesNotExist:    "Selected user does not exist",
	ResultUserAlreadyExists:   "Selected user already exists",
	ResultWrongCode:           "Wrong code or code already exists",
	ResultTelephoneCodeExists: "Telephone code already exists",
	ResultChangedCodeSame:     "Changed code is the same",
	ResultOtherError:          "Other error",
	ResultCanForceArm:         "Can not arm, but can use force arm",
	ResultCannotArm:           "Can not arm",
	ResultCommandAccepted:     "Command accepted",
}

// Message returns the human-readable meaning of the result code.
func (r ResultCode) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return UnknownResultMessage
}
