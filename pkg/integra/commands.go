// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

// Command encoder functions return complete wire frames ready to be written
// to the transport. Read commands carry no data; control commands carry the
// packed prefix and user code followed by a bit-packed flags buffer.

// EncodeNoDataCommand encodes the command byte alone.
func EncodeNoDataCommand(c Command) []byte {
	e := NewEncoder()
	e.AddByte(byte(c))
	return e.Frame()
}

// EncodeSelectorCommand encodes the command byte followed by the 0x00
// selector, which asks the panel for the extended (256 element) answer.
func EncodeSelectorCommand(c Command) []byte {
	e := NewEncoder()
	e.AddByte(byte(c))
	e.AddByte(extendedSelector)
	return e.Frame()
}

// EncodeFlagsCommand encodes a flags-with-authorization command. The flag
// parameter name and accepted lengths come from the catalog entry of c.
func EncodeFlagsCommand(c Command, prefixAndUserCode string, flags []bool) ([]byte, error) {
	info, ok := catalog[c]
	if !ok || info.Encoding != EncodingFlags {
		return nil, &ValidationError{Kind: ErrorKindCommand, Param: "command", Got: int(c)}
	}

	code, err := PackPrefixAndUserCode(prefixAndUserCode)
	if err != nil {
		return nil, err
	}
	packed, err := PackFlags(flags, info.FlagParam, info.FlagCounts)
	if err != nil {
		return nil, err
	}

	e := NewEncoder()
	e.AddByte(byte(c))
	e.AddBytes(code[:])
	e.AddBytes(packed)
	return e.Frame(), nil
}

// EncodeReadCommand encodes any catalogued read command.
func EncodeReadCommand(c Command) ([]byte, error) {
	info, ok := catalog[c]
	if !ok || info.Encoding != EncodingNoData {
		return nil, &ValidationError{Kind: ErrorKindCommand, Param: "command", Got: int(c)}
	}
	return EncodeNoDataCommand(c), nil
}

// EncodeExtendedReadCommand encodes a read command with the extended-answer
// selector. Only zone and output reads accept it.
func EncodeExtendedReadCommand(c Command) ([]byte, error) {
	info, ok := catalog[c]
	if !ok || info.Encoding != EncodingNoData || !info.Extended {
		return nil, &ValidationError{Kind: ErrorKindCommand, Param: "command", Got: int(c)}
	}
	return EncodeSelectorCommand(c), nil
}

// EncodeZonesViolationCommand creates a ZONES_VIOLATION read (0x00).
func EncodeZonesViolationCommand() []byte {
	return EncodeNoDataCommand(CmdZonesViolation)
}

// EncodeZonesTamperCommand creates a ZONES_TAMPER read (0x01).
func EncodeZonesTamperCommand() []byte {
	return EncodeNoDataCommand(CmdZonesTamper)
}

// EncodeOutputsStateCommand creates an OUTPUTS_STATE read (0x17).
func EncodeOutputsStateCommand() []byte {
	return EncodeNoDataCommand(CmdOutputsState)
}

// EncodeNewDataCommand creates a NEW_DATA read (0x7F).
// The panel answers with a bit per command code telling which states
// changed since the previous read.
func EncodeNewDataCommand() []byte {
	return EncodeNoDataCommand(CmdNewData)
}

// EncodeOutputsOnCommand creates an OUTPUTS_ON command (0x88).
// outputs must hold 128 or 256 flags.
func EncodeOutputsOnCommand(prefixAndUserCode string, outputs []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdOutputsOn, prefixAndUserCode, outputs)
}

// EncodeOutputsOffCommand creates an OUTPUTS_OFF command (0x89).
func EncodeOutputsOffCommand(prefixAndUserCode string, outputs []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdOutputsOff, prefixAndUserCode, outputs)
}

// EncodeOutputsSwitchCommand creates an OUTPUTS_SWITCH command (0x91).
func EncodeOutputsSwitchCommand(prefixAndUserCode string, outputs []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdOutputsSwitch, prefixAndUserCode, outputs)
}

// EncodeArmCommand creates an ARM_IN_MODE_n command (0x80-0x83).
// Mode values: 0 (full), 1-3 (panel specific partial modes).
func EncodeArmCommand(mode int, prefixAndUserCode string, partitions []bool) ([]byte, error) {
	if mode < 0 || mode > 3 {
		return nil, &ValidationError{Kind: ErrorKindCommand, Param: "mode", Got: mode}
	}
	return EncodeFlagsCommand(CmdArmInMode0+Command(mode), prefixAndUserCode, partitions)
}

// EncodeForceArmCommand creates a FORCE_ARM_IN_MODE_n command (0xA0-0xA3).
func EncodeForceArmCommand(mode int, prefixAndUserCode string, partitions []bool) ([]byte, error) {
	if mode < 0 || mode > 3 {
		return nil, &ValidationError{Kind: ErrorKindCommand, Param: "mode", Got: mode}
	}
	return EncodeFlagsCommand(CmdForceArmInMode0+Command(mode), prefixAndUserCode, partitions)
}

// EncodeDisarmCommand creates a DISARM command (0x84).
func EncodeDisarmCommand(prefixAndUserCode string, partitions []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdDisarm, prefixAndUserCode, partitions)
}

// EncodeClearAlarmCommand creates a CLEAR_ALARM command (0x85).
func EncodeClearAlarmCommand(prefixAndUserCode string, partitions []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdClearAlarm, prefixAndUserCode, partitions)
}

// EncodeZonesBypassCommand creates a ZONES_BYPASS command (0x86).
func EncodeZonesBypassCommand(prefixAndUserCode string, zones []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdZonesBypass, prefixAndUserCode, zones)
}

// EncodeZonesUnbypassCommand creates a ZONES_UNBYPASS command (0x87).
func EncodeZonesUnbypassCommand(prefixAndUserCode string, zones []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdZonesUnbypass, prefixAndUserCode, zones)
}

// EncodeZonesIsolateCommand creates a ZONES_ISOLATE command (0x90).
func EncodeZonesIsolateCommand(prefixAndUserCode string, zones []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdZonesIsolate, prefixAndUserCode, zones)
}

// EncodeOpenDoorCommand creates an OPEN_DOOR command (0x8A).
func EncodeOpenDoorCommand(prefixAndUserCode string, doors []bool) ([]byte, error) {
	return EncodeFlagsCommand(CmdOpenDoor, prefixAndUserCode, doors)
}
