// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import "slices"

// Answer is a decoded inbound message. The concrete type is one of
// *FlagArrayAnswer, *NewDataAnswer or *ResultAnswer.
type Answer interface {
	Command() Command
	answer()
}

// FlagArrayAnswer is a bit vector answer (zones, partitions, outputs, doors).
// Flag i is bit i%8 of data byte i/8. The flags never change after decoding.
type FlagArrayAnswer struct {
	command Command
	flags   []bool
}

func decodeFlagArray(c Command, data []byte, accepted []int) (*FlagArrayAnswer, bool) {
	if !slices.Contains(accepted, len(data)) {
		return nil, false
	}
	return &FlagArrayAnswer{command: c, flags: UnpackFlags(data)}, true
}

func (*FlagArrayAnswer) answer() {}

// Command returns the command code the answer was received for
func (a *FlagArrayAnswer) Command() Command {
	return a.command
}

// Flags returns a copy of the decoded flags
func (a *FlagArrayAnswer) Flags() []bool {
	return slices.Clone(a.flags)
}

// Flag returns flag i, false when i is out of range
func (a *FlagArrayAnswer) Flag(i int) bool {
	if i < 0 || i >= len(a.flags) {
		return false
	}
	return a.flags[i]
}

// Len returns the number of flags (8 per data byte)
func (a *FlagArrayAnswer) Len() int {
	return len(a.flags)
}

// ActiveNumbers returns the 1-based device numbers of all set flags, the
// numbering the panel uses for zones, outputs, partitions and doors.
func (a *FlagArrayAnswer) ActiveNumbers() []int {
	var numbers []int
	for i, set := range a.flags {
		if set {
			numbers = append(numbers, i+1)
		}
	}
	return numbers
}

// NewDataAnswer is the change notification answer to NEW_DATA. Bit n is set
// when the state read by command n changed since the previous poll.
type NewDataAnswer struct {
	FlagArrayAnswer
}

// Changed reports whether the state behind read command c changed.
func (a *NewDataAnswer) Changed(c Command) bool {
	return a.Flag(int(c))
}

// ZonesViolationChanged reports a change in ZONES_VIOLATION.
func (a *NewDataAnswer) ZonesViolationChanged() bool {
	return a.Changed(CmdZonesViolation)
}

// ZonesTamperChanged reports a change in ZONES_TAMPER.
func (a *NewDataAnswer) ZonesTamperChanged() bool {
	return a.Changed(CmdZonesTamper)
}

// OutputsStateChanged reports a change in OUTPUTS_STATE.
func (a *NewDataAnswer) OutputsStateChanged() bool {
	return a.Changed(CmdOutputsState)
}

// ChangedCommands lists the read commands flagged as changed, in code order.
func (a *NewDataAnswer) ChangedCommands() []Command {
	var changed []Command
	for i, set := range a.flags {
		if set {
			changed = append(changed, Command(i))
		}
	}
	return changed
}

// ResultAnswer is the COMMAND_RESULT answer to a previously sent command.
type ResultAnswer struct {
	code ResultCode
}

func decodeResult(data []byte) (*ResultAnswer, bool) {
	if len(data) != 1 {
		return nil, false
	}
	return &ResultAnswer{code: ResultCode(data[0])}, true
}

func (*ResultAnswer) answer() {}

// Command returns CmdCommandResult
func (a *ResultAnswer) Command() Command {
	return CmdCommandResult
}

// Code returns the raw result code
func (a *ResultAnswer) Code() ResultCode {
	return a.code
}

// Message returns the result description, UnknownResultMessage for codes
// outside the table.
func (a *ResultAnswer) Message() string {
	return a.code.Message()
}

// Accepted reports whether the panel took the command (OK or accepted).
func (a *ResultAnswer) Accepted() bool {
	return a.code == ResultOK || a.code == ResultCommandAccepted
}

// decodeAnswer selects the answer variant for c and decodes data into it.
func decodeAnswer(c Command, data []byte) Answer {
	info, ok := catalog[c]
	if !ok {
		return nil
	}

	switch info.Answer {
	case AnswerFlagArray:
		if a, ok := decodeFlagArray(c, data, info.AnswerLengths); ok {
			return a
		}
	case AnswerNewData:
		if a, ok := decodeFlagArray(c, data, info.AnswerLengths); ok {
			return &NewDataAnswer{FlagArrayAnswer: *a}
		}
	case AnswerResult:
		if a, ok := decodeResult(data); ok {
			return a
		}
	}
	return nil
}
