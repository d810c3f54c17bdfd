// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"fmt"
	"slices"
	"strings"
)

// EncodingShape is how a command is laid out on the wire.
type EncodingShape int

const (
	// EncodingNone marks commands without an encoder in this package.
	EncodingNone EncodingShape = iota
	// EncodingNoData is the command byte alone, optionally followed by the
	// extended-answer selector.
	EncodingNoData
	// EncodingFlags is the command byte, the packed prefix and user code and a
	// bit-packed flags buffer.
	EncodingFlags
)

// AnswerShape is how an answer payload is decoded.
type AnswerShape int

const (
	AnswerNone AnswerShape = iota
	AnswerFlagArray
	AnswerNewData
	AnswerResult
)

// CommandInfo describes one catalog entry.
type CommandInfo struct {
	Name          string
	Encoding      EncodingShape
	Extended      bool // a 0x00 selector requests the long answer
	Answer        AnswerShape
	AnswerLengths []int // accepted answer data lengths in bytes
	FlagParam     string
	FlagCounts    []int // accepted flag counts for EncodingFlags
}

var (
	zoneAnswerLengths      = []int{16, 32}
	partitionAnswerLengths = []int{4}
	doorAnswerLengths      = []int{8}
	newDataAnswerLengths   = []int{5, 6, 7}
	resultAnswerLengths    = []int{1}

	zoneFlagCounts      = []int{ZoneCount, ZoneCountExtended}
	outputFlagCounts    = []int{OutputCount, OutputCountExtended}
	partitionFlagCounts = []int{PartitionCount}
	doorFlagCounts      = []int{DoorCount}
)

func zoneRead(name string) CommandInfo {
	return CommandInfo{Name: name, Encoding: EncodingNoData, Extended: true, Answer: AnswerFlagArray, AnswerLengths: zoneAnswerLengths}
}

func partitionRead(name string) CommandInfo {
	return CommandInfo{Name: name, Encoding: EncodingNoData, Answer: AnswerFlagArray, AnswerLengths: partitionAnswerLengths}
}

func doorRead(name string) CommandInfo {
	return CommandInfo{Name: name, Encoding: EncodingNoData, Answer: AnswerFlagArray, AnswerLengths: doorAnswerLengths}
}

// opaqueRead is a read command whose answer layout is not decoded here.
func opaqueRead(name string) CommandInfo {
	return CommandInfo{Name: name, Encoding: EncodingNoData}
}

func flagsControl(name, param string, counts []int) CommandInfo {
	return CommandInfo{Name: name, Encoding: EncodingFlags, FlagParam: param, FlagCounts: counts}
}

// catalog is the closed command table. It is never modified after init.
var catalog = map[Command]CommandInfo{
	CmdZonesViolation:            zoneRead("ZONES_VIOLATION"),
	CmdZonesTamper:               zoneRead("ZONES_TAMPER"),
	CmdZonesAlarm:                zoneRead("ZONES_ALARM"),
	CmdZonesTamperAlarm:          zoneRead("ZONES_TAMPER_ALARM"),
	CmdZonesAlarmMemory:          zoneRead("ZONES_ALARM_MEMORY"),
	CmdZonesTamperAlarmMemory:    zoneRead("ZONES_TAMPER_ALARM_MEMORY"),
	CmdZonesBypassStatus:         zoneRead("ZONES_BYPASS_STATUS"),
	CmdZonesNoViolationTrouble:   zoneRead("ZONES_NO_VIOLATION_TROUBLE"),
	CmdZonesLongViolationTrouble: zoneRead("ZONES_LONG_VIOLATION_TROUBLE"),

	CmdArmedPartitionsSuppressed:    partitionRead("ARMED_PARTITIONS_SUPPRESSED"),
	CmdArmedPartitionsReally:        partitionRead("ARMED_PARTITIONS_REALLY"),
	CmdPartitionsArmedInMode2:       partitionRead("PARTITIONS_ARMED_IN_MODE_2"),
	CmdPartitionsArmedInMode3:       partitionRead("PARTITIONS_ARMED_IN_MODE_3"),
	CmdPartitionsWith1stCodeEntered: partitionRead("PARTITIONS_WITH_1ST_CODE_ENTERED"),
	CmdPartitionsEntryTime:          partitionRead("PARTITIONS_ENTRY_TIME"),
	CmdPartitionsExitTimeOver10s:    partitionRead("PARTITIONS_EXIT_TIME_OVER_10S"),
	CmdPartitionsExitTimeUnder10s:   partitionRead("PARTITIONS_EXIT_TIME_UNDER_10S"),
	CmdPartitionsTemporaryBlocked:   partitionRead("PARTITIONS_TEMPORARY_BLOCKED"),
	CmdPartitionsBlockedForGuard:    partitionRead("PARTITIONS_BLOCKED_FOR_GUARD_ROUND"),
	CmdPartitionsAlarm:              partitionRead("PARTITIONS_ALARM"),
	CmdPartitionsFireAlarm:          partitionRead("PARTITIONS_FIRE_ALARM"),
	CmdPartitionsAlarmMemory:        partitionRead("PARTITIONS_ALARM_MEMORY"),
	CmdPartitionsFireAlarmMemory:    partitionRead("PARTITIONS_FIRE_ALARM_MEMORY"),

	CmdOutputsState:                 zoneRead("OUTPUTS_STATE"),
	CmdDoorsOpened:                  doorRead("DOORS_OPENED"),
	CmdDoorsOpenedLong:              doorRead("DOORS_OPENED_LONG"),
	CmdRTCAndBasicStatus:            opaqueRead("RTC_AND_BASIC_STATUS"),
	CmdTroublesPart1:                opaqueRead("TROUBLES_PART_1"),
	CmdTroublesPart2:                opaqueRead("TROUBLES_PART_2"),
	CmdTroublesPart3:                opaqueRead("TROUBLES_PART_3"),
	CmdTroublesPart4:                opaqueRead("TROUBLES_PART_4"),
	CmdTroublesPart5:                opaqueRead("TROUBLES_PART_5"),
	CmdTroublesMemoryPart1:          opaqueRead("TROUBLES_MEMORY_PART_1"),
	CmdTroublesMemoryPart2:          opaqueRead("TROUBLES_MEMORY_PART_2"),
	CmdTroublesMemoryPart3:          opaqueRead("TROUBLES_MEMORY_PART_3"),
	CmdTroublesMemoryPart4:          opaqueRead("TROUBLES_MEMORY_PART_4"),
	CmdTroublesMemoryPart5:          opaqueRead("TROUBLES_MEMORY_PART_5"),
	CmdPartitionsWithViolatedZones:  partitionRead("PARTITIONS_WITH_VIOLATED_ZONES"),
	CmdZonesIsolateState:            zoneRead("ZONES_ISOLATE_STATE"),
	CmdPartitionsWithVerifiedAlarms: partitionRead("PARTITIONS_WITH_VERIFIED_ALARMS"),
	CmdZonesMasked:                  zoneRead("ZONES_MASKED"),
	CmdZonesMaskedMemory:            zoneRead("ZONES_MASKED_MEMORY"),
	CmdPartitionsArmedInMode1:       partitionRead("PARTITIONS_ARMED_IN_MODE_1"),
	CmdPartitionsWithWarningAlarms:  partitionRead("PARTITIONS_WITH_WARNING_ALARMS"),
	CmdTroublesPart6:                opaqueRead("TROUBLES_PART_6"),
	CmdTroublesPart7:                opaqueRead("TROUBLES_PART_7"),
	CmdTroublesMemoryPart6:          opaqueRead("TROUBLES_MEMORY_PART_6"),
	CmdTroublesMemoryPart7:          opaqueRead("TROUBLES_MEMORY_PART_7"),
	CmdTroublesPart8:                opaqueRead("TROUBLES_PART_8"),
	CmdTroublesMemoryPart8:          opaqueRead("TROUBLES_MEMORY_PART_8"),

	CmdIntegraVersion:  opaqueRead("INTEGRA_VERSION"),
	CmdZoneTemperature: {Name: "ZONE_TEMPERATURE"},
	CmdModuleVersion:   opaqueRead("MODULE_VERSION"),
	CmdNewData: {
		Name:          "NEW_DATA",
		Encoding:      EncodingNoData,
		Answer:        AnswerNewData,
		AnswerLengths: newDataAnswerLengths,
	},

	CmdArmInMode0:         flagsControl("ARM_IN_MODE_0", "partitions", partitionFlagCounts),
	CmdArmInMode1:         flagsControl("ARM_IN_MODE_1", "partitions", partitionFlagCounts),
	CmdArmInMode2:         flagsControl("ARM_IN_MODE_2", "partitions", partitionFlagCounts),
	CmdArmInMode3:         flagsControl("ARM_IN_MODE_3", "partitions", partitionFlagCounts),
	CmdDisarm:             flagsControl("DISARM", "partitions", partitionFlagCounts),
	CmdClearAlarm:         flagsControl("CLEAR_ALARM", "partitions", partitionFlagCounts),
	CmdZonesBypass:        flagsControl("ZONES_BYPASS", "zones", zoneFlagCounts),
	CmdZonesUnbypass:      flagsControl("ZONES_UNBYPASS", "zones", zoneFlagCounts),
	CmdOutputsOn:          flagsControl("OUTPUTS_ON", "outputs", outputFlagCounts),
	CmdOutputsOff:         flagsControl("OUTPUTS_OFF", "outputs", outputFlagCounts),
	CmdOpenDoor:           flagsControl("OPEN_DOOR", "doors", doorFlagCounts),
	CmdClearTroubleMemory: {Name: "CLEAR_TROUBLE_MEMORY"},
	CmdReadEvent:          {Name: "READ_EVENT"},
	CmdEnter1stCode:       {Name: "ENTER_1ST_CODE"},
	CmdSetRTCClock:        {Name: "SET_RTC_CLOCK"},
	CmdGetEventText:       {Name: "GET_EVENT_TEXT"},
	CmdZonesIsolate:       flagsControl("ZONES_ISOLATE", "zones", zoneFlagCounts),
	CmdOutputsSwitch:      flagsControl("OUTPUTS_SWITCH", "outputs", outputFlagCounts),
	CmdForceArmInMode0:    flagsControl("FORCE_ARM_IN_MODE_0", "partitions", partitionFlagCounts),
	CmdForceArmInMode1:    flagsControl("FORCE_ARM_IN_MODE_1", "partitions", partitionFlagCounts),
	CmdForceArmInMode2:    flagsControl("FORCE_ARM_IN_MODE_2", "partitions", partitionFlagCounts),
	CmdForceArmInMode3:    flagsControl("FORCE_ARM_IN_MODE_3", "partitions", partitionFlagCounts),

	CmdCommandResult: {
		Name:          "COMMAND_RESULT",
		Answer:        AnswerResult,
		AnswerLengths: resultAnswerLengths,
	},
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(catalog))
	for c, info := range catalog {
		m[info.Name] = c
	}
	return m
}()

// LookupCommand returns the catalog entry for c.
func LookupCommand(c Command) (CommandInfo, bool) {
	info, ok := catalog[c]
	if !ok {
		return CommandInfo{}, false
	}
	info.AnswerLengths = slices.Clone(info.AnswerLengths)
	info.FlagCounts = slices.Clone(info.FlagCounts)
	return info, true
}

// ParseCommand resolves a catalog name. Matching ignores case and treats
// '-' and '_' alike, so "zones-violation" finds ZONES_VIOLATION.
func ParseCommand(name string) (Command, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	c, ok := commandsByName[key]
	return c, ok
}

// Commands returns every catalogued command in ascending code order.
func Commands() []Command {
	list := make([]Command, 0, len(catalog))
	for c := range catalog {
		list = append(list, c)
	}
	slices.Sort(list)
	return list
}

// String returns the catalog name, or a hex form for unknown codes.
func (c Command) String() string {
	if info, ok := catalog[c]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(c))
}
