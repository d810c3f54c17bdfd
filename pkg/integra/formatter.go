// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"fmt"
	"strings"
)

// FormatAnswer formats an answer into a human-readable string
func FormatAnswer(a Answer) string {
	if a == nil {
		return "(no message)\n"
	}

	result := fmt.Sprintf("%s (0x%02X)\n", FormatCommand(a.Command()), uint8(a.Command()))

	switch v := a.(type) {
	case *ResultAnswer:
		result += fmt.Sprintf("  Result: %s (0x%02X)\n", v.Message(), uint8(v.Code()))

	case *NewDataAnswer:
		changed := v.ChangedCommands()
		if len(changed) == 0 {
			return result + "  Changed: none\n"
		}
		names := make([]string, len(changed))
		for i, c := range changed {
			names[i] = FormatCommand(c)
		}
		result += fmt.Sprintf("  Changed: %s\n", strings.Join(names, ", "))

	case *FlagArrayAnswer:
		result += fmt.Sprintf("  %s (%d total): %s\n", flagNoun(v.Command()), v.Len(), FormatNumbers(v.ActiveNumbers()))
	}

	return result
}

// FormatCommand returns the catalog name for a command code
func FormatCommand(c Command) string {
	if info, ok := catalog[c]; ok {
		return info.Name
	}
	return "UNKNOWN"
}

// FormatHex renders data as a hex dump, 16 bytes per line
func FormatHex(data []byte) string {
	var b strings.Builder
	for i, v := range data {
		if i > 0 && i%16 == 0 {
			b.WriteString("\n")
		} else if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// flagNoun names what the flags of a read command count.
func flagNoun(c Command) string {
	switch {
	case c == CmdOutputsState:
		return "Outputs"
	case c == CmdDoorsOpened || c == CmdDoorsOpenedLong:
		return "Doors"
	case c >= CmdArmedPartitionsSuppressed && c <= CmdPartitionsFireAlarmMemory,
		c == CmdPartitionsWithViolatedZones, c == CmdPartitionsWithVerifiedAlarms,
		c == CmdPartitionsArmedInMode1, c == CmdPartitionsWithWarningAlarms:
		return "Partitions"
	default:
		return "Zones"
	}
}

// FormatNumbers compresses sorted 1-based numbers into ranges: 1-3, 7, 9-10
func FormatNumbers(numbers []int) string {
	if len(numbers) == 0 {
		return "none"
	}

	var parts []string
	start, prev := numbers[0], numbers[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, n := range numbers[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()

	return strings.Join(parts, ", ")
}
