// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package monitor

import "github.com/majektom/satel-integra-integration-protocol/pkg/integra"

// DefaultReads is read once at start to fill the state table before polling
// for change notifications.
var DefaultReads = []integra.Command{
	integra.CmdZonesViolation,
	integra.CmdZonesTamper,
	integra.CmdZonesAlarm,
	integra.CmdZonesBypassStatus,
	integra.CmdArmedPartitionsReally,
	integra.CmdPartitionsAlarm,
	integra.CmdPartitionsEntryTime,
	integra.CmdPartitionsExitTimeOver10s,
	integra.CmdOutputsState,
	integra.CmdDoorsOpened,
}

// PollPlan returns the read commands to issue after a NEW_DATA answer: every
// flagged command whose answer this package can decode, in code order.
func PollPlan(a *integra.NewDataAnswer) []integra.Command {
	if a == nil {
		return nil
	}

	var plan []integra.Command
	for _, c := range a.ChangedCommands() {
		info, ok := integra.LookupCommand(c)
		if ok && info.Answer == integra.AnswerFlagArray {
			plan = append(plan, c)
		}
	}
	return plan
}
