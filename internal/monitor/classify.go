// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package monitor keeps track of what a panel reported: traffic statistics,
// the latest decoded state per read command and which reads to issue after
// a change notification.
package monitor

import (
	"slices"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// RejectCause explains why a delimited frame produced no answer.
// The codec only reports "no answer"; the cause is re-derived here.
type RejectCause int

const (
	RejectNone RejectCause = iota
	RejectShort
	RejectChecksum
	RejectUnknownCommand
	RejectLength
)

func (c RejectCause) String() string {
	switch c {
	case RejectNone:
		return "none"
	case RejectShort:
		return "short"
	case RejectChecksum:
		return "checksum"
	case RejectUnknownCommand:
		return "unknown_command"
	case RejectLength:
		return "length"
	default:
		return "unknown"
	}
}

// Classify re-derives the reason integra.DecodePayload would reject payload.
func Classify(payload []byte) RejectCause {
	if len(payload) < 3 {
		return RejectShort
	}
	if !integra.ChecksumValid(payload) {
		return RejectChecksum
	}

	info, ok := integra.LookupCommand(integra.Command(payload[0]))
	if !ok || info.Answer == integra.AnswerNone {
		return RejectUnknownCommand
	}
	if !slices.Contains(info.AnswerLengths, len(payload)-3) {
		return RejectLength
	}
	return RejectNone
}
