// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package monitor

import (
	"fmt"
	"slices"
	"time"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames      uint64
	DecodedAnswers   uint64
	ShortFrames      uint64
	ChecksumErrors   uint64
	UnknownCommands  uint64
	LengthMismatches uint64
	Timeouts         uint64
	Results          map[integra.ResultCode]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec

	now func() time.Time
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	s := &Statistics{now: time.Now}
	s.Reset()
	return s
}

// Update counts one delimited frame. answer is the decode result of payload,
// nil when it was rejected.
func (s *Statistics) Update(payload []byte, answer integra.Answer) {
	s.TotalFrames++
	s.LastUpdateTime = s.now()

	if answer != nil {
		s.DecodedAnswers++
		if r, ok := answer.(*integra.ResultAnswer); ok {
			s.Results[r.Code()]++
		}
		return
	}

	switch Classify(payload) {
	case RejectShort:
		s.ShortFrames++
	case RejectChecksum:
		s.ChecksumErrors++
	case RejectUnknownCommand:
		s.UnknownCommands++
	case RejectLength:
		s.LengthMismatches++
	}
}

// Timeout counts a request that got no answer
func (s *Statistics) Timeout() {
	s.Timeouts++
}

// Rejected returns the number of frames that did not decode
func (s *Statistics) Rejected() uint64 {
	return s.ShortFrames + s.ChecksumErrors + s.UnknownCommands + s.LengthMismatches
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := s.now().Sub(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.Rejected()+s.Timeouts) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalFrames == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := s.now().Sub(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Decoded:         %8d (%.1f%%)\n", s.DecodedAnswers, percent(s.DecodedAnswers))

	if s.ShortFrames > 0 {
		result += fmt.Sprintf("Short Frames:    %8d (%.1f%%)\n", s.ShortFrames, percent(s.ShortFrames))
	}
	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, percent(s.ChecksumErrors))
	}
	if s.UnknownCommands > 0 {
		result += fmt.Sprintf("Unknown Command: %8d (%.1f%%)\n", s.UnknownCommands, percent(s.UnknownCommands))
	}
	if s.LengthMismatches > 0 {
		result += fmt.Sprintf("Length Mismatch: %8d (%.1f%%)\n", s.LengthMismatches, percent(s.LengthMismatches))
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}

	if len(s.Results) > 0 {
		result += "Results:\n"
		codes := make([]integra.ResultCode, 0, len(s.Results))
		for code := range s.Results {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			result += fmt.Sprintf("  0x%02X %-34s %5d\n", uint8(code), code.Message(), s.Results[code])
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := s.now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalFrames = 0
	s.DecodedAnswers = 0
	s.ShortFrames = 0
	s.ChecksumErrors = 0
	s.UnknownCommands = 0
	s.LengthMismatches = 0
	s.Timeouts = 0
	s.Results = make(map[integra.ResultCode]uint64)
	s.FrameRate = 0
	s.ErrorRate = 0
}
