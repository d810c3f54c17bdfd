// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import "fmt"

// DecoderState is the position of the frame decoder state machine.
type DecoderState int

// Decoder states
const (
	StateAwaitingFirstStart DecoderState = iota
	StateAwaitingSecondStart
	StateAwaitingFirstPayloadByte
	StateReceivingPayload
	StateEscapeReceived
	StateFrameComplete
)

func (s DecoderState) String() string {
	switch s {
	case StateAwaitingFirstStart:
		return "AWAITING_FIRST_START"
	case StateAwaitingSecondStart:
		return "AWAITING_SECOND_START"
	case StateAwaitingFirstPayloadByte:
		return "AWAITING_FIRST_PAYLOAD_BYTE"
	case StateReceivingPayload:
		return "RECEIVING_PAYLOAD"
	case StateEscapeReceived:
		return "ESCAPE_RECEIVED"
	case StateFrameComplete:
		return "FRAME_COMPLETE"
	default:
		return fmt.Sprintf("DecoderState(%d)", int(s))
	}
}

// Step is the outcome of feeding one byte to the Decoder.
type Step int

// Step values
const (
	NeedMoreInput Step = iota
	FrameReady
)

func (s Step) String() string {
	if s == FrameReady {
		return "FrameReady"
	}
	return "NeedMoreInput"
}

// Decoder implements the frame decoder state machine.
//
// A Decoder is meant to live as long as the connection it is fed from. It
// skips junk between frames and tolerates repeated start bytes. The
// checksum is not verified here; Frame returns it as the last two bytes.
// Not safe for concurrent use.
type Decoder struct {
	state  DecoderState
	buffer []byte
}

// NewDecoder creates a new frame decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:  StateAwaitingFirstStart,
		buffer: make([]byte, 0, 64),
	}
}

// Reset drops any partial frame and waits for a new start sequence.
func (d *Decoder) Reset() {
	d.state = StateAwaitingFirstStart
	d.buffer = d.buffer[:0]
}

// State returns the current state machine position.
func (d *Decoder) State() DecoderState {
	return d.state
}

// InFrame reports whether payload bytes of an unfinished frame are buffered.
func (d *Decoder) InFrame() bool {
	return d.state == StateReceivingPayload || d.state == StateEscapeReceived
}

// AddByte processes a single byte through the decoder state machine.
// Returns FrameReady exactly when the byte completes a frame.
func (d *Decoder) AddByte(b byte) Step {
	switch d.state {
	case StateAwaitingFirstStart:
		if b == StartByte {
			d.state = StateAwaitingSecondStart
		}

	case StateAwaitingSecondStart:
		if b == StartByte {
			d.state = StateAwaitingFirstPayloadByte
		} else {
			d.state = StateAwaitingFirstStart
		}

	case StateAwaitingFirstPayloadByte:
		// Extra start bytes before the payload are ignored
		if b != StartByte {
			d.buffer = append(d.buffer, b)
			d.state = StateReceivingPayload
		}

	case StateReceivingPayload:
		if b == StartByte {
			d.state = StateEscapeReceived
		} else {
			d.buffer = append(d.buffer, b)
		}

	case StateEscapeReceived:
		switch b {
		case EndByte:
			d.state = StateFrameComplete
			return FrameReady
		case EscapedStartByte:
			d.buffer = append(d.buffer, StartByte)
			d.state = StateReceivingPayload
		case StartByte:
			// A new start sequence aborts the frame in progress
			d.Reset()
			d.state = StateAwaitingFirstPayloadByte
		default:
			d.Reset()
		}

	case StateFrameComplete:
		d.Reset()
		if b == StartByte {
			d.state = StateAwaitingSecondStart
		}
	}

	return NeedMoreInput
}

// AddBytes feeds data until a frame completes. It returns the number of
// bytes consumed and FrameReady if a frame is available from Frame.
func (d *Decoder) AddBytes(data []byte) (int, Step) {
	for i, b := range data {
		if d.AddByte(b) == FrameReady {
			return i + 1, FrameReady
		}
	}
	return len(data), NeedMoreInput
}

// Frame returns a copy of the buffered, unescaped bytes including the two
// trailing checksum bytes. Only meaningful after FrameReady.
func (d *Decoder) Frame() []byte {
	frame := make([]byte, len(d.buffer))
	copy(frame, d.buffer)
	return frame
}
