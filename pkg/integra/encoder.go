// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

// Encoder builds a wire frame from payload bytes.
// Handles the start sequence, byte stuffing, and checksum trailer.
//
// An Encoder resets itself in Frame, so a single instance can be reused for
// consecutive messages. It is not safe for concurrent use.
type Encoder struct {
	frame []byte
	crc   Checksum
}

// NewEncoder creates a new frame encoder.
func NewEncoder() *Encoder {
	return &Encoder{crc: Checksum{crc: checksumInitial}}
}

// AddByte appends one payload byte. The first call also emits the two
// start bytes.
func (e *Encoder) AddByte(b byte) {
	if len(e.frame) == 0 {
		e.frame = append(e.frame, StartByte, StartByte)
	}
	e.frame = stuffByte(e.frame, b)
	e.crc.AddByte(b)
}

// AddBytes appends payload bytes in order.
func (e *Encoder) AddBytes(data []byte) {
	for _, b := range data {
		e.AddByte(b)
	}
}

// Frame appends the checksum (high byte first, both stuffed) and the
// terminator, returns the finished frame and resets the encoder.
func (e *Encoder) Frame() []byte {
	crc := e.crc.CRC()
	result := stuffByte(e.frame, byte(crc>>8))
	result = stuffByte(result, byte(crc&0xFF))
	result = append(result, StartByte, EndByte)

	e.frame = nil
	e.crc.Reset()
	return result
}

// EncodeFrame encodes payload as a complete wire frame.
func EncodeFrame(payload []byte) []byte {
	e := NewEncoder()
	e.AddBytes(payload)
	return e.Frame()
}

// stuffByte appends b to dst, following a literal START byte with
// EscapedStartByte.
func stuffByte(dst []byte, b byte) []byte {
	dst = append(dst, b)
	if b == StartByte {
		dst = append(dst, EscapedStartByte)
	}
	return dst
}
