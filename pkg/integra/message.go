// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

// DecodeMessage decodes the first complete frame found in raw.
//
// Returns nil when raw ends before a frame completes, the checksum does not
// match, the command code has no answer decoder or the data length is not
// accepted. The cause is not reported; callers keep reading and try the next
// frame.
func DecodeMessage(raw []byte) Answer {
	d := NewDecoder()
	if _, step := d.AddBytes(raw); step != FrameReady {
		return nil
	}
	return DecodePayload(d.Frame())
}

// DecodePayload decodes an unescaped frame payload as returned by
// Decoder.Frame: command byte, data, two checksum bytes.
func DecodePayload(payload []byte) Answer {
	if !ChecksumValid(payload) {
		return nil
	}
	return decodeAnswer(Command(payload[0]), payload[1:len(payload)-2])
}

// ChecksumValid reports whether payload holds at least a command byte and
// the checksum, and the trailing big-endian checksum matches the rest.
func ChecksumValid(payload []byte) bool {
	if len(payload) < minPayloadSize {
		return false
	}
	n := len(payload) - 2
	received := uint16(payload[n])<<8 | uint16(payload[n+1])
	return CalculateChecksum(payload[:n]) == received
}
