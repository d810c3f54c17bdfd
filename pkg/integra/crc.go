// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

// Checksum is the running 16-bit frame checksum. Each byte rotates the
// accumulator left by one bit, inverts it and adds the high byte plus the
// input byte. The result depends on byte order.
type Checksum struct {
	crc uint16
}

// NewChecksum returns a checksum seeded with the protocol's initial value.
func NewChecksum() *Checksum {
	return &Checksum{crc: checksumInitial}
}

// Reset restores the initial seed.
func (c *Checksum) Reset() {
	c.crc = checksumInitial
}

// AddByte folds one byte into the accumulator.
func (c *Checksum) AddByte(b byte) {
	v := uint32(c.crc)
	v = (v << 1) + (v >> 15)
	v = (v ^ 0xFFFF) & 0xFFFF
	v = (v + (v >> 8) + uint32(b)) & 0xFFFF
	c.crc = uint16(v)
}

// AddBytes folds data into the accumulator in order.
func (c *Checksum) AddBytes(data []byte) {
	for _, b := range data {
		c.AddByte(b)
	}
}

// CRC returns the current accumulator value
func (c *Checksum) CRC() uint16 {
	return c.crc
}

// CalculateChecksum computes the checksum of data from a fresh seed.
func CalculateChecksum(data []byte) uint16 {
	c := NewChecksum()
	c.AddBytes(data)
	return c.CRC()
}
