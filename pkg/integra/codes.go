// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"fmt"
	"slices"
	"strings"
)

const prefixAndUserCodeParam = "prefixAndUserCode"

// PackPrefixAndUserCode packs a 16 character prefix and user code into 8
// bytes, two nibbles per byte, most significant nibble first. Only the
// digits 0-9 and f/F (filler) are accepted.
func PackPrefixAndUserCode(prefixAndUserCode string) ([PrefixAndUserCodeSize]byte, error) {
	var packed [PrefixAndUserCodeSize]byte

	if len(prefixAndUserCode) != PrefixAndUserCodeLength {
		return packed, &ValidationError{
			Kind:    ErrorKindLength,
			Param:   prefixAndUserCodeParam,
			Allowed: []int{PrefixAndUserCodeLength},
			Got:     len(prefixAndUserCode),
		}
	}

	for i := 0; i < PrefixAndUserCodeLength; i++ {
		var nibble byte
		switch c := prefixAndUserCode[i]; {
		case c >= '0' && c <= '9':
			nibble = c - '0'
		case c == 'f' || c == 'F':
			nibble = 0x0F
		default:
			return packed, &ValidationError{
				Kind:  ErrorKindCharacter,
				Param: prefixAndUserCodeParam,
				Got:   i,
			}
		}
		packed[i/2] = packed[i/2]<<4 | nibble
	}

	return packed, nil
}

// PadUserCode joins an optional prefix and a user code and fills the rest
// of the 16 characters with 'F'. Longer input is returned unchanged so that
// PackPrefixAndUserCode reports it.
func PadUserCode(prefix, code string) string {
	joined := prefix + code
	if len(joined) >= PrefixAndUserCodeLength {
		return joined
	}
	return joined + strings.Repeat("F", PrefixAndUserCodeLength-len(joined))
}

// PackFlags packs flags into bytes, flag i at bit i%8 of byte i/8.
// len(flags) must be one of allowed; param names the argument in the error.
func PackFlags(flags []bool, param string, allowed []int) ([]byte, error) {
	if !slices.Contains(allowed, len(flags)) {
		return nil, &ValidationError{
			Kind:    ErrorKindFlagCount,
			Param:   param,
			Allowed: slices.Clone(allowed),
			Got:     len(flags),
		}
	}

	buf := make([]byte, (len(flags)+7)/8)
	for i, set := range flags {
		if set {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return buf, nil
}

// UnpackFlags expands each byte into 8 flags, lowest bit first.
func UnpackFlags(data []byte) []bool {
	flags := make([]bool, 0, len(data)*8)
	for _, b := range data {
		for i := 0; i < 8; i++ {
			flags = append(flags, b&(1<<i) != 0)
		}
	}
	return flags
}

// FlagsFromNumbers builds a flag slice of length count with the given
// 1-based device numbers (zone 1, output 1, ...) set.
func FlagsFromNumbers(numbers []int, count int) ([]bool, error) {
	flags := make([]bool, count)
	for _, n := range numbers {
		if n < 1 || n > count {
			return nil, fmt.Errorf("number %d out of range 1-%d", n, count)
		}
		flags[n-1] = true
	}
	return flags, nil
}
