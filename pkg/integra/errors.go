// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package integra

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies an encode-time validation failure.
type ErrorKind int

const (
	ErrorKindLength ErrorKind = iota
	ErrorKindCharacter
	ErrorKindFlagCount
	ErrorKindCommand
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindLength:
		return "length"
	case ErrorKindCharacter:
		return "character"
	case ErrorKindFlagCount:
		return "flag_count"
	case ErrorKindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ValidationError reports a malformed encoder argument.
type ValidationError struct {
	Kind    ErrorKind
	Param   string
	Allowed []int // accepted lengths, for ErrorKindLength and ErrorKindFlagCount
	Got     int   // offending length, position or command code
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	switch v.Kind {
	case ErrorKindLength:
		return fmt.Sprintf("'%s' must be exactly %s characters long", v.Param, joinAllowed(v.Allowed))
	case ErrorKindCharacter:
		return fmt.Sprintf("'%s' must not contain other characters than digits or 'f' or 'F' (position %d)", v.Param, v.Got)
	case ErrorKindFlagCount:
		return fmt.Sprintf("'%s' array must have %s elements", v.Param, joinAllowed(v.Allowed))
	case ErrorKindCommand:
		return fmt.Sprintf("'%s' 0x%02X is not valid for this encoding", v.Param, v.Got)
	default:
		return fmt.Sprintf("'%s' is invalid", v.Param)
	}
}

// joinAllowed renders {128, 256} as "128 or 256".
func joinAllowed(allowed []int) string {
	parts := make([]string, len(allowed))
	for i, n := range allowed {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " or ")
}
