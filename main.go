// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom
//
// Integrastat - INTEGRA Integration Protocol Tool
//
// A CLI tool for reading, controlling and monitoring INTEGRA alarm panels
// over the integration protocol.

package main

import (
	"os"

	"github.com/majektom/satel-integra-integration-protocol/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
