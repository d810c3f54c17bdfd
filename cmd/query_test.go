// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// decodeAnswer builds a valid answer frame and decodes it
func decodeAnswer(t *testing.T, c integra.Command, data ...byte) integra.Answer {
	t.Helper()
	a := integra.DecodeMessage(integra.EncodeFrame(append([]byte{byte(c)}, data...)))
	require.NotNil(t, a)
	return a
}

func zonesData(first byte) []byte {
	data := make([]byte, 16)
	data[0] = first
	return data
}

func TestRenderAnswer_Text(t *testing.T) {
	a := decodeAnswer(t, integra.CmdZonesViolation, zonesData(0x05)...)

	out, err := renderAnswer(a, "text")
	require.NoError(t, err)
	assert.Equal(t, "ZONES_VIOLATION (0x00)\n  Zones (128 total): 1, 3\n", out)

	out, err = renderAnswer(a, "")
	require.NoError(t, err)
	assert.Equal(t, integra.FormatAnswer(a), out)
}

func TestRenderAnswer_YAMLFlags(t *testing.T) {
	a := decodeAnswer(t, integra.CmdZonesViolation, zonesData(0x05)...)

	out, err := renderAnswer(a, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "command: ZONES_VIOLATION\n")
	assert.Contains(t, out, "active: [1, 3]")
	assert.NotContains(t, out, "result:")

	var doc answerDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, answerDocument{
		Command: "ZONES_VIOLATION",
		Code:    "0x00",
		Flags:   &flagsDocument{Total: 128, Active: []int{1, 3}},
	}, doc)
}

func TestRenderAnswer_YAMLEmptyFlags(t *testing.T) {
	a := decodeAnswer(t, integra.CmdArmedPartitionsReally, 0x00, 0x00, 0x00, 0x00)

	out, err := renderAnswer(a, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "active: []")
	assert.Contains(t, out, "total: 32")
}

func TestRenderAnswer_YAMLResult(t *testing.T) {
	a := decodeAnswer(t, integra.CmdCommandResult, 0x12)

	out, err := renderAnswer(a, "yaml")
	require.NoError(t, err)

	var doc answerDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.NotNil(t, doc.Result)
	assert.Equal(t, "0x12", doc.Result.Code)
	assert.Equal(t, "Can not arm", doc.Result.Message)
	assert.False(t, doc.Result.Accepted)
	assert.Nil(t, doc.Flags)
}

func TestRenderAnswer_YAMLNewData(t *testing.T) {
	// Zones violation (bit 0) and outputs state (bit 23) changed
	a := decodeAnswer(t, integra.CmdNewData, 0x01, 0x00, 0x80, 0x00, 0x00)

	out, err := renderAnswer(a, "yaml")
	require.NoError(t, err)

	var doc answerDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.NotNil(t, doc.NewData)
	assert.Equal(t, []string{"ZONES_VIOLATION", "OUTPUTS_STATE"}, doc.NewData.Changed)
}

func TestRenderAnswer_Errors(t *testing.T) {
	a := decodeAnswer(t, integra.CmdCommandResult, 0xFF)

	_, err := renderAnswer(a, "json")
	require.EqualError(t, err, `unsupported format "json" (use text or yaml)`)

	_, err = renderAnswer(nil, "yaml")
	require.Error(t, err)
}

func TestListReadCommands(t *testing.T) {
	out := listReadCommands()
	assert.Contains(t, out, "  0x00  zones-violation [extended]\n")
	assert.Contains(t, out, "  0x0A  armed-partitions-really\n")
	assert.Contains(t, out, "  0x7F  new-data\n")
	assert.NotContains(t, out, "arm-in-mode-0")
	assert.NotContains(t, out, "command-result")
}
