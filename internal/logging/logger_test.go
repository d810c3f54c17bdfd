// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/majektom/satel-integra-integration-protocol/internal/config"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestInitLogger_SilentWithoutLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{}, &buf)
	require.NoError(t, err)

	logger.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestInitLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("frame received", zap.Int("length", 7))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "frame received")
}

func TestInitLogger_JSONAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "integrastat.log")

	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		File:   config.LumberjackConfig{Filename: path, MaxSizeMB: 1},
	}, &buf)
	require.NoError(t, err)

	logger.Debug("link started")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), `"msg":"link started"`)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"level":"debug"`)
}

func TestLogRawBytes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogRawBytes(logger, "tx", integra.EncodeZonesViolationCommand())

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "tx", entries[0].Message)
	assert.Equal(t, int64(7), fields["length"])
	assert.Equal(t, "FE FE 00 D7 E2 FE 0D", fields["hex"])
}

func TestLogRawBytes_SkippedAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	LogRawBytes(zap.New(core), "rx", []byte{0x01})
	assert.Zero(t, logs.Len())
}

func TestCommandField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("sent", CommandField(integra.CmdNewData))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "NEW_DATA", logs.All()[0].ContextMap()["command"])
}
