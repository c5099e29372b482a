package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novelterm/aetheria/internal/config"
)

func TestSetup_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Environment: "production", LogLevel: slog.LevelInfo}

	log := Setup(cfg, &buf)
	log.Info("hello")

	assert.True(t, strings.HasPrefix(buf.String(), "{"), "expected JSON output, got %q", buf.String())
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestSetup_DevelopmentUsesText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Environment: "development", LogLevel: slog.LevelInfo}

	log := Setup(cfg, &buf)
	log.Info("hello")

	assert.False(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Environment: "development", LogLevel: slog.LevelWarn}

	log := Setup(cfg, &buf)
	log.Info("too quiet")
	log.Warn("loud enough")

	assert.NotContains(t, buf.String(), "too quiet")
	assert.Contains(t, buf.String(), "loud enough")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	WithError(base, errors.New("boom")).Error("turn failed")

	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"msg":"turn failed"`)
}
