package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"plvm/internal/logger"

	"github.com/nalgeon/be"
)

func TestQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, false, true)

	l.Info("Processing file", "file", "main.pl")
	be.Equal(t, buf.Len(), 0)

	l.Warn("Slow run", "steps", 10)
	be.True(t, strings.Contains(buf.String(), "PLVM"))
	be.True(t, strings.Contains(buf.String(), "steps=10"))
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, true, true)

	l.Debug("Run finished", "steps", 42)
	out := buf.String()
	be.True(t, strings.Contains(out, "Run finished"))
	be.True(t, strings.Contains(out, "steps=42"))
	be.True(t, !strings.Contains(out, "\x1b["))
}
