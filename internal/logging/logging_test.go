package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "text")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "project", "Abuja")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `level=WARN msg=shown project=Abuja`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "json")
	require.NoError(t, err)

	logger.Debug("resolved", "path", "local")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "resolved", rec["msg"])
	assert.Equal(t, "local", rec["path"])
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)

	lvl, err := ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)
}
