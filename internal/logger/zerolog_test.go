package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_JSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&buf, "json", "debug")
	require.NoError(t, err)

	log.Info("Loader", "image loaded", map[string]interface{}{"width": 64})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Loader", entry["component"])
	assert.Equal(t, "image loaded", entry["message"])
	assert.EqualValues(t, 64, entry["width"])
}

func TestZerologAdapter_ErrorCarriesCause(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)
	log.Error("Saver", errors.New("disk full"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "operation failed", entry["message"])
}

func TestZerologAdapter_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)
	log.Debug("x", "hidden", nil)
	log.Info("x", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("x", "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	var l Logger = NewNop()
	l.Info("c", "m", map[string]interface{}{"k": 1})
	l.Error("c", errors.New("e"), nil)
}
