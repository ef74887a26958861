package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "text", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "user_id", "u1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown user_id=u1")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("DEBUG", "json", &buf)
	require.NoError(t, err)

	log.Debug("sweep finished", "stopped", 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sweep finished", rec["msg"])
	assert.Equal(t, float64(2), rec["stopped"])
}

func TestNew_Rejects(t *testing.T) {
	_, err := New("loud", "text", &bytes.Buffer{})
	assert.Error(t, err)
	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
