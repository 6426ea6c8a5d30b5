package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "insights-api", "debug")
	logger.Debug().Str("client_id", "c-1").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "insights-api", entry["service"])
	require.Equal(t, "c-1", entry["client_id"])
	require.Equal(t, "debug", entry["level"])
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "insights-api", "chatty")
	logger.Debug().Msg("dropped")
	require.Zero(t, buf.Len())

	logger.Info().Msg("kept")
	require.NotZero(t, buf.Len())
}
