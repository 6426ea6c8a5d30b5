package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/insights/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &domain.Cursor{CreatedAt: time.Date(2024, 3, 5, 7, 30, 0, 123, time.UTC), ID: "n-1"}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestDecodeCursorEmptyMeansFirstPage(t *testing.T) {
	c, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, c)
	require.Empty(t, EncodeCursor(nil))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 !!")
	require.Error(t, err)

	_, err = DecodeCursor("bm8tc2VwYXJhdG9y") // "no-separator"
	require.Error(t, err)
}
