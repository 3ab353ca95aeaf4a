package testutil

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.With("component", "loader").Warn("Skipping file", slog.String("filename", "a.csv.csv"))
	logger.WithGroup("stage").Info("done", slog.Int("rows", 3))
	logger.Error("boom")

	records := h.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "loader", records[0].Attrs["component"])
	assert.Equal(t, "a.csv.csv", records[0].Attrs["filename"])
	assert.Equal(t, int64(3), records[1].Attrs["stage.rows"])

	assert.Len(t, h.Find(slog.LevelWarn, "Skipping"), 1)
	assert.Empty(t, h.Find(slog.LevelInfo, "Skipping"))
	AssertLogContains(t, h, slog.LevelError, "boom")
}

func TestExportCSV(t *testing.T) {
	text := ExportCSV(t, []string{"Message", "Views"}, []string{"a, b", "1"})

	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Message", "Views"}, {"a, b", "1"}}, rows)
}

func TestUTF16AndCorruptBytes(t *testing.T) {
	data := UTF16(t, "hi")
	assert.Equal(t, []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, data)
	assert.False(t, utf8.Valid(CorruptBytes))
}

func TestWriteExport(t *testing.T) {
	path := WriteExport(t, t.TempDir(), "nested/a.csv.csv", []byte("x"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
