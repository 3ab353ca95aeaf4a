package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

// ExportCSV renders header and rows the way the scraper writes an export
func ExportCSV(t *testing.T, header []string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return b.String()
}

// UTF16 encodes s as little-endian UTF-16 with a byte order mark
func UTF16(t *testing.T, s string) []byte {
	t.Helper()
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}
	return out
}

// CorruptBytes is neither valid UTF-8 nor valid UTF-16
var CorruptBytes = []byte{0xFF, 0xFE, 0x00, 0xD8, 0x61, 0x00}

// WriteExport writes data to dir/name and returns the full path
func WriteExport(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
