package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "tgcompile/internal/errors"
	"tgcompile/internal/files"
	"tgcompile/pkg/contracts/domain"
)

// Encodings reported on a loaded file
const (
	EncodingUTF8  = "utf-8-sig"
	EncodingUTF16 = "utf-16"
)

// naValues are the cell texts treated as missing, as spreadsheet and
// dataframe tooling commonly writes them.
var naValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// decimalRe accepts plain decimal and exponent notation only
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// LoadResult is the outcome for one input file: File on success, Err otherwise.
type LoadResult struct {
	Name string
	File *domain.LoadedFile
	Err  error
}

// Skipped reports whether the file failed to load
func (r LoadResult) Skipped() bool {
	return r.Err != nil
}

// Loader reads and normalizes scraped export files
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader that logs through logger
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadAll loads inputs one at a time in order. A failing file never stops
// the remaining ones; its error is kept on the result.
func (l *Loader) LoadAll(ctx context.Context, inputs []files.FileInfo) []LoadResult {
	results := make([]LoadResult, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, l.Load(ctx, in))
	}
	return results
}

// Load loads a single file into a LoadResult
func (l *Loader) Load(ctx context.Context, in files.FileInfo) LoadResult {
	file, err := l.LoadFile(in.Path, in.Name)
	if err != nil {
		l.logger.WarnContext(ctx, "Skipping file",
			slog.String("filename", in.Name),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return LoadResult{Name: in.Name, Err: err}
	}

	l.logger.DebugContext(ctx, "Loaded file",
		slog.String("filename", in.Name),
		slog.String("encoding", file.Encoding),
		slog.Int("rows", len(file.Records)),
		slog.Int64("views", file.TotalViews))
	return LoadResult{Name: in.Name, File: file}
}

// LoadFile reads path, decodes it and normalizes its rows.
// Rows are tagged with name as their source file.
func (l *Loader) LoadFile(path, name string) (*domain.LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", name), err)
	}

	text, encoding, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	file, err := ParseTable(strings.NewReader(text), name)
	if err != nil {
		return nil, err
	}
	file.Path = path
	file.Encoding = encoding
	return file, nil
}

// DecodeText decodes data as UTF-8 (optional BOM), falling back to UTF-16
// when the bytes are not valid UTF-8.
func DecodeText(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), EncodingUTF8, nil
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", "", apperrors.NewDecodeError("content is neither valid UTF-8 nor UTF-16", err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", "", apperrors.NewDecodeError("content is neither valid UTF-8 nor UTF-16", nil)
	}
	return string(out), EncodingUTF16, nil
}

// ParseTable parses delimited text whose first row is the header.
// Quotes inside unquoted fields are kept as literal text; a quoted field
// left open until end of input is a parsing error.
func ParseTable(r io.Reader, name string) (*domain.LoadedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read delimited data", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	lines := lineOffsets(data)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("no columns to parse from file", nil)
	}
	if err != nil {
		return nil, parseError(err)
	}
	if err := checkClosedQuote(reader, data, lines, header); err != nil {
		return nil, err
	}
	header = dedupeHeader(header)

	file := &domain.LoadedFile{
		Name:    name,
		Columns: withRequiredColumns(header),
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		if err := checkClosedQuote(reader, data, lines, row); err != nil {
			return nil, err
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("expected %d fields in line %d, saw %d", len(header), line, len(row)), nil)
		}

		rec := NewMessageRecord(header, row, name)
		file.TotalViews = domain.AddViews(file.TotalViews, rec.Views)
		file.Records = append(file.Records, rec)
	}

	return file, nil
}

// NewMessageRecord builds a record from one row. Message and Views are
// defaulted when absent; cells beyond the end of row stay unset.
func NewMessageRecord(header, row []string, source string) domain.MessageRecord {
	rec := domain.MessageRecord{
		Message:    domain.DefaultMessage,
		SourceFile: source,
		Extra:      make(map[string]string),
	}

	for i, col := range header {
		if i >= len(row) {
			break
		}
		value := row[i]

		switch col {
		case domain.ColumnMessage:
			if !naValues[value] {
				rec.Message = value
			}
		case domain.ColumnViews:
			rec.Views = CoerceViews(value)
		case domain.ColumnSourceFile:
			// replaced by the originating file name
		default:
			rec.Extra[col] = value
		}
	}

	return rec
}

// CoerceViews converts a possibly dirty numeric cell to a non-negative
// integer. Blank, missing or non-numeric text yields 0; fractions are
// truncated.
func CoerceViews(s string) int64 {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

// withRequiredColumns appends the typed columns a file lacks
func withRequiredColumns(header []string) []string {
	cols := append([]string(nil), header...)
	for _, required := range []string{domain.ColumnSourceFile, domain.ColumnViews, domain.ColumnMessage} {
		if !contains(cols, required) {
			cols = append(cols, required)
		}
	}
	return cols
}

// dedupeHeader names blank columns "Unnamed: i" and suffixes repeats
// with ".1", ".2", ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", h, seen[h])
			seen[h]++
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// checkClosedQuote rejects a record whose last field opened a quote that
// was never closed. Such a field runs to the end of the input, so only a
// record that consumed all of data is inspected.
func checkClosedQuote(reader *csv.Reader, data []byte, lines []int, row []string) error {
	if len(row) == 0 || reader.InputOffset() < int64(len(data)) {
		return nil
	}

	line, col := reader.FieldPos(len(row) - 1)
	if line < 1 || line > len(lines) {
		return nil
	}
	start := lines[line-1] + col - 1
	if start < 0 || start >= len(data) || data[start] != '"' {
		return nil
	}

	// a closed field ends in an odd run of quotes: the closing one plus
	// any doubled pairs
	rest := bytes.TrimRight(data[start+1:], "\r\n")
	run := len(rest) - len(bytes.TrimRight(rest, `"`))
	if run%2 == 1 {
		return nil
	}
	return apperrors.NewParsingError(
		fmt.Sprintf("malformed row at line %d", line), csv.ErrQuote)
}

// lineOffsets returns the byte offset at which each line of data starts
func lineOffsets(data []byte) []int {
	offsets := []int{0}
	for i, b := range data {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func parseError(err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return apperrors.NewParsingError(fmt.Sprintf("malformed row at line %d", pe.Line), pe.Err)
	}
	return apperrors.NewParsingError("failed to read delimited data", err)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
