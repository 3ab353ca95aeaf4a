package domain

import (
	"math"
	"strconv"
)

// Column names with fixed meaning in every compiled table
const (
	ColumnMessage    = "Message"
	ColumnViews      = "Views"
	ColumnSourceFile = "Source File"
	ColumnNewNumber  = "New Number"
)

// DefaultMessage replaces absent or blank message text
const DefaultMessage = "No Text"

// ReservedColumns lists the columns owned by the loader and aggregator.
var ReservedColumns = []string{ColumnMessage, ColumnViews, ColumnSourceFile, ColumnNewNumber}

// IsReservedColumn reports whether name is one of ReservedColumns
func IsReservedColumn(name string) bool {
	for _, c := range ReservedColumns {
		if c == name {
			return true
		}
	}
	return false
}

// MessageRecord represents one scraped message row.
// Typed fields are defaulted at construction; every other input column
// is carried through Extra untouched. A column missing from Extra is an
// unset cell and is written as an empty field.
type MessageRecord struct {
	Message    string            `json:"message"`
	Views      int64             `json:"views"`
	SourceFile string            `json:"source_file"`
	NewNumber  int64             `json:"new_number,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	// KeywordCounts is filled by the annotator, keyed by keyword column.
	KeywordCounts map[string]int `json:"keyword_counts,omitempty"`
}

// LoadedFile is one successfully normalized input file.
type LoadedFile struct {
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	Encoding   string          `json:"encoding"`
	Columns    []string        `json:"columns"`
	Records    []MessageRecord `json:"records"`
	TotalViews int64           `json:"total_views"`
}

// CompiledTable is the merged dataset of all loaded files.
type CompiledTable struct {
	Columns []string        `json:"columns"`
	Records []MessageRecord `json:"records"`
	// SyntheticNewNumber is true when New Number was assigned after the
	// merge rather than carried from the source files.
	SyntheticNewNumber bool     `json:"synthetic_new_number"`
	KeywordColumns     []string `json:"keyword_columns,omitempty"`
}

// Len returns the number of rows
func (t *CompiledTable) Len() int {
	return len(t.Records)
}

// HasColumn reports whether the header contains name
func (t *CompiledTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// TotalViews sums Views across all rows, saturating at math.MaxInt64
func (t *CompiledTable) TotalViews() int64 {
	var total int64
	for _, r := range t.Records {
		total = AddViews(total, r.Views)
	}
	return total
}

// AddViews adds two non-negative view counts, saturating at math.MaxInt64.
func AddViews(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Cell renders the value of column for row i.
func (t *CompiledTable) Cell(i int, column string) string {
	r := &t.Records[i]
	switch column {
	case ColumnMessage:
		return r.Message
	case ColumnViews:
		return strconv.FormatInt(r.Views, 10)
	case ColumnSourceFile:
		return r.SourceFile
	case ColumnNewNumber:
		if t.SyntheticNewNumber {
			return strconv.FormatInt(r.NewNumber, 10)
		}
	}
	if n, ok := r.KeywordCounts[column]; ok {
		return strconv.Itoa(n)
	}
	return r.Extra[column]
}

// Value returns the typed value of column for row i. Views, keyword
// counts and integral New Number cells are int64; everything else is the
// rendered string.
func (t *CompiledTable) Value(i int, column string) interface{} {
	r := &t.Records[i]
	switch column {
	case ColumnViews:
		return r.Views
	case ColumnNewNumber:
		if t.SyntheticNewNumber {
			return r.NewNumber
		}
		if n, err := strconv.ParseInt(r.Extra[column], 10, 64); err == nil {
			return n
		}
	}
	if n, ok := r.KeywordCounts[column]; ok {
		return int64(n)
	}
	return t.Cell(i, column)
}

// Row renders row i in header order.
func (t *CompiledTable) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = t.Cell(i, c)
	}
	return row
}
