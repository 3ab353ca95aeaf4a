package dataprocessing

import (
	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

// Merge concatenates loaded files into one table in the given order.
// The header is the union of all file headers in order of first appearance;
// a row keeps unset cells for columns its file lacked. When no source file
// carries a New Number column, one is inserted as the second column and
// numbered 1..n in final row order.
func Merge(loaded []*domain.LoadedFile) (*domain.CompiledTable, error) {
	if len(loaded) == 0 {
		return nil, apperrors.ErrNoValidFiles
	}

	total := 0
	for _, f := range loaded {
		total += len(f.Records)
	}

	table := &domain.CompiledTable{
		Records: make([]domain.MessageRecord, 0, total),
	}

	seen := make(map[string]bool)
	for _, f := range loaded {
		for _, col := range f.Columns {
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}
		table.Records = append(table.Records, f.Records...)
	}

	if !seen[domain.ColumnNewNumber] {
		table.Columns = insertAt(table.Columns, 1, domain.ColumnNewNumber)
		table.SyntheticNewNumber = true
		for i := range table.Records {
			table.Records[i].NewNumber = int64(i + 1)
		}
	}

	return table, nil
}

// LoadedFiles returns the successfully loaded files of results, in order
func LoadedFiles(results []LoadResult) []*domain.LoadedFile {
	var loaded []*domain.LoadedFile
	for _, r := range results {
		if r.File != nil {
			loaded = append(loaded, r.File)
		}
	}
	return loaded
}

func insertAt(cols []string, i int, col string) []string {
	if i > len(cols) {
		i = len(cols)
	}
	out := make([]string, 0, len(cols)+1)
	out = append(out, cols[:i]...)
	out = append(out, col)
	return append(out, cols[i:]...)
}
