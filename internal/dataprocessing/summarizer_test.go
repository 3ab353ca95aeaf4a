package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

func TestKeywordTotals(t *testing.T) {
	categories := []domain.KeywordCategory{
		{Name: "Morality_Terms", Keywords: []string{"حجاب", "غرب"}},
		{Name: "Shared", Keywords: []string{"حجاب"}},
	}
	a, err := NewAnnotator(categories, nil)
	require.NoError(t, err)

	table := &domain.CompiledTable{
		Columns: []string{"Message"},
		Records: []domain.MessageRecord{
			{Message: "حجاب حجاب"},
			{Message: "غرب و حجاب"},
			{Message: domain.DefaultMessage},
		},
	}
	a.Annotate(table)

	totals := KeywordTotals(table, categories)
	assert.Equal(t, []domain.CategoryTotals{
		{Category: "Morality_Terms", Keywords: []domain.KeywordTotal{{Keyword: "حجاب", Total: 3}, {Keyword: "غرب", Total: 1}}},
		{Category: "Shared", Keywords: []domain.KeywordTotal{{Keyword: "حجاب", Total: 3}}},
	}, totals)
	assert.Equal(t, "Morality Terms", totals[0].DisplayName())
}

func TestFileViewTotalsAndSkipped(t *testing.T) {
	results := []LoadResult{
		{Name: "a.csv.csv", File: &domain.LoadedFile{TotalViews: 100}},
		{Name: "b.csv.csv", Err: apperrors.NewDecodeError("content is neither valid UTF-8 nor UTF-16", nil)},
		{Name: "c.csv.csv", File: &domain.LoadedFile{TotalViews: 0}},
	}

	assert.Equal(t, []domain.FileViews{
		{File: "a.csv.csv", Views: 100},
		{File: "c.csv.csv", Views: 0},
	}, FileViewTotals(results))

	skipped := SkippedFiles(results)
	require.Len(t, skipped, 1)
	assert.Equal(t, "b.csv.csv", skipped[0].File)
	assert.Equal(t, "DECODE", skipped[0].ErrorType)
	assert.Contains(t, skipped[0].Reason, "neither valid UTF-8")
}
