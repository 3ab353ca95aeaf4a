package dataprocessing

import (
	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

// KeywordTotals sums each keyword column over all rows, grouped by
// category in configuration order. A keyword shared by two categories
// reports the same total under both.
func KeywordTotals(table *domain.CompiledTable, categories []domain.KeywordCategory) []domain.CategoryTotals {
	sums := make(map[string]int64)
	for _, rec := range table.Records {
		for kw, n := range rec.KeywordCounts {
			sums[kw] += int64(n)
		}
	}

	out := make([]domain.CategoryTotals, 0, len(categories))
	for _, cat := range categories {
		ct := domain.CategoryTotals{
			Category: cat.Name,
			Keywords: make([]domain.KeywordTotal, 0, len(cat.Keywords)),
		}
		for _, kw := range cat.Keywords {
			ct.Keywords = append(ct.Keywords, domain.KeywordTotal{Keyword: kw, Total: sums[kw]})
		}
		out = append(out, ct)
	}
	return out
}

// FileViewTotals lists per-file view sums in load order
func FileViewTotals(results []LoadResult) []domain.FileViews {
	var out []domain.FileViews
	for _, r := range results {
		if r.File != nil {
			out = append(out, domain.FileViews{File: r.Name, Views: r.File.TotalViews})
		}
	}
	return out
}

// SkippedFiles lists the files that failed to load, in discovery order
func SkippedFiles(results []LoadResult) []domain.SkippedFile {
	var out []domain.SkippedFile
	for _, r := range results {
		if r.Err != nil {
			out = append(out, domain.SkippedFile{
				File:      r.Name,
				ErrorType: string(apperrors.TypeOf(r.Err)),
				Reason:    r.Err.Error(),
			})
		}
	}
	return out
}
