package exporter

import (
	"fmt"
	"io"

	"tgcompile/pkg/contracts/domain"
)

// ReportPrinter renders a compile report as console text
type ReportPrinter struct {
	out            io.Writer
	fileViewsLimit int
	skippedLimit   int
}

// NewReportPrinter creates a printer. Non-positive limits print every entry.
func NewReportPrinter(out io.Writer, fileViewsLimit, skippedLimit int) *ReportPrinter {
	return &ReportPrinter{
		out:            out,
		fileViewsLimit: fileViewsLimit,
		skippedLimit:   skippedLimit,
	}
}

// PrintLoadErrors prints one line per skipped file
func (p *ReportPrinter) PrintLoadErrors(skipped []domain.SkippedFile) {
	for _, s := range skipped {
		fmt.Fprintf(p.out, "Error loading %s: %s\n", s.File, s.Reason)
	}
}

// PrintNoValidFiles prints the message shown when nothing could be compiled
func (p *ReportPrinter) PrintNoValidFiles() {
	fmt.Fprintln(p.out, "No valid CSV files found in the directory.")
}

// PrintReport prints keyword totals, view totals and the skipped list
func (p *ReportPrinter) PrintReport(r *domain.CompileReport) {
	fmt.Fprintln(p.out, "\nTotal occurrences categorized:")
	for _, ct := range r.CategoryTotals {
		fmt.Fprintf(p.out, "\n**%s**\n", ct.DisplayName())
		for _, kt := range ct.Keywords {
			fmt.Fprintf(p.out, "   🔑 %s: %d\n", kt.Keyword, kt.Total)
		}
	}

	fmt.Fprintf(p.out, "\nSuccessfully compiled %d messages from %d valid CSVs.\n", r.TotalMessages, r.FilesLoaded)
	fmt.Fprintf(p.out, "Total Views: %d\n", r.TotalViews)
	for _, fv := range limit(r.FileViews, p.fileViewsLimit) {
		fmt.Fprintf(p.out, "📂 %s: %d views\n", fv.File, fv.Views)
	}
	fmt.Fprintf(p.out, "💾 Saved to %s\n", r.OutputPath)
	if r.XLSXPath != "" {
		fmt.Fprintf(p.out, "💾 Saved to %s\n", r.XLSXPath)
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(p.out, "Skipped %d files (empty or corrupted):\n", len(r.Skipped))
		for _, s := range limit(r.Skipped, p.skippedLimit) {
			fmt.Fprintf(p.out, "   - %s\n", s.File)
		}
	}
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
