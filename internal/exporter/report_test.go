package exporter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tgcompile/pkg/contracts/domain"
)

func TestReportPrinter_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewReportPrinter(&buf, 30, 10)

	p.PrintReport(&domain.CompileReport{
		OutputPath:    "Telegram_Scraped_Data/Telegram_Data_Compiled.csv",
		FilesLoaded:   1,
		TotalMessages: 1,
		TotalViews:    100,
		FileViews:     []domain.FileViews{{File: "a.csv.csv", Views: 100}},
		Skipped:       []domain.SkippedFile{{File: "b.csv.csv", ErrorType: "DECODE", Reason: "bad bytes"}},
		CategoryTotals: []domain.CategoryTotals{
			{Category: "VPN_Terms", Keywords: []domain.KeywordTotal{{Keyword: "فیلترشکن", Total: 1}}},
		},
	})

	want := strings.Join([]string{
		"",
		"Total occurrences categorized:",
		"",
		"**VPN Terms**",
		"   🔑 فیلترشکن: 1",
		"",
		"Successfully compiled 1 messages from 1 valid CSVs.",
		"Total Views: 100",
		"📂 a.csv.csv: 100 views",
		"💾 Saved to Telegram_Scraped_Data/Telegram_Data_Compiled.csv",
		"Skipped 1 files (empty or corrupted):",
		"   - b.csv.csv",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestReportPrinter_Limits(t *testing.T) {
	var buf bytes.Buffer
	p := NewReportPrinter(&buf, 2, 1)

	r := &domain.CompileReport{OutputPath: "out.csv"}
	for i := 0; i < 5; i++ {
		r.FileViews = append(r.FileViews, domain.FileViews{File: fmt.Sprintf("f%d.csv.csv", i), Views: int64(i)})
		r.Skipped = append(r.Skipped, domain.SkippedFile{File: fmt.Sprintf("s%d.csv.csv", i)})
	}
	p.PrintReport(r)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "📂"))
	assert.Contains(t, out, "📂 f1.csv.csv: 1 views")
	assert.NotContains(t, out, "f2.csv.csv")
	assert.Contains(t, out, "Skipped 5 files (empty or corrupted):")
	assert.Contains(t, out, "   - s0.csv.csv")
	assert.NotContains(t, out, "s1.csv.csv")
}

func TestReportPrinter_NoSkipped(t *testing.T) {
	var buf bytes.Buffer
	NewReportPrinter(&buf, 0, 0).PrintReport(&domain.CompileReport{OutputPath: "out.csv"})
	assert.NotContains(t, buf.String(), "Skipped")
}

func TestReportPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewReportPrinter(&buf, 0, 0)

	p.PrintLoadErrors([]domain.SkippedFile{{File: "bad.csv.csv", Reason: "no columns to parse from file"}})
	p.PrintNoValidFiles()

	assert.Equal(t,
		"Error loading bad.csv.csv: no columns to parse from file\nNo valid CSV files found in the directory.\n",
		buf.String())
}
