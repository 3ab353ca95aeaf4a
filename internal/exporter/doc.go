// Package exporter writes compiled message tables and renders run reports.
//
// CSVWriter is the low level writer. It prefixes files with a UTF-8 BOM so
// spreadsheet tools detect Persian text correctly, and offers a streaming
// mode for large tables.
//
// TableExporter writes a domain.CompiledTable as CSV (header row, no index
// column) and optionally as an XLSX workbook with a second sheet of keyword
// totals.
//
// ReportPrinter renders a domain.CompileReport as the console summary.
//
// Example usage:
//
//	exp := exporter.NewTableExporter(logger)
//	if err := exp.WriteCSV("Telegram_Data_Compiled.csv", table); err != nil {
//		return err
//	}
//	exporter.NewReportPrinter(os.Stdout, 30, 10).PrintReport(report)
package exporter
