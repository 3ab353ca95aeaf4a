package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "tgcompile/internal/errors"
	"tgcompile/pkg/contracts/domain"
)

// Sheet names of the compiled workbook
const (
	CompiledSheet = "Compiled"
	KeywordsSheet = "Keywords"
)

// TableExporter persists a compiled table
type TableExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewTableExporter creates a table exporter
func NewTableExporter(logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// WriteCSV writes the table with a header row and no index column,
// prefixed with a UTF-8 BOM.
func (e *TableExporter) WriteCSV(path string, table *domain.CompiledTable) error {
	stream, err := e.csvWriter.CreateStreamWriter(path, table.Columns)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create %s", path), err)
	}

	for i := range table.Records {
		if err := stream.WriteRecord(table.Row(i)); err != nil {
			stream.Close()
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d to %s", i+1, path), err)
		}
	}

	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to flush %s", path), err)
	}

	e.logger.Info("Compiled CSV written",
		slog.String("path", path),
		slog.Int("rows", stream.Rows()),
		slog.Int("columns", len(table.Columns)))
	return nil
}

// WriteXLSX writes the table to a "Compiled" sheet and the keyword totals
// to a "Keywords" sheet.
func (e *TableExporter) WriteXLSX(path string, table *domain.CompiledTable, totals []domain.CategoryTotals) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CompiledSheet); err != nil {
		return apperrors.NewStorageError("failed to name compiled sheet", err)
	}

	sw, err := f.NewStreamWriter(CompiledSheet)
	if err != nil {
		return apperrors.NewStorageError("failed to open compiled sheet", err)
	}
	if err := sw.SetRow("A1", toCells(table.Columns)); err != nil {
		return apperrors.NewStorageError("failed to write compiled header", err)
	}
	for i := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to address row", err)
		}
		if err := sw.SetRow(cell, rowCells(table, i)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", i+1), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush compiled sheet", err)
	}

	if _, err := f.NewSheet(KeywordsSheet); err != nil {
		return apperrors.NewStorageError("failed to create keywords sheet", err)
	}
	row := 1
	if err := f.SetSheetRow(KeywordsSheet, "A1", &[]interface{}{"Category", "Keyword", "Total"}); err != nil {
		return apperrors.NewStorageError("failed to write keywords header", err)
	}
	for _, ct := range totals {
		for _, kt := range ct.Keywords {
			row++
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(KeywordsSheet, cell, &[]interface{}{ct.Category, kt.Keyword, kt.Total}); err != nil {
				return apperrors.NewStorageError("failed to write keyword totals", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save %s", path), err)
	}

	e.logger.Info("Compiled workbook written",
		slog.String("path", path),
		slog.Int("rows", table.Len()))
	return nil
}

// rowCells keeps count columns numeric so the workbook can sum them
func rowCells(table *domain.CompiledTable, i int) []interface{} {
	cells := make([]interface{}, len(table.Columns))
	for j, c := range table.Columns {
		cells[j] = table.Value(i, c)
	}
	return cells
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
