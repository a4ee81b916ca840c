package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	sheetRows   = "Securities"
	sheetFailed = "Failed"
)

var rowHeader = []any{"Code", "Name", "Kind", "Price", "Change %", "Market value (100M)", "Currency", "Volume change %", "Source"}

// WriteXLSX saves the report as a workbook: one sheet of rows in market value
// order and, when any code failed, a sheet of failures.
func (r Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetRows); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	if err := f.SetSheetRow(sheetRows, "A1", &rowHeader); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	if err := f.SetCellStyle(sheetRows, "A1", "I1", bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	for i, row := range r.Rows {
		q := row.Quote
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := []any{q.Code, q.Name, string(q.Kind), q.Price, q.ChangePercent, q.MarketValue, q.Currency, row.VolumeChangeRate, q.Source}
		if err := f.SetSheetRow(sheetRows, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %s: %w", q.Code, err)
		}
	}

	if len(r.Failed) > 0 {
		if _, err := f.NewSheet(sheetFailed); err != nil {
			return fmt.Errorf("xlsx: failed sheet: %w", err)
		}
		header := []any{"Code", "Error"}
		if err := f.SetSheetRow(sheetFailed, "A1", &header); err != nil {
			return fmt.Errorf("xlsx: failed header: %w", err)
		}
		for i, res := range r.Failed {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
			values := []any{res.Code, res.Error}
			if err := f.SetSheetRow(sheetFailed, cell, &values); err != nil {
				return fmt.Errorf("xlsx: failed row %s: %w", res.Code, err)
			}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("xlsx: create dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}
