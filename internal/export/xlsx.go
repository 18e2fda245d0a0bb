package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ops-dashboard/internal/dataset"
)

// XLSXFilename is the suggested name of the spreadsheet artifact.
const XLSXFilename = "filtered_data.xlsx"

const sheetName = "Filtered"

// WriteXLSX serializes the Dataset as a single-sheet workbook with the same
// header and cell formatting as the CSV export.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	cols := columns(ds)
	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]any, len(cols))
	for r, tx := range ds.Rows {
		for i, col := range cols {
			row[i] = formatCell(tx, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
