package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ColumnWidth is the display width applied to every report column.
const ColumnWidth = 18

// WriteWorkbook renders t as a single-sheet workbook with a bold, left-aligned header row.
func WriteWorkbook(t *Table, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if len(t.Header) > 0 {
		if err := sw.SetColWidth(1, len(t.Header), ColumnWidth); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	header := make([]interface{}, len(t.Header))
	for i, name := range t.Header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for r, row := range t.Rows {
		cells := make([]interface{}, len(t.Header))
		for c := range t.Header {
			if c < len(row) && row[c] != "" {
				cells[c] = row[c]
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
