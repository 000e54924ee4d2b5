package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/shiftplan/core/report"
)

const (
	defaultSheet = "Sheet1"
	maxSheetName = 31
	minColWidth  = 8.0
	maxColWidth  = 60.0
)

// Workbook builds a spreadsheet with one sheet per day and one per summary.
// The caller closes the returned file.
func Workbook(r *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	uncovered, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "C00000"}})
	if err != nil {
		f.Close()
		return nil, err
	}

	var first string
	for _, t := range Tables(r) {
		name := sheetName(t.Title)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		if first == "" {
			first = name
		}
		if err := writeSheet(f, name, t, header, uncovered); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		f.Close()
		return nil, err
	}
	if idx, err := f.GetSheetIndex(first); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// WriteWorkbook writes the workbook of r to path.
func WriteWorkbook(path string, r *report.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// EncodeWorkbook streams the workbook of r to w.
func EncodeWorkbook(w io.Writer, r *report.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, t Table, headerStyle, uncoveredStyle int) error {
	header := make([]any, len(t.Header))
	widths := make([]float64, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
		widths[i] = float64(len(h))
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
		for j, v := range row {
			if j < len(widths) {
				widths[j] = max(widths[j], float64(len(formatCell(v))))
			}
			if v != report.Uncovered {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(name, ref, ref, uncoveredStyle); err != nil {
				return err
			}
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, min(max(w+2, minColWidth), maxColWidth)); err != nil {
			return err
		}
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// sheetName strips characters spreadsheets reject and truncates to the
// allowed length.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, title)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
