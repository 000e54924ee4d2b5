package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kilianp07/shiftplan/core/report"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")).MarginTop(1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	uncoveredStyle = cellStyle.Foreground(lipgloss.Color("196")).Bold(true)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// WriteConsole prints every table of r followed by fairness and coverage.
func WriteConsole(w io.Writer, r *report.Report) error {
	tables := append(Tables(r), fairnessTable(r))
	for _, t := range tables {
		if _, err := fmt.Fprintln(w, titleStyle.Render(t.Title)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, render(t)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nGatekeeper coverage: %d/%d slots\n", r.CoveredSlots, r.TotalSlots)
	return err
}

func render(t Table) string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, c := range row {
			rows[i][j] = formatCell(c)
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col] == report.Uncovered:
				return uncoveredStyle
			default:
				return cellStyle
			}
		}).
		Render()
}
