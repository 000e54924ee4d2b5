// Package report renders schedule reports to the console and to spreadsheet
// workbooks.
package report

import (
	"fmt"
	"sort"

	"github.com/kilianp07/shiftplan/core/report"
)

// Sheet names shared by every output.
const (
	EmployeeSummarySheet   = "Employee Summary"
	RoleDistributionSheet  = "Role Distribution"
	DepartmentSummarySheet = "Department Summary"
)

// Table is one titled block of rows. Cells hold strings, ints or float64.
type Table struct {
	Title  string
	Header []string
	Rows   [][]any
}

// Tables lays out r as the day grids followed by the summaries.
func Tables(r *report.Report) []Table {
	out := make([]Table, 0, len(r.Days)+3)
	for _, g := range r.Days {
		t := Table{Title: fmt.Sprintf("%s Schedule", g.Day), Header: g.Columns}
		for _, row := range g.Rows {
			cells := make([]any, len(row))
			for i, c := range row {
				cells[i] = c
			}
			t.Rows = append(t.Rows, cells)
		}
		out = append(out, t)
	}
	return append(out, employeeTable(r), roleTable(r), departmentTable(r))
}

func employeeTable(r *report.Report) Table {
	t := Table{
		Title:  EmployeeSummarySheet,
		Header: []string{"Employee", "Year", "Hours", "Target", "Max", "Delta", "Hit Target", "Days Worked"},
	}
	for _, d := range r.Calendar.Days {
		t.Header = append(t.Header, string(d))
	}
	for _, e := range r.Employees {
		row := []any{e.ID, e.Year, e.Hours, e.TargetHours, e.MaxHours, e.Delta, yesNo(e.HitTarget), e.DaysWorked}
		for _, h := range e.DayHours {
			row = append(row, h)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func roleTable(r *report.Report) Table {
	rd := r.Roles
	t := Table{Title: RoleDistributionSheet, Header: []string{"Day"}}
	for _, role := range rd.Roles {
		t.Header = append(t.Header, role.DisplayName())
	}
	for d, day := range rd.Days {
		row := []any{string(day)}
		for _, role := range rd.Roles {
			row = append(row, rd.Hours[role][d])
		}
		t.Rows = append(t.Rows, row)
	}
	total := []any{"Total"}
	for _, role := range rd.Roles {
		total = append(total, rd.Totals[role])
	}
	t.Rows = append(t.Rows, total)
	return t
}

func departmentTable(r *report.Report) Table {
	t := Table{
		Title: DepartmentSummarySheet,
		Header: []string{"Department", "Actual", "Target", "Adjusted Target", "Max", "Delta",
			"Focused", "Dual Total", "Dual Counted"},
	}
	for _, d := range r.Departments {
		t.Rows = append(t.Rows, []any{d.Role.DisplayName(), d.Actual, d.Target, d.AdjustedTarget, d.Max,
			d.Delta, d.Focused, d.DualTotal, d.DualCounted})
	}
	return t
}

// fairnessTable lists the deviation from target overall and per seniority year.
func fairnessTable(r *report.Report) Table {
	t := Table{Title: "Fairness", Header: []string{"Group", "Employees", "Mean |Delta|", "Std Dev"}}
	o := r.Fairness.Overall
	t.Rows = append(t.Rows, []any{"All", o.N, o.Mean, o.StdDev})
	years := make([]int, 0, len(r.Fairness.ByYear))
	for y := range r.Fairness.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		d := r.Fairness.ByYear[y]
		t.Rows = append(t.Rows, []any{fmt.Sprintf("Year %d", y), d.N, d.Mean, d.StdDev})
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatCell(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return fmt.Sprintf("%.1f", c)
	default:
		return fmt.Sprint(c)
	}
}
