package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/shiftplan/core/report"
)

// WriteCharts renders r as an HTML page with the role hours per day and the
// employee hours against their targets.
func WriteCharts(w io.Writer, r *report.Report) error {
	page := components.NewPage()
	page.SetPageTitle("Weekly schedule")
	page.AddCharts(roleChart(r), employeeChart(r))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

func roleChart(r *report.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Role hours per day",
			Subtitle: fmt.Sprintf("gatekeeper coverage %d/%d slots", r.CoveredSlots, r.TotalSlots),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)
	days := make([]string, len(r.Roles.Days))
	for i, d := range r.Roles.Days {
		days[i] = string(d)
	}
	bar.SetXAxis(days)
	for _, role := range r.Roles.Roles {
		data := make([]opts.BarData, len(days))
		for d, h := range r.Roles.Hours[role] {
			data[d] = opts.BarData{Value: h}
		}
		bar.AddSeries(role.DisplayName(), data, charts.WithBarChartOpts(opts.BarChart{Stack: "hours"}))
	}
	return bar
}

func employeeChart(r *report.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Employee hours"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)
	names := make([]string, len(r.Employees))
	hours := make([]opts.BarData, len(r.Employees))
	targets := make([]opts.BarData, len(r.Employees))
	for i, e := range r.Employees {
		names[i] = e.ID
		hours[i] = opts.BarData{Value: e.Hours}
		targets[i] = opts.BarData{Value: e.TargetHours}
	}
	bar.SetXAxis(names).
		AddSeries("Scheduled", hours).
		AddSeries("Target", targets)
	return bar
}
