package tui

import (
	"time"

	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/theme"
)

const weekChartHeight = 8

// renderWeekChart plots confirmed appointments per day.
func renderWeekChart(week []repository.DayCount, width int, st theme.Styles) string {
	if len(week) == 0 {
		return st.Faint.Render("No appointments this week.")
	}
	if width < 20 {
		width = 20
	}
	maxVal := 1.0
	for _, d := range week {
		if v := float64(d.Count); v > maxVal {
			maxVal = v
		}
	}
	start, end := week[0].Day, week[len(week)-1].Day

	chart := tslc.New(width, weekChartHeight)
	chart.SetXStep(1)
	chart.SetYStep(1)
	chart.SetStyle(lipgloss.NewStyle().Foreground(theme.ColorCompleted))
	chart.AxisStyle = st.Faint
	chart.LabelStyle = st.Muted
	chart.SetTimeRange(start, end)
	chart.SetViewTimeRange(start, end)
	chart.SetYRange(0, maxVal)
	chart.SetViewYRange(0, maxVal)
	chart.Model.XLabelFormatter = func(_ int, v float64) string {
		return time.Unix(int64(v), 0).UTC().Format("Mon")
	}

	for _, d := range week {
		chart.Push(tslc.TimePoint{Time: d.Day, Value: float64(d.Count)})
	}
	chart.DrawBraille()
	return chart.View()
}

func weekTotal(week []repository.DayCount) int {
	n := 0
	for _, d := range week {
		n += d.Count
	}
	return n
}
