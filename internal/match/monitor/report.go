// Package monitor renders HTML reports for analysis runs using go-echarts.
package monitor

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fieldline-data/match.report/internal/match"
	"github.com/fieldline-data/match.report/internal/units"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderReport writes a self-contained HTML report for one analysis run.
// The deduplicated events and validation summary may be nil when the run was
// analysed standalone (single window, no cross-window merge).
func RenderReport(w io.Writer, a *match.MatchAnalysis, events []match.DeduplicatedEvent, summary *match.ValidationSummary) error {
	if a == nil {
		return fmt.Errorf("nil analysis")
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Match Report %s", a.Run.MatchID)

	page.AddCharts(
		ballPathChart(a),
		possessionShareChart(a),
		passOutcomeChart(a),
	)
	if len(events) > 0 {
		page.AddCharts(eventScatterChart(a, events))
	}
	if summary != nil && len(summary.Issues) > 0 {
		page.AddCharts(validationChart(summary))
	}

	return page.Render(w)
}

// WriteReportFile renders the report to the given path.
func WriteReportFile(path string, a *match.MatchAnalysis, events []match.DeduplicatedEvent, summary *match.ValidationSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	return RenderReport(f, a, events, summary)
}

// ballPathChart plots the smoothed ball trajectory on the pitch plane,
// colored by tracking confidence. Interpolated samples aside, this is the
// posterior of the constant-velocity filter.
func ballPathChart(a *match.MatchAnalysis) components.Charter {
	pts := make([]opts.ScatterData, 0, len(a.SmoothedBall))
	maxAbs := 0.0
	for _, b := range a.SmoothedBall {
		x, y := b.Position.X, b.Position.Y
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		pts = append(pts, opts.ScatterData{Value: []interface{}{x, y, b.Confidence}})
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "620px"}),
		charts.WithTitleOpts(opts.Title{Title: "Ball Trajectory", Subtitle: fmt.Sprintf("match=%s samples=%d", a.Run.MatchID, len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("ball", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

// possessionShareChart renders per-team possession time from the segment list.
func possessionShareChart(a *match.MatchAnalysis) components.Charter {
	seconds := map[match.Team]float64{}
	for _, seg := range a.Segments {
		seconds[seg.Team] += seg.EndTime - seg.StartTime
	}

	teams := make([]match.Team, 0, len(seconds))
	for t := range seconds {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })

	x := make([]string, 0, len(teams))
	y := make([]opts.BarData, 0, len(teams))
	for _, t := range teams {
		x = append(x, string(t))
		y = append(y, opts.BarData{Value: seconds[t]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Possession (seconds)", Subtitle: a.Run.CompletedAt.Format(time.RFC3339)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("possession", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// passOutcomeChart renders pass counts per outcome.
func passOutcomeChart(a *match.MatchAnalysis) components.Charter {
	counts := map[match.PassOutcome]int{}
	for _, p := range a.Passes {
		counts[p.Outcome]++
	}

	x := []string{string(match.PassComplete), string(match.PassIncomplete), string(match.PassIntercepted)}
	y := make([]opts.BarData, 0, len(x))
	for _, o := range x {
		y = append(y, opts.BarData{Value: counts[match.PassOutcome(o)]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pass Outcomes", Subtitle: fmt.Sprintf("total=%d", len(a.Passes))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("passes", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// eventScatterChart plots positioned deduplicated events on the pitch plane,
// colored by ensemble confidence. Events without a position are skipped.
func eventScatterChart(a *match.MatchAnalysis, events []match.DeduplicatedEvent) components.Charter {
	pts := make([]opts.ScatterData, 0, len(events))
	maxAbs := 0.0
	for _, ev := range events {
		if ev.Position == nil {
			continue
		}
		x, y := ev.Position.X, ev.Position.Y
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		pts = append(pts, opts.ScatterData{
			Name:  fmt.Sprintf("%s/%s@%.1fs", ev.Type, ev.Team, ev.Timestamp),
			Value: []interface{}{x, y, ev.Confidence},
		})
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "620px"}),
		charts.WithTitleOpts(opts.Title{Title: "Events", Subtitle: fmt.Sprintf("positioned=%d of %d", len(pts), len(events))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("events", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter
}

// validationChart summarises validation findings per check as stacked counts.
func validationChart(summary *match.ValidationSummary) components.Charter {
	checks := []string{"temporal", "logical", "positional"}
	warnings := map[string]int{}
	errors := map[string]int{}
	peakScale := 0.0
	for _, issue := range summary.Issues {
		switch issue.Severity {
		case match.SeverityError:
			errors[issue.Check]++
		default:
			warnings[issue.Check]++
		}
		if issue.Scale > peakScale {
			peakScale = issue.Scale
		}
	}

	subtitle := fmt.Sprintf("errors=%d warnings=%d", summary.Errors, summary.Warnings)
	if peakScale > 0 {
		peak := units.ConvertSpeed(peakScale*match.MaxHumanSpeedMps, units.KMPH)
		subtitle += fmt.Sprintf(" peak=%.0fkm/h", peak)
	}

	warnBars := make([]opts.BarData, 0, len(checks))
	errBars := make([]opts.BarData, 0, len(checks))
	for _, c := range checks {
		warnBars = append(warnBars, opts.BarData{Value: warnings[c]})
		errBars = append(errBars, opts.BarData{Value: errors[c]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Validation Findings", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(checks).
		AddSeries("warnings", warnBars).
		AddSeries("errors", errBars)
	return bar
}
