// Package plot renders time-current characteristic charts as standalone HTML
// pages with go-echarts.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/relaycoord/core/tcc"
)

// Options controls the chart layout.
type Options struct {
	Title  string
	Width  int
	Height int
	Limits tcc.Limits
	// FaultCurrentsA are drawn as dashed vertical markers.
	FaultCurrentsA []float64
}

func (o Options) withDefaults(curves []tcc.Curve) Options {
	if o.Title == "" {
		o.Title = "Time-current characteristics"
	}
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Limits.MinA <= 0 || o.Limits.MaxA <= o.Limits.MinA {
		o.Limits.MinA, o.Limits.MaxA = dataRange(curves)
	}
	if o.Limits.MinS <= 0 {
		o.Limits.MinS = tcc.MinSeconds
	}
	if o.Limits.MaxS <= o.Limits.MinS {
		o.Limits.MaxS = tcc.MaxSeconds
	}
	return o
}

func dataRange(curves []tcc.Curve) (float64, float64) {
	lo, hi := math.Inf(1), 0.0
	for _, c := range curves {
		for _, p := range c.Points {
			lo = math.Min(lo, p.CurrentA)
			hi = math.Max(hi, p.CurrentA)
		}
	}
	if math.IsInf(lo, 1) || hi <= lo {
		return tcc.DefaultMinA, tcc.DefaultMaxA
	}
	return lo, hi
}

// NewTCCChart builds a log-log line chart with one series per curve.
// Instantaneous pickups appear as vertical mark lines on their series.
func NewTCCChart(curves []tcc.Curve, o Options) *charts.Line {
	o = o.withDefaults(curves)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     strconv.Itoa(o.Width) + "px",
			Height:    strconv.Itoa(o.Height) + "px",
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         "Current (A)",
			NameLocation: "middle",
			NameGap:      30,
			Type:         "log",
			Min:          round(o.Limits.MinA),
			Max:          round(o.Limits.MaxA),
			SplitLine:    &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Time (s)",
			Type:      "log",
			Min:       o.Limits.MinS,
			Max:       o.Limits.MaxS,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)

	for i, c := range curves {
		data := make([]opts.LineData, 0, len(c.Points))
		for _, p := range c.Points {
			if p.CurrentA < o.Limits.MinA || p.CurrentA > o.Limits.MaxA {
				continue
			}
			s := math.Min(math.Max(p.Seconds, o.Limits.MinS), o.Limits.MaxS)
			data = append(data, opts.LineData{Value: []float64{round(p.CurrentA), round(s)}})
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}
		var marks []opts.MarkLineNameXAxisItem
		if c.InstPickupA > 0 {
			marks = append(marks, opts.MarkLineNameXAxisItem{
				Name:  fmt.Sprintf("%s inst %.0f A", c.Relay, c.InstPickupA),
				XAxis: round(c.InstPickupA),
			})
		}
		if i == 0 {
			for _, f := range o.FaultCurrentsA {
				marks = append(marks, opts.MarkLineNameXAxisItem{
					Name:  fmt.Sprintf("fault %.0f A", f),
					XAxis: round(f),
				})
			}
		}
		if len(marks) > 0 {
			seriesOpts = append(seriesOpts,
				charts.WithMarkLineNameXAxisItemOpts(marks...),
				charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
					Label:     &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
					LineStyle: &opts.LineStyle{Type: "dashed"},
				}),
			)
		}
		line.AddSeries(c.Label, data, seriesOpts...)
	}
	return line
}

// RenderTCC writes the chart page to w.
func RenderTCC(w io.Writer, curves []tcc.Curve, o Options) error {
	if len(curves) == 0 {
		return fmt.Errorf("no curves to plot")
	}
	var buf bytes.Buffer
	if err := NewTCCChart(curves, o).Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteTCCFile renders the chart to path, creating parent directories.
func WriteTCCFile(path string, curves []tcc.Curve, o Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderTCC(&buf, curves, o); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
