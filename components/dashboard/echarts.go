package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "300px"

// BarChart is the input for a grouped bar chart.
type BarChart struct {
	Kind   string        `json:"kind"`
	Title  string        `json:"title"`
	XAxis  []string      `json:"x_axis"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries is one legend entry's values, aligned with the x axis.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// EChartsRenderer renders charts server-side with go-echarts.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes the renderer.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache. Pass nil to disable caching.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost points the generated markup at a different ECharts host.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

var _ ChartRenderer = (*EChartsRenderer)(nil)

// RenderBar renders chart, reusing cached markup for identical input.
func (r *EChartsRenderer) RenderBar(_ context.Context, chart BarChart) (string, error) {
	if len(chart.Series) == 0 {
		return "", fmt.Errorf("dashboard: chart %q has no series", chart.Kind)
	}
	for _, s := range chart.Series {
		if len(s.Values) != len(chart.XAxis) {
			return "", fmt.Errorf("dashboard: series %q has %d values for %d labels", s.Name, len(s.Values), len(chart.XAxis))
		}
	}
	render := func() (string, error) {
		return r.renderBar(chart)
	}
	if r.cache == nil {
		return render()
	}
	key := strings.Join([]string{"bar", chart.Kind, r.theme, dataHash(chart)}, ":")
	return r.cache.GetOrRender(key, render)
}

func (r *EChartsRenderer) renderBar(chart BarChart) (string, error) {
	bar := charts.NewBar()
	init := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		init.AssetsHost = r.assetsHost
	}
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: chart.Title}),
		charts.WithInitializationOpts(init),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(chart.Series) > 1)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(chart.XAxis)
	for _, s := range chart.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Name: chart.XAxis[i], Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
