package dashboard

import (
	"context"
	"io"
)

// Change directions for stat cards.
const (
	ChangeUp   = "up"
	ChangeDown = "down"
)

// StatCard is a headline number with its period-over-period change.
type StatCard struct {
	Key        string `json:"key"`
	TestID     string `json:"testId"`
	Title      string `json:"title"`
	Value      string `json:"value"`
	Change     string `json:"change,omitempty"`
	ChangeType string `json:"changeType,omitempty"`
}

// QuickStat is one of the "today" counters under the charts.
type QuickStat struct {
	Key    string `json:"key"`
	TestID string `json:"testId"`
	Title  string `json:"title"`
	Value  string `json:"value"`
}

// Overview is everything the dashboard page renders.
type Overview struct {
	Locale           string      `json:"locale"`
	Cards            []StatCard  `json:"cards"`
	Quick            []QuickStat `json:"quick"`
	WeeklyChartHTML  string      `json:"weeklyChartHtml,omitempty"`
	RevenueChartHTML string      `json:"revenueChartHtml,omitempty"`
}

// ChartRenderer turns chart series into embeddable HTML.
type ChartRenderer interface {
	RenderBar(ctx context.Context, chart BarChart) (string, error)
}

// Renderer is the template renderer contract shared with go-template.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// Telemetry records dashboard events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
