package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ettle/strcase"
	"golang.org/x/text/number"

	"github.com/goliatone/go-transfers/components/admin"
)

const defaultChartTTL = 5 * time.Minute

// Options configures a Service.
type Options struct {
	Charts    ChartRenderer
	Telemetry Telemetry
}

// Service assembles the dashboard overview from store data.
type Service struct {
	charts    ChartRenderer
	telemetry Telemetry
}

// NewService builds a service. Charts default to cached go-echarts rendering.
func NewService(opts Options) *Service {
	s := &Service{
		charts:    opts.Charts,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
	if s.charts == nil {
		s.charts = NewEChartsRenderer(WithChartCache(NewChartCache(defaultChartTTL)))
	}
	return s
}

// BuildOverview formats stats for locale and renders both charts.
func (s *Service) BuildOverview(ctx context.Context, stats admin.Stats, chart admin.ChartData, locale, currency string) (Overview, error) {
	if locale == "" {
		locale = LocaleArabic
	}
	overview := Overview{
		Locale: locale,
		Cards:  BuildStatCards(stats, locale, currency),
		Quick:  BuildQuickStats(stats, locale),
	}

	weekly, err := s.charts.RenderBar(ctx, WeeklyChart(chart.Weekly, locale))
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard: weekly chart: %w", err)
	}
	revenue, err := s.charts.RenderBar(ctx, RevenueChart(chart.Monthly, locale))
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard: revenue chart: %w", err)
	}
	overview.WeeklyChartHTML = weekly
	overview.RevenueChartHTML = revenue

	s.telemetry.Record(ctx, "dashboard.overview", map[string]any{
		"locale": locale,
		"cards":  len(overview.Cards),
	})
	return overview, nil
}

// BuildStatCards formats the four headline cards.
func BuildStatCards(stats admin.Stats, locale, currency string) []StatCard {
	p := printerFor(locale)
	format := func(v float64) string {
		return p.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
	}
	revenue := format(stats.TotalRevenue) + " " + currencyLabel(currency, locale)
	return []StatCard{
		statCard("total_users", locale, format(float64(stats.TotalUsers)), stats.UsersChange),
		statCard("active_drivers", locale, format(float64(stats.ActiveDrivers)), stats.DriversChange),
		statCard("total_restaurants", locale, format(float64(stats.TotalRestaurants)), stats.RestaurantsChange),
		statCard("revenue", locale, revenue, stats.RevenueChange),
	}
}

func statCard(key, locale, value string, change float64) StatCard {
	card := StatCard{
		Key:    key,
		TestID: "stat-" + strcase.ToKebab(key),
		Title:  Label(key, locale),
		Value:  value,
	}
	if change != 0 {
		card.Change = fmt.Sprintf("%.1f", math.Abs(change))
		card.ChangeType = ChangeUp
		if change < 0 {
			card.ChangeType = ChangeDown
		}
	}
	return card
}

// BuildQuickStats formats today's counters.
func BuildQuickStats(stats admin.Stats, locale string) []QuickStat {
	p := printerFor(locale)
	quick := func(key string, v int) QuickStat {
		return QuickStat{
			Key:    key,
			TestID: strcase.ToKebab(key),
			Title:  Label(key, locale),
			Value:  p.Sprint(number.Decimal(v)),
		}
	}
	return []QuickStat{
		quick("today_rides", stats.TodayRides),
		quick("today_orders", stats.TodayOrders),
		quick("pending_orders", stats.PendingOrders),
	}
}

// WeeklyChart groups rides and orders per day.
func WeeklyChart(points []admin.WeeklyPoint, locale string) BarChart {
	chart := BarChart{
		Kind:  "weekly",
		Title: Label("weekly_activity", locale),
		XAxis: make([]string, len(points)),
		Series: []ChartSeries{
			{Name: Label("rides", locale), Values: make([]float64, len(points))},
			{Name: Label("orders", locale), Values: make([]float64, len(points))},
		},
	}
	for i, point := range points {
		chart.XAxis[i] = point.Day
		chart.Series[0].Values[i] = float64(point.Rides)
		chart.Series[1].Values[i] = float64(point.Orders)
	}
	return chart
}

// RevenueChart plots revenue per month.
func RevenueChart(points []admin.MonthlyPoint, locale string) BarChart {
	chart := BarChart{
		Kind:   "revenue",
		Title:  Label("monthly_revenue", locale),
		XAxis:  make([]string, len(points)),
		Series: []ChartSeries{{Name: Label("revenue", locale), Values: make([]float64, len(points))}},
	}
	for i, point := range points {
		chart.XAxis[i] = point.Month
		chart.Series[0].Values[i] = point.Revenue
	}
	return chart
}
