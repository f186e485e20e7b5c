package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-transfers/components/admin"
)

func sampleStats() admin.Stats {
	return admin.Stats{
		TotalUsers:       12458,
		ActiveDrivers:    842,
		TotalRestaurants: 356,
		TotalRevenue:     1245600,
		TodayRides:       1234,
		TodayOrders:      856,
		PendingOrders:    42,
		UsersChange:      12.5,
		DriversChange:    -8.2,
		RevenueChange:    15.3,
	}
}

func sampleCharts() admin.ChartData {
	return admin.ChartData{
		Weekly: []admin.WeeklyPoint{
			{Day: "Sat", Rides: 120, Orders: 80},
			{Day: "Sun", Rides: 150, Orders: 95},
		},
		Monthly: []admin.MonthlyPoint{
			{Month: "Jan", Revenue: 180000},
			{Month: "Feb", Revenue: 210000},
		},
	}
}

type stubCharts struct {
	calls  []BarChart
	err    error
	failOn string
}

func (s *stubCharts) RenderBar(_ context.Context, chart BarChart) (string, error) {
	s.calls = append(s.calls, chart)
	if s.err != nil && chart.Kind == s.failOn {
		return "", s.err
	}
	return "<div>" + chart.Kind + "</div>", nil
}

func TestBuildStatCardsEnglish(t *testing.T) {
	cards := BuildStatCards(sampleStats(), "en", "SAR")
	require.Len(t, cards, 4)

	assert.Equal(t, StatCard{
		Key: "total_users", TestID: "stat-total-users", Title: "Total Users",
		Value: "12,458", Change: "12.5", ChangeType: ChangeUp,
	}, cards[0])
	assert.Equal(t, "842", cards[1].Value)
	assert.Equal(t, ChangeDown, cards[1].ChangeType)
	assert.Equal(t, "8.2", cards[1].Change)
	assert.Empty(t, cards[2].Change, "zero change has no badge")
	assert.Equal(t, "1,245,600 SAR", cards[3].Value)
	assert.Equal(t, "stat-revenue", cards[3].TestID)
}

func TestBuildStatCardsArabic(t *testing.T) {
	cards := BuildStatCards(sampleStats(), "ar", "SAR")
	assert.Equal(t, "إجمالي المستخدمين", cards[0].Title)
	assert.True(t, strings.HasSuffix(cards[3].Value, "ر.س"), cards[3].Value)
	assert.Equal(t, "stat-total-users", cards[0].TestID, "test ids do not depend on locale")
}

func TestBuildStatCardsOtherCurrency(t *testing.T) {
	cards := BuildStatCards(sampleStats(), "en-US", "usd")
	assert.Equal(t, "1,245,600 USD", cards[3].Value)
}

func TestBuildQuickStats(t *testing.T) {
	quick := BuildQuickStats(sampleStats(), "en")
	require.Len(t, quick, 3)
	assert.Equal(t, QuickStat{Key: "today_rides", TestID: "today-rides", Title: "Today's Rides", Value: "1,234"}, quick[0])
	assert.Equal(t, "pending-orders", quick[2].TestID)
}

func TestWeeklyAndRevenueCharts(t *testing.T) {
	weekly := WeeklyChart(sampleCharts().Weekly, "en")
	assert.Equal(t, []string{"Sat", "Sun"}, weekly.XAxis)
	require.Len(t, weekly.Series, 2)
	assert.Equal(t, []float64{120, 150}, weekly.Series[0].Values)
	assert.Equal(t, []float64{80, 95}, weekly.Series[1].Values)

	revenue := RevenueChart(sampleCharts().Monthly, "ar")
	assert.Equal(t, "الإيرادات الشهرية", revenue.Title)
	assert.Equal(t, []float64{180000, 210000}, revenue.Series[0].Values)
}

func TestBuildOverview(t *testing.T) {
	charts := &stubCharts{}
	telemetry := &recordingTelemetry{}
	service := NewService(Options{Charts: charts, Telemetry: telemetry})

	overview, err := service.BuildOverview(context.Background(), sampleStats(), sampleCharts(), "", "SAR")
	require.NoError(t, err)
	assert.Equal(t, LocaleArabic, overview.Locale)
	assert.Len(t, overview.Cards, 4)
	assert.Len(t, overview.Quick, 3)
	assert.Equal(t, "<div>weekly</div>", overview.WeeklyChartHTML)
	assert.Equal(t, "<div>revenue</div>", overview.RevenueChartHTML)
	assert.Len(t, charts.calls, 2)
	assert.Equal(t, []string{"dashboard.overview"}, telemetry.events)
}

func TestBuildOverviewChartError(t *testing.T) {
	charts := &stubCharts{err: errors.New("boom"), failOn: "revenue"}
	service := NewService(Options{Charts: charts})
	_, err := service.BuildOverview(context.Background(), sampleStats(), sampleCharts(), "en", "SAR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue chart")
}

func TestLabelFallbacks(t *testing.T) {
	assert.Equal(t, "Total Users", Label("total_users", "fr"))
	assert.Equal(t, "إجمالي المستخدمين", Label("total_users", "ar-SA"))
	assert.Equal(t, "unknown_key", Label("unknown_key", "en"))
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}
