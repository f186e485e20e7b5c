package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// StatsResult bundles the headline numbers with the chart series.
type StatsResult struct {
	Stats  admin.Stats     `json:"stats"`
	Charts admin.ChartData `json:"charts"`
}

type statsService interface {
	Stats() admin.Stats
	ChartData() admin.ChartData
}

// StatsQuery returns dashboard statistics.
type StatsQuery struct {
	service statsService
}

func NewStatsQuery(service statsService) *StatsQuery {
	return &StatsQuery{service: service}
}

var _ gocommand.Querier[struct{}, StatsResult] = (*StatsQuery)(nil)

func (q *StatsQuery) Query(context.Context, struct{}) (StatsResult, error) {
	return StatsResult{Stats: q.service.Stats(), Charts: q.service.ChartData()}, nil
}
