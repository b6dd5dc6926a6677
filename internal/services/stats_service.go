package services

import (
	"context"

	"heavyequip/internal/repos"
	"heavyequip/internal/stats"
	"heavyequip/internal/validate"
)

type StatsService struct {
	Agg       *stats.Aggregator
	Inquiries *repos.InquiryRepo
}

func NewStatsService(r *repos.StatsRepo, inq *repos.InquiryRepo) *StatsService {
	return &StatsService{Agg: stats.NewAggregator(r), Inquiries: inq}
}

// Dashboard is the admin landing payload.
type Dashboard struct {
	stats.Report
	InquiriesByStatus map[string]int `json:"inquiries_by_status"`
}

func (s *StatsService) Report(ctx context.Context, period string) (stats.Report, error) {
	p, err := stats.ParsePeriod(period)
	if err != nil {
		errs := &validate.Errors{}
		errs.Add("period", "must be one of 7d, 30d, 90d, 12m")
		return stats.Report{}, errs
	}
	return s.Agg.Report(ctx, p)
}

func (s *StatsService) Dashboard(ctx context.Context, period string) (Dashboard, error) {
	r, err := s.Report(ctx, period)
	if err != nil {
		return Dashboard{}, err
	}
	counts, err := s.Inquiries.CountByStatus()
	if err != nil {
		return Dashboard{}, mapErr("dashboard", err)
	}
	return Dashboard{Report: r, InquiriesByStatus: counts}, nil
}
