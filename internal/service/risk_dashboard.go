package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

const dateLayout = "2006-01-02"

type RiskDashboardService struct {
	source    ObservationSource
	evaluator *risk.Evaluator
}

func NewRiskDashboardService(source ObservationSource, evaluator *risk.Evaluator) *RiskDashboardService {
	return &RiskDashboardService{source: source, evaluator: evaluator}
}

// Dates lists the snapshot dates, newest first.
func (s *RiskDashboardService) Dates(ctx context.Context) ([]time.Time, error) {
	if s.source == nil {
		return nil, fmt.Errorf("observation source: %w", domain.ErrNotReady)
	}
	return s.source.AvailableDates(ctx)
}

// Evaluate assesses a single observation.
func (s *RiskDashboardService) Evaluate(ctx context.Context, obs domain.MaterialObservation) (domain.RiskAssessment, error) {
	return s.evaluator.Evaluate(ctx, obs)
}

// Dashboard evaluates every material of one snapshot. A zero filter date
// selects the latest snapshot and an empty status list shows every status.
// Counts and hotspots cover only the materials shown.
func (s *RiskDashboardService) Dashboard(ctx context.Context, filter domain.RiskDashboardFilter) (*domain.RiskDashboard, error) {
	if s.source == nil {
		return nil, fmt.Errorf("observation source: %w", domain.ErrNotReady)
	}

	date := filter.Date
	if date.IsZero() {
		dates, err := s.source.AvailableDates(ctx)
		if err != nil {
			return nil, err
		}
		if len(dates) == 0 {
			return nil, fmt.Errorf("no snapshots loaded: %w", domain.ErrNotFound)
		}
		date = dates[0]
	}

	observations, err := s.source.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("no observations on %s: %w", date.Format(dateLayout), domain.ErrNotFound)
	}

	results := s.evaluator.EvaluateBatch(ctx, observations)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	risk.SortResults(results)

	shown := statusSet(filter.Statuses)
	dashboard := &domain.RiskDashboard{
		Date:      date.Format(dateLayout),
		Materials: make([]domain.AssessedMaterial, 0, len(results)),
	}
	perSection := make(map[string]int)

	for _, r := range results {
		if r.Err != nil {
			dashboard.FailedCount++
			dashboard.Materials = append(dashboard.Materials, domain.AssessedMaterial{
				Observation: r.Observation,
				Error:       r.Err.Error(),
			})
			continue
		}
		if !shown[r.Assessment.Status] {
			continue
		}

		assessment := r.Assessment
		dashboard.Materials = append(dashboard.Materials, domain.AssessedMaterial{
			Observation: r.Observation,
			Assessment:  &assessment,
		})
		dashboard.TotalShown++

		switch assessment.Status {
		case domain.StatusCritical:
			dashboard.CriticalCount++
			perSection[r.Observation.Section]++
		case domain.StatusWatch:
			dashboard.WatchCount++
			perSection[r.Observation.Section]++
		}
	}

	if dashboard.FailedCount > 0 {
		log.Warn().
			Str("date", dashboard.Date).
			Int("failed", dashboard.FailedCount).
			Int("total", len(results)).
			Msg("risk dashboard: some materials could not be assessed")
	}

	dashboard.Hotspots = hotspots(perSection)
	return dashboard, nil
}

func statusSet(statuses []domain.Status) map[domain.Status]bool {
	if len(statuses) == 0 {
		statuses = domain.AllStatuses()
	}
	set := make(map[domain.Status]bool, len(statuses))
	for _, st := range statuses {
		set[st] = true
	}
	return set
}

// hotspots orders sections by ascending count, ties by name.
func hotspots(perSection map[string]int) []domain.SectionHotspot {
	out := make([]domain.SectionHotspot, 0, len(perSection))
	for section, count := range perSection {
		out = append(out, domain.SectionHotspot{Section: section, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Section < out[j].Section
	})
	return out
}
