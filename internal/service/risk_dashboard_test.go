package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/dataset"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func plantSnapshot() *dataset.Memory {
	return dataset.NewMemory([]domain.MaterialObservation{
		// older snapshot
		material(day(1), "Press", "Bolt", 5, 1, 10),
		// latest snapshot
		material(day(2), "Press", "Bolt", 5, 1, 10),         // buffer -5, critical
		material(day(2), "Press", "Nut", 20, 1, 10),         // buffer 10, Merah -> watch
		material(day(2), "Welding", "Wire", 40, 1, 10),      // buffer 30, watch
		material(day(2), "Welding", "Plate", 1, 1, 10),      // buffer -9, critical
		material(day(2), "Painting", "Primer", 100, 1, 10),  // safe
		material(day(2), "Painting", "Thinner", 100, 1, 10), // classifier fails
	})
}

func TestRiskDashboardDefaultsToLatestDate(t *testing.T) {
	evaluator := labelBy(map[string]string{"Nut": "Merah", "Wire": "Kuning", "Thinner": "Ungu"})
	svc := NewRiskDashboardService(plantSnapshot(), evaluator)

	dash, err := svc.Dashboard(context.Background(), domain.RiskDashboardFilter{})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-02", dash.Date)
	assert.Equal(t, 2, dash.CriticalCount)
	assert.Equal(t, 2, dash.WatchCount)
	assert.Equal(t, 5, dash.TotalShown)
	assert.Equal(t, 1, dash.FailedCount)

	require.Len(t, dash.Materials, 6)
	var order []string
	for _, m := range dash.Materials {
		order = append(order, m.Observation.Component)
	}
	assert.Equal(t, []string{"Plate", "Bolt", "Nut", "Wire", "Primer", "Thinner"}, order)
	assert.Nil(t, dash.Materials[5].Assessment)
	assert.NotEmpty(t, dash.Materials[5].Error)

	assert.Equal(t, []domain.SectionHotspot{
		{Section: "Press", Count: 2},
		{Section: "Welding", Count: 2},
	}, dash.Hotspots)
}

func TestRiskDashboardCountsFilteredStatuses(t *testing.T) {
	evaluator := labelBy(map[string]string{"Nut": "Merah", "Wire": "Kuning"})
	svc := NewRiskDashboardService(plantSnapshot(), evaluator)

	dash, err := svc.Dashboard(context.Background(), domain.RiskDashboardFilter{
		Date:     day(2),
		Statuses: []domain.Status{domain.StatusWatch},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, dash.CriticalCount)
	assert.Equal(t, 2, dash.WatchCount)
	assert.Equal(t, 2, dash.TotalShown)
	assert.Equal(t, []domain.SectionHotspot{
		{Section: "Press", Count: 1},
		{Section: "Welding", Count: 1},
	}, dash.Hotspots)
}

func TestRiskDashboardErrors(t *testing.T) {
	evaluator := labelBy(nil)

	_, err := NewRiskDashboardService(nil, evaluator).Dashboard(context.Background(), domain.RiskDashboardFilter{})
	assert.ErrorIs(t, err, domain.ErrNotReady)

	_, err = NewRiskDashboardService(dataset.NewMemory(nil), evaluator).Dashboard(context.Background(), domain.RiskDashboardFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewRiskDashboardService(plantSnapshot(), evaluator).Dashboard(context.Background(), domain.RiskDashboardFilter{Date: day(9)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRiskDashboardDates(t *testing.T) {
	dates, err := NewRiskDashboardService(plantSnapshot(), labelBy(nil)).Dates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02", "2024-03-01"}, []string{dates[0].Format(dateLayout), dates[1].Format(dateLayout)})
}
