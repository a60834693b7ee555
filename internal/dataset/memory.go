package dataset

import (
	"context"
	"sort"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Memory is an immutable in-memory observation source built once at startup.
type Memory struct {
	byDate map[string][]domain.MaterialObservation
	dates  []time.Time
	all    []domain.MaterialObservation
}

func NewMemory(observations []domain.MaterialObservation) *Memory {
	m := &Memory{
		byDate: make(map[string][]domain.MaterialObservation),
		all:    append([]domain.MaterialObservation(nil), observations...),
	}
	for _, o := range observations {
		key := dayKey(o.ObservedAt)
		if _, ok := m.byDate[key]; !ok {
			m.dates = append(m.dates, truncateDay(o.ObservedAt))
		}
		m.byDate[key] = append(m.byDate[key], o)
	}
	sort.Slice(m.dates, func(i, j int) bool { return m.dates[i].After(m.dates[j]) })
	return m
}

// AvailableDates returns snapshot dates, newest first.
func (m *Memory) AvailableDates(ctx context.Context) ([]time.Time, error) {
	return append([]time.Time(nil), m.dates...), nil
}

func (m *Memory) ListByDate(ctx context.Context, date time.Time) ([]domain.MaterialObservation, error) {
	rows := m.byDate[dayKey(date)]
	return append([]domain.MaterialObservation(nil), rows...), nil
}

// History returns every observation of a pair, oldest first.
func (m *Memory) History(ctx context.Context, section, component string) ([]domain.MaterialObservation, error) {
	var out []domain.MaterialObservation
	for _, o := range m.all {
		if o.Section == section && o.Component == component {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.Before(out[j].ObservedAt) })
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
