package service

import (
	"context"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/classifier"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/geo"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func material(date time.Time, section, component string, stock, rate, lead float64) domain.MaterialObservation {
	return domain.MaterialObservation{
		ObservedAt:      date,
		Section:         section,
		Component:       component,
		AvailableStock:  stock,
		ConsumptionRate: rate,
		LeadTime:        lead,
	}
}

// labelBy returns a fixed label per component, "Hijau" otherwise.
func labelBy(labels map[string]string) *risk.Evaluator {
	return risk.NewEvaluator(classifier.Func(func(ctx context.Context, obs domain.MaterialObservation) (string, error) {
		if l, ok := labels[obs.Component]; ok {
			return l, nil
		}
		return "Hijau", nil
	}))
}

type featureFunc func(map[string]float64) string

func (f featureFunc) PredictFeatures(features map[string]float64) string { return f(features) }

type fakeReader struct {
	id     string
	tables map[string]domain.Table
	err    error
	reads  int
}

func (f *fakeReader) SpreadsheetID() string { return f.id }

func (f *fakeReader) ReadTable(ctx context.Context, sheet string) (domain.Table, error) {
	f.reads++
	if f.err != nil {
		return domain.Table{}, f.err
	}
	return f.tables[sheet], nil
}

type fakeGeocoder struct {
	coords domain.Coordinates
	err    error
}

func (f fakeGeocoder) Geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	return f.coords, f.err
}

type fakeRouter struct {
	route geo.Route
	err   error
	from  domain.Coordinates
	to    domain.Coordinates
}

func (f *fakeRouter) Route(ctx context.Context, from, to domain.Coordinates) (geo.Route, error) {
	f.from, f.to = from, to
	return f.route, f.err
}

type fakeHolidays struct {
	holidays []domain.Holiday
	err      error
}

func (f fakeHolidays) National(ctx context.Context) ([]domain.Holiday, error) {
	return f.holidays, f.err
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}
