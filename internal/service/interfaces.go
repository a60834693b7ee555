package service

import (
	"context"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/geo"
)

// ObservationSource serves plant snapshots. dataset.Memory and the postgres
// ObservationRepository both implement it.
type ObservationSource interface {
	AvailableDates(ctx context.Context) ([]time.Time, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.MaterialObservation, error)
	History(ctx context.Context, section, component string) ([]domain.MaterialObservation, error)
}

// ConsumptionLookup resolves the hourly consumption of a component at a section.
type ConsumptionLookup interface {
	Lookup(section, component string) (float64, bool)
	Sections() []string
	Components() []string
}

// TableReader reads a whole worksheet.
type TableReader interface {
	SpreadsheetID() string
	ReadTable(ctx context.Context, sheet string) (domain.Table, error)
}

// FeatureModel predicts a label from named numeric features.
type FeatureModel interface {
	PredictFeatures(features map[string]float64) string
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (domain.Coordinates, error)
}

type Router interface {
	Route(ctx context.Context, from, to domain.Coordinates) (geo.Route, error)
}

type HolidaySource interface {
	National(ctx context.Context) ([]domain.Holiday, error)
}
