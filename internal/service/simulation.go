package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/geo"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

// ErrNoConsumptionData means the section/component pair has no known consumption rate.
var ErrNoConsumptionData = errors.New("no consumption data")

const (
	recommendationCritical = "RISIKO DOWNTIME! Stok akan habis sebelum material tiba. Segera hubungi supplier/ekspedisi untuk percepat pengiriman %s."
	recommendationWatch    = "Waspada! Stok berpotensi menipis. Koordinasikan dengan supplier/ekspedisi."
	recommendationSafe     = "Stok material dalam kondisi aman. Lanjutkan pemantauan rutin."

	barDepletion = "Waktu Stok Habis"
	barLeadTime  = "Estimasi Lead Time"
)

type SimulationConfig struct {
	WarehouseName    string
	Warehouse        domain.Coordinates
	TrafficFactorPct float64
	// Sections overrides the section list derived from consumption data.
	Sections []string
}

type SimulationDeps struct {
	Evaluator   *risk.Evaluator
	Consumption ConsumptionLookup
	History     ObservationSource
	Geocoder    Geocoder
	Router      Router
	Holidays    HolidaySource
}

// SimulationRequest is a what-if stock level for one component at one section.
type SimulationRequest struct {
	Section   string  `json:"destination_section"`
	Component string  `json:"component_name"`
	Stock     float64 `json:"available_stock"`
	LeadTime  float64 `json:"lead_time"`
}

type SimulationService struct {
	deps SimulationDeps
	cfg  SimulationConfig
	now  func() time.Time
}

func NewSimulationService(deps SimulationDeps, cfg SimulationConfig) *SimulationService {
	return &SimulationService{deps: deps, cfg: cfg, now: time.Now}
}

// Options lists plant sections (warehouses excluded) and known components.
func (s *SimulationService) Options() domain.SimulationOptions {
	opts := domain.SimulationOptions{
		Sections:         s.Sections(),
		Components:       s.Components(),
		Warehouse:        s.cfg.WarehouseName,
		TrafficFactorPct: s.cfg.TrafficFactorPct,
	}
	return opts
}

func (s *SimulationService) Sections() []string {
	var sections []string
	source := s.cfg.Sections
	if len(source) == 0 && s.deps.Consumption != nil {
		source = s.deps.Consumption.Sections()
	}
	for _, sec := range source {
		if strings.Contains(strings.ToLower(sec), "warehouse") {
			continue
		}
		sections = append(sections, sec)
	}
	sort.Strings(sections)
	if sections == nil {
		sections = []string{}
	}
	return sections
}

func (s *SimulationService) Components() []string {
	if s.deps.Consumption == nil {
		return []string{}
	}
	return s.deps.Consumption.Components()
}

// EstimateLeadTime routes from origin to the warehouse and scales the driving
// time by the traffic factor.
func (s *SimulationService) EstimateLeadTime(ctx context.Context, origin string) (*domain.LeadTimeEstimate, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, domain.NewMissingFieldError("origin")
	}
	if s.deps.Geocoder == nil || s.deps.Router == nil {
		return nil, fmt.Errorf("location services: %w", domain.ErrNotReady)
	}

	coords, err := s.deps.Geocoder.Geocode(ctx, origin)
	if err != nil {
		return nil, geoError(fmt.Sprintf("geocode %q", origin), err)
	}

	route, err := s.deps.Router.Route(ctx, coords, s.cfg.Warehouse)
	if err != nil {
		return nil, geoError("route to warehouse", err)
	}

	adjusted := route.Hours * (1 + s.cfg.TrafficFactorPct/100)
	log.Debug().
		Str("origin", origin).
		Float64("raw_hours", route.Hours).
		Float64("lead_time_hours", adjusted).
		Msg("simulation: lead time estimated")

	return &domain.LeadTimeEstimate{
		Origin:        origin,
		OriginCoords:  coords,
		RawHours:      route.Hours,
		TrafficFactor: s.cfg.TrafficFactorPct,
		LeadTimeHours: adjusted,
		Route:         route.Coordinates,
	}, nil
}

func geoError(op string, err error) error {
	switch {
	case errors.Is(err, geo.ErrLocationNotFound):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	case errors.Is(err, geo.ErrMissingAPIKey):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotReady, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}

// Simulate evaluates a hypothetical stock level against the pair's known
// consumption rate.
func (s *SimulationService) Simulate(ctx context.Context, req SimulationRequest) (*domain.SimulationResult, error) {
	var missing []string
	if strings.TrimSpace(req.Section) == "" {
		missing = append(missing, "destination_section")
	}
	if strings.TrimSpace(req.Component) == "" {
		missing = append(missing, "component_name")
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingFieldError(missing...)
	}
	if req.Stock < 0 || req.LeadTime < 0 || math.IsNaN(req.Stock) || math.IsNaN(req.LeadTime) {
		return nil, fmt.Errorf("stock and lead time must be non-negative: %w", domain.ErrInvalidInput)
	}
	if s.deps.Consumption == nil || s.deps.Evaluator == nil {
		return nil, fmt.Errorf("consumption data: %w", domain.ErrNotReady)
	}

	rate, ok := s.deps.Consumption.Lookup(req.Section, req.Component)
	if !ok {
		return nil, fmt.Errorf("%s at %s: %w", req.Component, req.Section, ErrNoConsumptionData)
	}

	obs := domain.MaterialObservation{
		ObservedAt:      s.now(),
		Section:         req.Section,
		Component:       req.Component,
		AvailableStock:  req.Stock,
		ConsumptionRate: rate,
		LeadTime:        req.LeadTime,
	}
	assessment, err := s.deps.Evaluator.Evaluate(ctx, obs)
	if err != nil {
		return nil, err
	}

	return &domain.SimulationResult{
		Observation:    obs,
		Assessment:     assessment,
		Recommendation: Recommendation(assessment.Status, req.Component),
		Comparison: []domain.ChartBar{
			{Label: barDepletion, Value: assessment.DepletionTime},
			{Label: barLeadTime, Value: domain.Hours(req.LeadTime)},
		},
	}, nil
}

// Recommendation is the suggested action for a status.
func Recommendation(status domain.Status, component string) string {
	switch status {
	case domain.StatusCritical:
		return fmt.Sprintf(recommendationCritical, component)
	case domain.StatusWatch:
		return recommendationWatch
	default:
		return recommendationSafe
	}
}

// History is the buffer trend of a pair, oldest first, with public holidays
// marked on the days they fall on. A failing holiday lookup only drops the markers.
func (s *SimulationService) History(ctx context.Context, section, component string) ([]domain.BufferPoint, error) {
	if s.deps.History == nil {
		return nil, fmt.Errorf("observation source: %w", domain.ErrNotReady)
	}
	observations, err := s.deps.History.History(ctx, section, component)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("no history for %s at %s: %w", component, section, domain.ErrNotFound)
	}

	holidays := make(map[string]string)
	if s.deps.Holidays != nil {
		list, err := s.deps.Holidays.National(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("simulation: holiday lookup failed")
		}
		for _, h := range list {
			holidays[h.Date.Format(dateLayout)] = h.Name
		}
	}

	points := make([]domain.BufferPoint, 0, len(observations))
	for _, o := range observations {
		buffer := risk.DepletionTime(o.AvailableStock, o.ConsumptionRate) - o.LeadTime
		points = append(points, domain.BufferPoint{
			Date:       o.ObservedAt,
			BufferTime: domain.Hours(buffer),
			Holiday:    holidays[o.ObservedAt.Format(dateLayout)],
		})
	}
	return points, nil
}
