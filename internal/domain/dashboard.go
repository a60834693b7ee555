package domain

import "time"

// AssessedMaterial pairs an observation with its assessment or the error that
// prevented one.
type AssessedMaterial struct {
	Observation MaterialObservation `json:"observation"`
	Assessment  *RiskAssessment     `json:"assessment,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// SectionHotspot counts Critical and Watch materials for one section.
type SectionHotspot struct {
	Section string `json:"section"`
	Count   int    `json:"count"`
}

// RiskDashboard is the plant-wide overview for a single snapshot date.
type RiskDashboard struct {
	Date          string             `json:"date"`
	CriticalCount int                `json:"critical_count"`
	WatchCount    int                `json:"watch_count"`
	TotalShown    int                `json:"total_shown"`
	FailedCount   int                `json:"failed_count"`
	Materials     []AssessedMaterial `json:"materials"`
	Hotspots      []SectionHotspot   `json:"hotspots"`
}

// RiskDashboardFilter selects a snapshot date and the statuses to display.
type RiskDashboardFilter struct {
	Date     time.Time
	Statuses []Status
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LeadTimeEstimate is the routed travel time from a supplier to the warehouse,
// already adjusted for traffic.
type LeadTimeEstimate struct {
	Origin        string        `json:"origin"`
	OriginCoords  Coordinates   `json:"origin_coords"`
	RawHours      float64       `json:"raw_hours"`
	TrafficFactor float64       `json:"traffic_factor_pct"`
	LeadTimeHours float64       `json:"lead_time_hours"`
	Route         []Coordinates `json:"route"`
}

// SimulationResult is the outcome of a what-if stock analysis for one section.
type SimulationResult struct {
	Observation    MaterialObservation `json:"observation"`
	Assessment     RiskAssessment      `json:"assessment"`
	Recommendation string              `json:"recommendation"`
	Comparison     []ChartBar          `json:"comparison"`
}

// ChartBar is a labelled value for a horizontal bar chart.
type ChartBar struct {
	Label string `json:"label"`
	Value Hours  `json:"value"`
}

// Holiday is a public holiday.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// BufferPoint is one day of a material's buffer history. Holiday names the
// public holiday falling on that date, if any.
type BufferPoint struct {
	Date       time.Time `json:"date"`
	BufferTime Hours     `json:"buffer_time"`
	Holiday    string    `json:"holiday,omitempty"`
}

// SimulationOptions lists the choices offered by the what-if simulation.
type SimulationOptions struct {
	Sections         []string `json:"sections"`
	Components       []string `json:"components"`
	Warehouse        string   `json:"warehouse"`
	TrafficFactorPct float64  `json:"traffic_factor_pct"`
}
