// internal/domain/material.go
package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Status is the three-level risk label shown on the dashboard.
type Status string

const (
	StatusCritical Status = "critical"
	StatusWatch    Status = "watch"
	StatusSafe     Status = "safe"
)

var statusRanks = map[Status]int{
	StatusCritical: 0,
	StatusWatch:    1,
	StatusSafe:     2,
}

// AllStatuses lists statuses from most to least urgent.
func AllStatuses() []Status {
	return []Status{StatusCritical, StatusWatch, StatusSafe}
}

// Rank orders statuses by urgency, lower is more urgent.
// Unknown statuses rank after Safe.
func (s Status) Rank() int {
	if r, ok := statusRanks[s]; ok {
		return r
	}
	return len(statusRanks)
}

func (s Status) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// ParseStatus accepts the English labels and the plant's traffic-light names
// (merah/kuning/hijau), case-insensitive.
func ParseStatus(label string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical", "merah", "red":
		return StatusCritical, true
	case "watch", "kuning", "yellow":
		return StatusWatch, true
	case "safe", "hijau", "green":
		return StatusSafe, true
	}
	return "", false
}

// MaterialObservation is one material at one consuming section at a point in time.
// Stock and rates share the same time unit (hours on the plant dataset).
type MaterialObservation struct {
	ObservedAt      time.Time `json:"observed_at" db:"observed_at"`
	Section         string    `json:"destination_section" db:"section"`
	Component       string    `json:"component_name" db:"component"`
	AvailableStock  float64   `json:"available_stock" db:"available_stock"`
	ConsumptionRate float64   `json:"consumption_rate" db:"consumption_rate"`
	LeadTime        float64   `json:"lead_time" db:"lead_time"`
}

// observationJSON is the wire form of MaterialObservation. Absent quantities
// (NaN) encode as null and null decodes back to NaN.
type observationJSON struct {
	ObservedAt      time.Time `json:"observed_at"`
	Section         string    `json:"destination_section"`
	Component       string    `json:"component_name"`
	AvailableStock  *float64  `json:"available_stock"`
	ConsumptionRate *float64  `json:"consumption_rate"`
	LeadTime        *float64  `json:"lead_time"`
}

func (o MaterialObservation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{
		ObservedAt:      o.ObservedAt,
		Section:         o.Section,
		Component:       o.Component,
		AvailableStock:  quantityRef(o.AvailableStock),
		ConsumptionRate: quantityRef(o.ConsumptionRate),
		LeadTime:        quantityRef(o.LeadTime),
	})
}

func (o *MaterialObservation) UnmarshalJSON(data []byte) error {
	var raw observationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = MaterialObservation{
		ObservedAt:      raw.ObservedAt,
		Section:         raw.Section,
		Component:       raw.Component,
		AvailableStock:  quantityValue(raw.AvailableStock),
		ConsumptionRate: quantityValue(raw.ConsumptionRate),
		LeadTime:        quantityValue(raw.LeadTime),
	}
	return nil
}

func quantityRef(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func quantityValue(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Hours is a duration in the dataset's time unit. Infinite values encode as JSON null.
type Hours float64

func (h Hours) IsInf() bool {
	return math.IsInf(float64(h), 0)
}

func (h Hours) MarshalJSON() ([]byte, error) {
	v := float64(h)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = Hours(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = Hours(v)
	return nil
}

// RiskAssessment is derived from an observation on every evaluation and never stored.
type RiskAssessment struct {
	DepletionTime Hours  `json:"depletion_time"`
	BufferTime    Hours  `json:"buffer_time"`
	Status        Status `json:"status"`
}
