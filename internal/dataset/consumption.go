package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// PairKey identifies a component at a destination section.
type PairKey struct {
	Section   string
	Component string
}

// ConsumptionMap holds the hourly consumption rate per section and component.
type ConsumptionMap map[PairKey]float64

func (m ConsumptionMap) Lookup(section, component string) (float64, bool) {
	v, ok := m[PairKey{Section: section, Component: component}]
	return v, ok
}

// Sections returns the distinct sections, sorted.
func (m ConsumptionMap) Sections() []string {
	return m.distinct(func(k PairKey) string { return k.Section })
}

// Components returns the distinct components, sorted.
func (m ConsumptionMap) Components() []string {
	return m.distinct(func(k PairKey) string { return k.Component })
}

func (m ConsumptionMap) distinct(pick func(PairKey) string) []string {
	seen := make(map[string]struct{})
	for k := range m {
		seen[pick(k)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ConsumptionFromObservations derives a map from a dataset. The most recent
// observation with a usable rate wins for each pair. Rows without a section,
// component or finite non-negative rate are skipped.
func ConsumptionFromObservations(observations []domain.MaterialObservation) ConsumptionMap {
	m := make(ConsumptionMap)
	latest := make(map[PairKey]domain.MaterialObservation)
	for _, o := range observations {
		if o.Section == "" || o.Component == "" || !usableRate(o.ConsumptionRate) {
			continue
		}
		k := PairKey{Section: o.Section, Component: o.Component}
		if prev, ok := latest[k]; ok && prev.ObservedAt.After(o.ObservedAt) {
			continue
		}
		latest[k] = o
		m[k] = o.ConsumptionRate
	}
	return m
}

func usableRate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func LoadConsumption(path string) (ConsumptionMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open consumption map %s: %w", path, err)
	}
	defer file.Close()

	m, err := ReadConsumption(file)
	if err != nil {
		return nil, fmt.Errorf("consumption map %s: %w", path, err)
	}
	return m, nil
}

// ReadConsumption parses a CSV with section, component and consumption columns.
func ReadConsumption(r io.Reader) (ConsumptionMap, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty consumption map")
		}
		return nil, err
	}

	idx, missing := headerIndex{header: header}.require(colSection, colComponent, colConsumption)
	if len(missing) > 0 {
		return nil, domain.NewMissingFieldError(missing...)
	}

	m := make(ConsumptionMap)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if blank(record) {
			continue
		}
		get := func(i int) string {
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rate, err := parseQuantity(colConsumption[0], get(idx[2]))
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		section, component := get(idx[0]), get(idx[1])
		if section == "" || component == "" || math.IsNaN(rate) {
			return nil, &RowError{Line: line, Err: fmt.Errorf("incomplete consumption entry")}
		}
		m[PairKey{Section: section, Component: component}] = rate
	}
	return m, nil
}
