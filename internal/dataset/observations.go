// Package dataset loads plant observations and consumption rates from CSV and
// XLSX exports.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
}

// RowError reports a record that could not be parsed. Line is 1-based and
// counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// LoadObservations reads a dataset file, choosing the parser by extension.
func LoadObservations(path string) ([]domain.MaterialObservation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadObservationsXLSX(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer file.Close()

	obs, err := ReadObservations(file)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return obs, nil
}

// ReadObservations parses a CSV dataset with a header row.
func ReadObservations(r io.Reader) ([]domain.MaterialObservation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset")
		}
		return nil, err
	}

	p, err := newObservationParser(header)
	if err != nil {
		return nil, err
	}

	var out []domain.MaterialObservation
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
		obs, err := p.parse(record)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		out = append(out, obs)
	}
	return out, nil
}

type observationParser struct {
	date, section, component, stock, consumption, leadTime int
}

func newObservationParser(header []string) (*observationParser, error) {
	idx, missing := headerIndex{header: header}.require(
		colDate, colSection, colComponent, colStock, colConsumption, colLeadTime,
	)
	if len(missing) > 0 {
		return nil, domain.NewMissingFieldError(missing...)
	}
	return &observationParser{
		date:        idx[0],
		section:     idx[1],
		component:   idx[2],
		stock:       idx[3],
		consumption: idx[4],
		leadTime:    idx[5],
	}, nil
}

func (p *observationParser) parse(record []string) (domain.MaterialObservation, error) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var obs domain.MaterialObservation
	var err error

	if raw := get(p.date); raw != "" {
		if obs.ObservedAt, err = parseDate(raw); err != nil {
			return obs, err
		}
	}
	obs.Section = get(p.section)
	obs.Component = get(p.component)

	if obs.AvailableStock, err = parseQuantity(colStock[0], get(p.stock)); err != nil {
		return obs, err
	}
	if obs.ConsumptionRate, err = parseQuantity(colConsumption[0], get(p.consumption)); err != nil {
		return obs, err
	}
	if obs.LeadTime, err = parseQuantity(colLeadTime[0], get(p.leadTime)); err != nil {
		return obs, err
	}
	return obs, nil
}

// thousandsGrouped matches numbers written with comma digit grouping, such
// as 1,500 or 12,000.75.
var thousandsGrouped = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseNumber parses a finite number. Commas are accepted only as thousands
// separators, so a decimal comma like 1,5 is rejected instead of becoming 15.
func ParseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		if !thousandsGrouped.MatchString(raw) {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
		raw = strings.ReplaceAll(raw, ",", "")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// parseQuantity parses a non-negative number. An empty cell becomes NaN so
// the evaluator reports the field as missing instead of treating it as zero.
func parseQuantity(name, raw string) (float64, error) {
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: negative value %v", name, v)
	}
	return v, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("tanggal: invalid date %q", raw)
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
