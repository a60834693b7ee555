package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/dataset"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const (
	ColumnStockWH1 = "STOCK WH1"
	ColumnWIP      = "WIP"
	ColumnPlan     = "PLAN"

	// model feature names
	FeatureStockLevel = "stock_level"
	FeatureWIP        = "wip"
	FeatureDeviation  = "deviation"

	anomalyLabel    = "-1"
	StatusAnomalous = "Anomali"
	StatusNormal    = "Normal"
)

type MonitoringService struct {
	reader      TableReader
	sheet       string
	criticality FeatureModel
	anomaly     FeatureModel
	workingDays float64
}

func NewMonitoringService(reader TableReader, sheet string, criticality, anomaly FeatureModel, workingDays float64) *MonitoringService {
	if workingDays <= 0 {
		workingDays = 22
	}
	return &MonitoringService{
		reader:      reader,
		sheet:       sheet,
		criticality: criticality,
		anomaly:     anomaly,
		workingDays: workingDays,
	}
}

// MonitoringData reads the monitoring worksheet and annotates each row with
// the model predictions and the days of stock left at the planned pace.
// Rows whose stock, WIP or plan is not numeric get no predictions.
func (s *MonitoringService) MonitoringData(ctx context.Context) ([]domain.MonitoringRow, error) {
	if s.reader == nil || s.criticality == nil || s.anomaly == nil {
		return nil, fmt.Errorf("monitoring models or worksheet: %w", domain.ErrNotReady)
	}

	table, err := s.reader.ReadTable(ctx, s.sheet)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty: %w", s.sheet, domain.ErrNotFound)
	}
	if missing := missingColumns(table.Header, ColumnStockWH1, ColumnWIP, ColumnPlan); len(missing) > 0 {
		return nil, domain.NewMissingFieldError(missing...)
	}

	rows := make([]domain.MonitoringRow, len(table.Rows))
	predicted := 0
	for i, values := range table.Rows {
		row := domain.MonitoringRow{Values: values}

		stock, stockOK := numeric(values[ColumnStockWH1])
		wip, wipOK := numeric(values[ColumnWIP])
		plan, planOK := numeric(values[ColumnPlan])

		if stockOK && wipOK && planOK {
			crit := s.criticality.PredictFeatures(map[string]float64{
				FeatureStockLevel: stock,
				FeatureWIP:        wip,
				FeatureDeviation:  plan,
			})
			status := StatusNormal
			if strings.TrimSpace(s.anomaly.PredictFeatures(map[string]float64{
				FeatureStockLevel: stock,
				FeatureWIP:        wip,
			})) == anomalyLabel {
				status = StatusAnomalous
			}
			row.PredictedCriticality = &crit
			row.StockStatus = &status
			predicted++
		}

		if stockOK && planOK {
			days := roundTo(stock/(plan/s.workingDays), 1)
			if !math.IsNaN(days) && !math.IsInf(days, 0) {
				row.DaysOfStock = &days
			}
		}
		rows[i] = row
	}

	if predicted == 0 {
		return nil, fmt.Errorf("no row of %q has numeric %s, %s and %s: %w",
			s.sheet, ColumnStockWH1, ColumnWIP, ColumnPlan, domain.ErrNotFound)
	}

	log.Debug().Str("sheet", s.sheet).Int("rows", len(rows)).Int("predicted", predicted).Msg("monitoring: rows annotated")
	return rows, nil
}

func missingColumns(header []string, required ...string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// numeric parses a finite number with the dataset rules; anything else
// counts as absent.
func numeric(raw string) (float64, bool) {
	v, err := dataset.ParseNumber(raw)
	return v, err == nil
}
