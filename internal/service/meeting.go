package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/ppic-monitor/internal/cache"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const (
	ColumnPartNumber  = "PART NUMBER"
	ColumnPartName    = "PART NAME"
	ColumnType        = "TYPE"
	ColumnStockHealth = "ORDER + TOLERANSI - KEDATANGAN"

	topCriticalParts = 10
)

type MeetingService struct {
	reader TableReader
	sheet  string
	cache  cache.MeetingCache
}

func NewMeetingService(reader TableReader, sheet string, cacheImpl cache.MeetingCache) *MeetingService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMeetingCache()
	}
	return &MeetingService{reader: reader, sheet: sheet, cache: cacheImpl}
}

// Dashboard summarises stock health from the recap worksheet: headline KPIs,
// the parts with the lowest stock health and per-type aggregates.
func (s *MeetingService) Dashboard(ctx context.Context) (*domain.MeetingDashboard, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("worksheet %q: %w", s.sheet, domain.ErrNotReady)
	}

	spreadsheetID := s.reader.SpreadsheetID()
	if dashboard, ok, err := s.cache.GetDashboard(ctx, spreadsheetID, s.sheet); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("meeting: cache get dashboard failed")
	}

	table, err := s.reader.ReadTable(ctx, s.sheet)
	if err != nil {
		return nil, err
	}
	dashboard, err := BuildMeetingDashboard(table)
	if err != nil {
		return nil, fmt.Errorf("worksheet %q: %w", s.sheet, err)
	}

	if err := s.cache.SetDashboard(ctx, spreadsheetID, s.sheet, dashboard); err != nil {
		log.Warn().Err(err).Msg("meeting: cache set dashboard failed")
	}
	return dashboard, nil
}

// Refresh drops cached dashboards and rebuilds from the worksheet.
func (s *MeetingService) Refresh(ctx context.Context) (*domain.MeetingDashboard, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("worksheet %q: %w", s.sheet, domain.ErrNotReady)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("meeting: cache invalidate failed")
	}
	return s.Dashboard(ctx)
}

// BuildMeetingDashboard aggregates a recap table. A stock health that is not
// numeric counts as zero.
func BuildMeetingDashboard(table domain.Table) (*domain.MeetingDashboard, error) {
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("recap is empty: %w", domain.ErrNotFound)
	}
	if missing := missingColumns(table.Header, ColumnPartNumber, ColumnPartName, ColumnType, ColumnStockHealth); len(missing) > 0 {
		return nil, domain.NewMissingFieldError(missing...)
	}

	parts := make([]domain.PartStockHealth, 0, len(table.Rows))
	dashboard := &domain.MeetingDashboard{}
	for _, values := range table.Rows {
		health, _ := numeric(values[ColumnStockHealth])
		parts = append(parts, domain.PartStockHealth{
			PartNumber:  values[ColumnPartNumber],
			PartName:    values[ColumnPartName],
			Type:        values[ColumnType],
			StockHealth: health,
		})

		dashboard.KPI.TotalParts++
		switch {
		case health < 0:
			dashboard.KPI.DeficitCount++
		case health > 0:
			dashboard.KPI.SurplusCount++
		}
	}

	dashboard.SummaryByType = summariseByType(parts)

	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].StockHealth < parts[j].StockHealth
	})
	if len(parts) > topCriticalParts {
		parts = parts[:topCriticalParts]
	}
	dashboard.TopCriticalParts = parts

	return dashboard, nil
}

// summariseByType skips parts without a type.
func summariseByType(parts []domain.PartStockHealth) []domain.TypeSummary {
	grouped := make(map[string][]float64)
	for _, p := range parts {
		if p.Type == "" {
			continue
		}
		grouped[p.Type] = append(grouped[p.Type], p.StockHealth)
	}

	summaries := make([]domain.TypeSummary, 0, len(grouped))
	for partType, values := range grouped {
		total := sumOf(values)
		mean, _ := total.Div(decimal.NewFromInt(int64(len(values)))).RoundBank(2).Float64()
		sum, _ := total.Float64()
		summaries = append(summaries, domain.TypeSummary{
			Type:             partType,
			AvgStockHealth:   mean,
			PartCount:        len(values),
			TotalStockHealth: sum,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AvgStockHealth != summaries[j].AvgStockHealth {
			return summaries[i].AvgStockHealth < summaries[j].AvgStockHealth
		}
		return summaries[i].Type < summaries[j].Type
	})
	return summaries
}
