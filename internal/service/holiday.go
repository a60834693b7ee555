package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type HolidayService struct {
	source      HolidaySource
	horizonDays int
	now         func() time.Time
}

func NewHolidayService(source HolidaySource, horizonDays int) *HolidayService {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	return &HolidayService{source: source, horizonDays: horizonDays, now: time.Now}
}

// Upcoming returns national holidays from today through today+horizon, inclusive.
func (s *HolidayService) Upcoming(ctx context.Context) ([]domain.Holiday, error) {
	if s.source == nil {
		return nil, fmt.Errorf("holiday source: %w", domain.ErrNotReady)
	}
	all, err := s.source.National(ctx)
	if err != nil {
		return nil, fmt.Errorf("holidays: %w: %w", domain.ErrUpstream, err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := today.AddDate(0, 0, s.horizonDays)

	upcoming := make([]domain.Holiday, 0)
	for _, h := range all {
		day := time.Date(h.Date.Year(), h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(today) || day.After(last) {
			continue
		}
		upcoming = append(upcoming, h)
	}
	return upcoming, nil
}
