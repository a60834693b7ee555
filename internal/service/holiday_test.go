package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func inf() float64 { return math.Inf(1) }

func TestUpcomingHolidays(t *testing.T) {
	source := fakeHolidays{holidays: []domain.Holiday{
		{Date: day(1), Name: "past"},
		{Date: day(10), Name: "today"},
		{Date: day(17), Name: "last day"},
		{Date: day(18), Name: "too far"},
	}}
	svc := NewHolidayService(source, 7)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }

	got, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].Name)
	assert.Equal(t, "last day", got[1].Name)
}

func TestUpcomingHolidaysErrors(t *testing.T) {
	_, err := NewHolidayService(nil, 7).Upcoming(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotReady)

	_, err = NewHolidayService(fakeHolidays{err: errors.New("down")}, 7).Upcoming(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestUpcomingHolidaysNoneAhead(t *testing.T) {
	svc := NewHolidayService(fakeHolidays{}, 0)
	svc.now = func() time.Time { return day(10) }

	got, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
