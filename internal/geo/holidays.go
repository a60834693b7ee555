package geo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type HolidayClient struct {
	url    string
	client *http.Client
}

func NewHolidayClient(url string, client *http.Client) *HolidayClient {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &HolidayClient{url: url, client: client}
}

type holidayEntry struct {
	Date     string `json:"holiday_date"`
	Name     string `json:"holiday_name"`
	National bool   `json:"is_national_holiday"`
}

// National lists national holidays sorted by date. Entries with an
// unparseable date are skipped.
func (h *HolidayClient) National(ctx context.Context) ([]domain.Holiday, error) {
	var entries []holidayEntry
	if err := getJSON(ctx, h.client, "holidays", h.url, nil, nil, &entries); err != nil {
		return nil, err
	}

	out := make([]domain.Holiday, 0, len(entries))
	for _, e := range entries {
		if !e.National {
			continue
		}
		date, err := parseHolidayDate(e.Date)
		if err != nil {
			continue
		}
		out = append(out, domain.Holiday{Date: date, Name: e.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// the API does not zero-pad months and days
func parseHolidayDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-1-2"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid holiday date %q", raw)
}
