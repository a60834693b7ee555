package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "id", q.Get("countrycodes"))
		assert.Equal(t, "PPIC-Test/1.0", r.Header.Get("User-Agent"))

		if q.Get("q") == "Nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"-6.2","lon":"106.8","display_name":"Jakarta"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, "PPIC-Test/1.0", "id", srv.Client())

	coords, err := g.Geocode(context.Background(), "Jakarta")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: -6.2, Lon: 106.8}, coords)

	_, err = g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewGeocoder(srv.URL, "ua", "", srv.Client()).Geocode(context.Background(), "Jakarta")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "rate limited", upstream.Message)
}

func TestRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "106.8,-6.2", r.URL.Query().Get("start"))
		assert.Equal(t, "106.9185,-6.1653", r.URL.Query().Get("end"))
		_, _ = w.Write([]byte(`{"features":[{"properties":{"summary":{"duration":5400}},
			"geometry":{"coordinates":[[106.8,-6.2],[106.9185,-6.1653]]}}]}`))
	}))
	defer srv.Close()

	route, err := NewRouter(srv.URL, "secret", srv.Client()).Route(context.Background(),
		domain.Coordinates{Lat: -6.2, Lon: 106.8},
		domain.Coordinates{Lat: -6.1653, Lon: 106.9185},
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, route.Hours, 1e-9)
	require.Len(t, route.Coordinates, 2)
	assert.Equal(t, domain.Coordinates{Lat: -6.2, Lon: 106.8}, route.Coordinates[0])
}

func TestRouteErrors(t *testing.T) {
	_, err := NewRouter("http://unused", "", nil).Route(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":2010,"message":"Could not find routable point"}}`))
	}))
	defer srv.Close()

	_, err = NewRouter(srv.URL, "key", srv.Client()).Route(context.Background(), domain.Coordinates{}, domain.Coordinates{})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "Could not find routable point", upstream.Message)
}

func TestNationalHolidays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"holiday_date":"2024-12-25","holiday_name":"Hari Raya Natal","is_national_holiday":true},
			{"holiday_date":"2024-12-24","holiday_name":"Cuti Bersama","is_national_holiday":false},
			{"holiday_date":"2024-8-17","holiday_name":"Hari Kemerdekaan","is_national_holiday":true},
			{"holiday_date":"bad","holiday_name":"Broken","is_national_holiday":true}
		]`))
	}))
	defer srv.Close()

	holidays, err := NewHolidayClient(srv.URL, srv.Client()).National(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Hari Kemerdekaan", holidays[0].Name)
	assert.Equal(t, "Hari Raya Natal", holidays[1].Name)
}
