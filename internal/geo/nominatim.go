package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type Geocoder struct {
	baseURL     string
	userAgent   string
	countryCode string
	client      *http.Client
}

func NewGeocoder(baseURL, userAgent, countryCode string, client *http.Client) *Geocoder {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Geocoder{baseURL: baseURL, userAgent: userAgent, countryCode: countryCode, client: client}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves free text to the best matching point.
func (g *Geocoder) Geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if g.countryCode != "" {
		params.Set("countrycodes", g.countryCode)
	}
	header := http.Header{}
	header.Set("User-Agent", g.userAgent)

	var places []nominatimPlace
	if err := getJSON(ctx, g.client, "nominatim", g.baseURL, params, header, &places); err != nil {
		return domain.Coordinates{}, err
	}
	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%q: %w", query, ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim lon %q: %w", places[0].Lon, err)
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
