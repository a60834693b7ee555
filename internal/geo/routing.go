package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Route is a driving route between two points.
type Route struct {
	Hours       float64
	Coordinates []domain.Coordinates
}

// Router queries OpenRouteService driving directions.
type Router struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRouter(baseURL, apiKey string, client *http.Client) *Router {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Router{baseURL: baseURL, apiKey: apiKey, client: client}
}

type orsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (r *Router) Route(ctx context.Context, from, to domain.Coordinates) (Route, error) {
	if r.apiKey == "" {
		return Route{}, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("start", lonLat(from))
	params.Set("end", lonLat(to))
	header := http.Header{}
	header.Set("Authorization", r.apiKey)

	var resp orsResponse
	if err := getJSON(ctx, r.client, "openrouteservice", r.baseURL, params, header, &resp); err != nil {
		return Route{}, err
	}
	if len(resp.Features) == 0 {
		return Route{}, fmt.Errorf("no route between %s and %s: %w", lonLat(from), lonLat(to), ErrLocationNotFound)
	}

	f := resp.Features[0]
	route := Route{Hours: f.Properties.Summary.Duration / 3600}
	for _, c := range f.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		// GeoJSON order is lon,lat
		route.Coordinates = append(route.Coordinates, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}
	return route, nil
}

func lonLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
