package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type remoteRequest struct {
	Section   string  `json:"destination_section"`
	Component string  `json:"component_name"`
	Stock     float64 `json:"available_stock"`
	LeadTime  float64 `json:"lead_time"`
}

type remoteResponse struct {
	Label string `json:"label"`
}

// Remote calls an HTTP inference service.
type Remote struct {
	url    string
	client *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Predict(ctx context.Context, obs domain.MaterialObservation) (string, error) {
	body, err := json.Marshal(remoteRequest{
		Section:   obs.Section,
		Component: obs.Component,
		Stock:     obs.AvailableStock,
		LeadTime:  obs.LeadTime,
	})
	if err != nil {
		return "", fmt.Errorf("encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("inference service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if out.Label == "" {
		return "", fmt.Errorf("inference response has no label")
	}
	return out.Label, nil
}
