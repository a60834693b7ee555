package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/insight"
)

// InsightService asks the language model for narrative analysis. A generator
// failure is returned to the caller, never replaced with placeholder text.
type InsightService struct {
	generator insight.Generator
	language  string
}

func NewInsightService(generator insight.Generator, language string) *InsightService {
	if language == "" {
		language = "Bahasa Indonesia"
	}
	return &InsightService{generator: generator, language: language}
}

func (s *InsightService) PartInsight(ctx context.Context, row domain.MonitoringRow) (string, error) {
	if len(row.Values) == 0 {
		return "", domain.NewMissingFieldError("part_data")
	}
	prompt, err := insight.PartPrompt(row, s.language)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, "part", prompt)
}

func (s *InsightService) HolisticInsight(ctx context.Context, dashboard domain.MeetingDashboard) (string, error) {
	if dashboard.KPI.TotalParts == 0 && len(dashboard.TopCriticalParts) == 0 {
		return "", domain.NewMissingFieldError("rekap_analysis")
	}
	prompt, err := insight.HolisticPrompt(dashboard, s.language)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, "holistic", prompt)
}

func (s *InsightService) SimulationInsight(ctx context.Context, result domain.SimulationResult) (string, error) {
	if result.Observation.Section == "" || result.Observation.Component == "" {
		return "", domain.NewMissingFieldError("simulation_result")
	}
	prompt, err := insight.SimulationPrompt(result, s.language)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, "simulation", prompt)
}

func (s *InsightService) generate(ctx context.Context, kind, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("language model: %w", domain.ErrNotReady)
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("insight: generation failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%s insight: %w: %w", kind, domain.ErrUpstream, err)
	}
	return text, nil
}
