package insight

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPartPrompt(t *testing.T) {
	row := domain.MonitoringRow{
		Values: map[string]string{
			"PART NUMBER / PART NAME": "P-001 Bracket",
			"STOCK WH1":               "120",
			"WIP":                     "30",
			"PLAN":                    "440",
		},
		PredictedCriticality: strPtr("High"),
	}

	prompt, err := PartPrompt(row, "Bahasa Indonesia")
	require.NoError(t, err)
	assert.Contains(t, prompt, "P-001 Bracket")
	assert.Contains(t, prompt, "Predicted criticality (model): High")
	assert.Contains(t, prompt, "Stock status (model): -")
	assert.True(t, strings.HasSuffix(prompt, "Answer in Bahasa Indonesia."))
}

func TestHolisticPromptLimitsTopParts(t *testing.T) {
	var parts []domain.PartStockHealth
	for i := 0; i < 8; i++ {
		parts = append(parts, domain.PartStockHealth{PartNumber: "P-00" + string(rune('0'+i)), StockHealth: float64(-10 + i)})
	}
	dash := domain.MeetingDashboard{
		KPI:              domain.MeetingKPI{TotalParts: 8, DeficitCount: 8},
		TopCriticalParts: parts,
		SummaryByType:    []domain.TypeSummary{{Type: "Steel", AvgStockHealth: -6.5, PartCount: 8}},
	}

	prompt, err := HolisticPrompt(dash, "English")
	require.NoError(t, err)
	assert.Contains(t, prompt, "P-004")
	assert.NotContains(t, prompt, "P-005")
	assert.Contains(t, prompt, "Steel: avg -6.5 over 8 parts")
}

func TestSimulationPromptFormatsInfinity(t *testing.T) {
	res := domain.SimulationResult{
		Observation: domain.MaterialObservation{Section: "Press", Component: "Bolt", AvailableStock: 10, LeadTime: 2},
		Assessment: domain.RiskAssessment{
			DepletionTime: domain.Hours(math.Inf(1)),
			BufferTime:    domain.Hours(math.Inf(1)),
			Status:        domain.StatusSafe,
		},
	}

	prompt, err := SimulationPrompt(res, "English")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Time until stock runs out: never (no consumption)")
	assert.Contains(t, prompt, "Estimated lead time: 2.0 hours")
	assert.Contains(t, prompt, "Status: safe")
}

func TestNewGeminiRequiresKeyDefaultModel(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-1.5-flash-latest")
	assert.ErrorIs(t, err, domain.ErrNotReady)
}
