package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func result(component string, status domain.Status, buffer float64) Result {
	return Result{
		Observation: domain.MaterialObservation{Component: component},
		Assessment:  domain.RiskAssessment{Status: status, BufferTime: domain.Hours(buffer)},
	}
}

func TestSortResults(t *testing.T) {
	results := []Result{
		result("a", domain.StatusSafe, 4),
		result("b", domain.StatusWatch, 9),
		{Observation: domain.MaterialObservation{Component: "err"}, Err: errors.New("x")},
		result("c", domain.StatusCritical, -1),
		result("d", domain.StatusWatch, 2),
		result("e", domain.StatusCritical, -8),
		result("f", domain.StatusSafe, math.Inf(1)),
		result("g", domain.StatusSafe, 1),
	}

	SortResults(results)

	var order []string
	for _, r := range results {
		order = append(order, r.Observation.Component)
	}
	assert.Equal(t, []string{"e", "c", "d", "b", "g", "a", "f", "err"}, order)
}

func TestLess(t *testing.T) {
	critical := domain.RiskAssessment{Status: domain.StatusCritical, BufferTime: 0}
	watch := domain.RiskAssessment{Status: domain.StatusWatch, BufferTime: -100}
	assert.True(t, Less(critical, watch))
	assert.False(t, Less(watch, critical))
	assert.False(t, Less(critical, critical))
}
