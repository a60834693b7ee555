package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationAbsentQuantitiesEncodeAsNull(t *testing.T) {
	obs := MaterialObservation{
		Section:         "Press",
		Component:       "Nut",
		AvailableStock:  math.NaN(),
		ConsumptionRate: 2,
		LeadTime:        10,
	}

	data, err := json.Marshal(AssessedMaterial{Observation: obs, Error: "missing field"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"available_stock":null`)
	assert.Contains(t, string(data), `"consumption_rate":2`)

	var decoded MaterialObservation
	require.NoError(t, json.Unmarshal([]byte(`{"destination_section":"Press","component_name":"Nut","available_stock":null,"lead_time":4}`), &decoded))
	assert.Equal(t, "Press", decoded.Section)
	assert.True(t, math.IsNaN(decoded.AvailableStock))
	assert.True(t, math.IsNaN(decoded.ConsumptionRate))
	assert.Equal(t, 4.0, decoded.LeadTime)
}

func TestHoursEncoding(t *testing.T) {
	data, err := json.Marshal(RiskAssessment{DepletionTime: Hours(math.Inf(1)), BufferTime: 2.5, Status: StatusSafe})
	require.NoError(t, err)
	assert.JSONEq(t, `{"depletion_time":null,"buffer_time":2.5,"status":"safe"}`, string(data))
}
