package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const sampleCSV = `tanggal,seksi_tujuan,nama_komponen,stok_tersedia,konsumsi_per_jam,lead_time
2024-03-01,Press,Bolt M8,120,10,4
2024-03-01,Welding,Nut M6,"1,500",25.5,2
2024-03-02,Press,Bolt M8,30,10,4
,,,,,
2024-03-02,Welding,Nut M6,,25.5,2
`

func TestReadObservations(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, obs, 4)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), obs[0].ObservedAt)
	assert.Equal(t, "Press", obs[0].Section)
	assert.Equal(t, "Bolt M8", obs[0].Component)
	assert.Equal(t, 120.0, obs[0].AvailableStock)
	assert.Equal(t, 1500.0, obs[1].AvailableStock)
	assert.Equal(t, 25.5, obs[1].ConsumptionRate)
	assert.True(t, math.IsNaN(obs[3].AvailableStock), "empty cell must stay absent")
}

func TestReadObservationsAcceptsEnglishHeaders(t *testing.T) {
	raw := "Date,Destination Section,Component Name,Available Stock,Consumption Rate,Lead Time\n" +
		"01/03/2024,Press,Bolt M8,5,1,2\n"
	obs, err := ReadObservations(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, time.March, obs[0].ObservedAt.Month())
	assert.Equal(t, 2.0, obs[0].LeadTime)
}

func TestReadObservationsMissingColumn(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("tanggal,seksi_tujuan,nama_komponen,stok_tersedia\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	var mf *domain.MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"konsumsi_per_jam", "lead_time"}, mf.Fields)
}

func TestReadObservationsRowErrors(t *testing.T) {
	header := "tanggal,seksi_tujuan,nama_komponen,stok_tersedia,konsumsi_per_jam,lead_time\n"
	cases := map[string]string{
		"negative stock": "2024-03-01,Press,Bolt,-1,10,4\n",
		"bad number":     "2024-03-01,Press,Bolt,abc,10,4\n",
		"decimal comma":  "2024-03-01,Press,Bolt,\"1,5\",10,4\n",
		"bad date":       "yesterday,Press,Bolt,1,10,4\n",
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadObservations(strings.NewReader(header + row))
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 2, rowErr.Line)
		})
	}
}

func TestParseNumber(t *testing.T) {
	valid := map[string]float64{
		"1500":       1500,
		"1,500":      1500,
		"12,000.75":  12000.75,
		"-1,234,567": -1234567,
		" 25.5 ":     25.5,
	}
	for raw, want := range valid {
		got, err := ParseNumber(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"1,5", "1,50", "12,34,567", ",500", "1,500,", "NaN", "Inf", "abc", ""} {
		_, err := ParseNumber(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoadObservationsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"tanggal", "seksi_tujuan", "nama_komponen", "stok_tersedia", "konsumsi_per_jam", "lead_time"},
		{"2024-03-01", "Press", "Bolt M8", "120", "10", "4"},
		{"2024-03-01", "Gensub", "Bracket", "0", "3", "1"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	obs, err := LoadObservations(path)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "Gensub", obs[1].Section)
	assert.Equal(t, 0.0, obs[1].AvailableStock)
}

func TestReadConsumption(t *testing.T) {
	raw := "seksi_tujuan,nama_komponen,konsumsi_per_jam\nPress,Bolt M8,10\nWelding,Nut M6,0\n"
	m, err := ReadConsumption(strings.NewReader(raw))
	require.NoError(t, err)

	rate, ok := m.Lookup("Press", "Bolt M8")
	assert.True(t, ok)
	assert.Equal(t, 10.0, rate)

	_, ok = m.Lookup("Press", "Nut M6")
	assert.False(t, ok)

	assert.Equal(t, []string{"Press", "Welding"}, m.Sections())
	assert.Equal(t, []string{"Bolt M8", "Nut M6"}, m.Components())
}

func TestConsumptionFromObservationsKeepsLatest(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader(
		"tanggal,seksi_tujuan,nama_komponen,stok_tersedia,konsumsi_per_jam,lead_time\n" +
			"2024-03-02,Press,Bolt,1,12,1\n" +
			"2024-03-01,Press,Bolt,1,10,1\n",
	))
	require.NoError(t, err)

	rate, ok := ConsumptionFromObservations(obs).Lookup("Press", "Bolt")
	require.True(t, ok)
	assert.Equal(t, 12.0, rate)
}

func TestConsumptionFromObservationsSkipsUnusableRows(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader(
		"tanggal,seksi_tujuan,nama_komponen,stok_tersedia,konsumsi_per_jam,lead_time\n" +
			"2024-03-01,Press,Bolt,1,4,1\n" +
			"2024-03-02,Press,Bolt,1,,1\n" +
			"2024-03-02,Press,Nut,1,,1\n" +
			"2024-03-02,,Washer,1,3,1\n",
	))
	require.NoError(t, err)
	obs = append(obs, domain.MaterialObservation{
		ObservedAt:      time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		Section:         "Press",
		Component:       "Bolt",
		ConsumptionRate: math.Inf(1),
	})

	m := ConsumptionFromObservations(obs)

	rate, ok := m.Lookup("Press", "Bolt")
	require.True(t, ok)
	assert.Equal(t, 4.0, rate)

	_, ok = m.Lookup("Press", "Nut")
	assert.False(t, ok, "pair with only blank rates")
	_, ok = m.Lookup("", "Washer")
	assert.False(t, ok, "row without section")
	assert.Equal(t, []string{"Press"}, m.Sections())
}

func TestMemory(t *testing.T) {
	obs, err := ReadObservations(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	m := NewMemory(obs)
	ctx := context.Background()

	dates, err := m.AvailableDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].After(dates[1]), "newest first")

	rows, err := m.ListByDate(ctx, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	history, err := m.History(ctx, "Press", "Bolt M8")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 120.0, history[0].AvailableStock)
	assert.Equal(t, 30.0, history[1].AvailableStock)
}

func TestLoadObservationsMissingFile(t *testing.T) {
	_, err := LoadObservations(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
