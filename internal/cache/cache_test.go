package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

func TestBuildPredictionKeyUsesClassifierInputsOnly(t *testing.T) {
	a := domain.MaterialObservation{
		ObservedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Section:         "Press",
		Component:       "Bolt M8",
		AvailableStock:  120,
		ConsumptionRate: 10,
		LeadTime:        4,
	}
	b := a
	b.ObservedAt = a.ObservedAt.AddDate(0, 0, 1)
	b.ConsumptionRate = 99

	assert.Equal(t, buildPredictionKey(a), buildPredictionKey(b))
	assert.True(t, strings.HasPrefix(buildPredictionKey(a), predictionKeyPrefix+":"))

	c := a
	c.AvailableStock = 121
	assert.NotEqual(t, buildPredictionKey(a), buildPredictionKey(c))
}

func TestBuildMeetingKey(t *testing.T) {
	assert.Equal(t, buildMeetingKey("sheet-1", "REKAP"), buildMeetingKey("sheet-1", "REKAP"))
	assert.NotEqual(t, buildMeetingKey("sheet-1", "REKAP"), buildMeetingKey("sheet-2", "REKAP"))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@example:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "example:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestDisabledCachesAreNoop(t *testing.T) {
	ctx := context.Background()

	pc, err := NewPredictionCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, pc.SetPrediction(ctx, domain.MaterialObservation{}, "Hijau"))
	_, ok, err := pc.GetPrediction(ctx, domain.MaterialObservation{})
	require.NoError(t, err)
	assert.False(t, ok)

	mc, err := NewMeetingCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	_, ok, err = mc.GetDashboard(ctx, "id", "REKAP")
	require.NoError(t, err)
	assert.False(t, ok)
}
