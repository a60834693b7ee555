package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const predictionKeyPrefix = "classifier:prediction"

// PredictionCache stores raw classifier labels keyed by the classifier input.
type PredictionCache interface {
	GetPrediction(ctx context.Context, obs domain.MaterialObservation) (string, bool, error)
	SetPrediction(ctx context.Context, obs domain.MaterialObservation, label string) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisPredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPredictionCache struct{}

func NewPredictionCache(cfg config.CacheConfig) (PredictionCache, error) {
	if !cfg.Enabled {
		return &noopPredictionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.PredictionTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisPredictionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPredictionCache() PredictionCache {
	return &noopPredictionCache{}
}

func (c *redisPredictionCache) GetPrediction(ctx context.Context, obs domain.MaterialObservation) (string, bool, error) {
	label, err := c.client.Get(ctx, buildPredictionKey(obs)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return label, true, nil
}

func (c *redisPredictionCache) SetPrediction(ctx context.Context, obs domain.MaterialObservation, label string) error {
	if err := c.client.Set(ctx, buildPredictionKey(obs), label, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPredictionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, predictionKeyPrefix, scanBatchSize)
}

func (n *noopPredictionCache) GetPrediction(ctx context.Context, obs domain.MaterialObservation) (string, bool, error) {
	return "", false, nil
}

func (n *noopPredictionCache) SetPrediction(ctx context.Context, obs domain.MaterialObservation, label string) error {
	return nil
}

func (n *noopPredictionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// buildPredictionKey hashes exactly the fields the classifier sees, so two
// observations that differ only in consumption rate or date share an entry.
func buildPredictionKey(obs domain.MaterialObservation) string {
	raw := strings.Join([]string{
		"section=" + obs.Section,
		"component=" + obs.Component,
		"stock=" + strconv.FormatFloat(obs.AvailableStock, 'g', -1, 64),
		"lead=" + strconv.FormatFloat(obs.LeadTime, 'g', -1, 64),
	}, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", predictionKeyPrefix, hex.EncodeToString(hash[:]))
}

func (c *redisPredictionCache) Close() error {
	return c.client.Close()
}

func (n *noopPredictionCache) Close() error {
	return nil
}
