package classifier

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/cache"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

// Cached memoizes predictions by the full classifier input. Cache failures are
// logged and never change the prediction.
type Cached struct {
	inner risk.Classifier
	cache cache.PredictionCache
}

func NewCached(inner risk.Classifier, c cache.PredictionCache) *Cached {
	if c == nil {
		c = cache.NewNoopPredictionCache()
	}
	return &Cached{inner: inner, cache: c}
}

func (c *Cached) Predict(ctx context.Context, obs domain.MaterialObservation) (string, error) {
	if label, ok, err := c.cache.GetPrediction(ctx, obs); err == nil && ok {
		return label, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("classifier: cache get failed")
	}

	label, err := c.inner.Predict(ctx, obs)
	if err != nil {
		return "", err
	}

	if err := c.cache.SetPrediction(ctx, obs, label); err != nil {
		log.Warn().Err(err).Msg("classifier: cache set failed")
	}
	return label, nil
}
