// Package classifier provides risk.Classifier implementations backed by an
// exported decision tree artifact or a remote inference service.
package classifier

import (
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/cache"
	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

// New builds the configured classifier. A remote URL wins over the local
// artifact. A missing artifact is not fatal: the returned classifier is nil
// and evaluations that need it report a classifier error.
func New(cfg config.ClassifierConfig, pc cache.PredictionCache) (risk.Classifier, error) {
	var inner risk.Classifier
	switch {
	case cfg.RemoteURL != "":
		inner = NewRemote(cfg.RemoteURL, cfg.Timeout)
		log.Info().Str("url", cfg.RemoteURL).Msg("classifier: using remote inference service")
	case cfg.ArtifactPath != "":
		tree, err := LoadTree(cfg.ArtifactPath)
		if err != nil {
			log.Warn().Err(err).Msg("classifier: model artifact unavailable, buffer-only evaluation")
			return nil, nil
		}
		inner = tree
		log.Info().Str("path", cfg.ArtifactPath).Int("nodes", len(tree.Nodes)).Msg("classifier: loaded decision tree")
	default:
		return nil, nil
	}
	return NewCached(inner, pc), nil
}
