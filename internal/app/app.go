// Package app builds the shared dependencies of the server and the CLI from
// an explicit configuration.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/cache"
	"github.com/andresuchdata/ppic-monitor/internal/classifier"
	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/dataset"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/repository/postgres"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
	"github.com/andresuchdata/ppic-monitor/internal/service"
	"github.com/andresuchdata/ppic-monitor/internal/storage"
)

// Caches opens the redis caches, falling back to no-op caches when redis is
// unreachable so the service still starts.
func Caches(cfg config.CacheConfig) (cache.PredictionCache, cache.MeetingCache) {
	predictions, err := cache.NewPredictionCache(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("app: prediction cache unavailable, continuing without it")
		predictions = cache.NewNoopPredictionCache()
	}
	meeting, err := cache.NewMeetingCache(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("app: meeting cache unavailable, continuing without it")
		meeting = cache.NewNoopMeetingCache()
	}
	return predictions, meeting
}

// ArtifactStore returns nil when object storage is not configured.
func ArtifactStore(cfg config.StorageConfig) (*storage.ArtifactStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, nil
	}
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewArtifactStore(client, cfg.Prefix), nil
}

// PullArtifacts mirrors model artifacts from object storage when configured.
func PullArtifacts(ctx context.Context, cfg config.StorageConfig) {
	store, err := ArtifactStore(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("app: object storage unavailable, using local artifacts")
		return
	}
	if store == nil {
		return
	}
	paths, err := store.Pull(ctx, cfg.ArtifactDir)
	if err != nil {
		log.Warn().Err(err).Msg("app: artifact pull failed, using local artifacts")
		return
	}
	log.Info().Int("files", len(paths)).Str("dir", cfg.ArtifactDir).Msg("app: artifacts pulled")
}

// Evaluator builds the risk evaluator around the configured classifier.
// Cached predictions are dropped whenever a classifier is loaded, since they
// may come from a different model.
func Evaluator(ctx context.Context, cfg config.ClassifierConfig, predictions cache.PredictionCache) (*risk.Evaluator, error) {
	if err := cfg.ValidateLabels(); err != nil {
		return nil, err
	}
	cls, err := classifier.New(cfg, predictions)
	if err != nil {
		return nil, err
	}
	if cls != nil {
		if err := predictions.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("app: failed to clear cached predictions")
		}
	}
	vocab := risk.DefaultVocabulary
	if cfg.CustomLabels() {
		vocab = risk.Vocabulary{Critical: cfg.CriticalLabel, Watch: cfg.WatchLabel, Safe: cfg.SafeLabel}
	}
	return risk.NewEvaluator(cls, risk.WithVocabulary(vocab), risk.WithWorkers(cfg.Workers)), nil
}

// FeatureModel loads a monitoring model. A missing artifact yields nil.
func FeatureModel(path string) service.FeatureModel {
	if path == "" {
		return nil
	}
	tree, err := classifier.LoadTree(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("app: monitoring model unavailable")
		return nil
	}
	return tree
}

// Data is the observation source together with the consumption lookup
// derived from it. DB is set only for the postgres source.
type Data struct {
	Source      service.ObservationSource
	Consumption dataset.ConsumptionMap
	DB          *postgres.DB
	Repository  *postgres.ObservationRepository
}

func (d *Data) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// LoadData opens the configured observation source. The consumption map is
// read from its own file when present, otherwise derived from the observations.
func LoadData(ctx context.Context, cfg *config.Config) (*Data, error) {
	data := &Data{}
	var observations []domain.MaterialObservation

	switch cfg.Data.Source {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewObservationRepository(db)
		data.DB, data.Repository, data.Source = db, repo, repo

		if !fileExists(cfg.Data.ConsumptionPath) {
			observations, err = repo.ListObservations(ctx, postgres.ObservationFilter{})
			if err != nil {
				_ = db.Close()
				return nil, err
			}
		}
	default:
		var err error
		observations, err = dataset.LoadObservations(cfg.Data.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", cfg.Data.DatasetPath, err)
		}
		data.Source = dataset.NewMemory(observations)
		log.Info().Int("rows", len(observations)).Str("path", cfg.Data.DatasetPath).Msg("app: dataset loaded")
	}

	if fileExists(cfg.Data.ConsumptionPath) {
		m, err := dataset.LoadConsumption(cfg.Data.ConsumptionPath)
		if err != nil {
			_ = data.Close()
			return nil, fmt.Errorf("load consumption map %s: %w", cfg.Data.ConsumptionPath, err)
		}
		data.Consumption = m
	} else {
		data.Consumption = dataset.ConsumptionFromObservations(observations)
	}
	return data, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
