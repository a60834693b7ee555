package drive

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/dataset"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// ObservationWriter persists parsed observations.
type ObservationWriter interface {
	UpsertObservations(ctx context.Context, observations []domain.MaterialObservation) (int, error)
}

type IngestService struct {
	downloader *Downloader
	source     Source
	repo       ObservationWriter
	workDir    string
}

func NewIngestService(source Source, repo ObservationWriter, workDir string) *IngestService {
	return &IngestService{
		downloader: NewDownloader(source),
		source:     source,
		repo:       repo,
		workDir:    workDir,
	}
}

// IngestFile downloads one dataset file, parses it and upserts its rows. The
// whole file is rejected if any row fails to parse.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) (int, error) {
	f, err := s.source.GetFile(ctx, fileID)
	if err != nil {
		return 0, err
	}
	if !isDataset(f.Name) {
		return 0, fmt.Errorf("file %s is not a csv or xlsx dataset", f.Name)
	}

	dir, err := os.MkdirTemp(s.workDir, "ingest-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path, err := s.downloader.download(ctx, f, dir)
	if err != nil {
		return 0, err
	}

	observations, err := dataset.LoadObservations(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", f.Name, err)
	}

	n, err := s.repo.UpsertObservations(ctx, observations)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", f.Name, err)
	}

	log.Info().Str("file", f.Name).Int("rows", n).Msg("drive: ingested dataset")
	return n, nil
}
