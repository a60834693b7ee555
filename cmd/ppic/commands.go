package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/ppic-monitor/internal/alert"
	"github.com/andresuchdata/ppic-monitor/internal/app"
	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/dataset"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/drive"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
	"github.com/andresuchdata/ppic-monitor/internal/service"
	"github.com/andresuchdata/ppic-monitor/pkg/logger"
)

const dateLayout = "2006-01-02"

func evaluateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate every material of one snapshot date and print the ranked table",
		Flags: []cli.Flag{
			newDBURLFlag(cfg),
			&cli.StringFlag{
				Name:  "source",
				Usage: "Observation source: csv or postgres",
				Value: cfg.Data.Source,
			},
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Dataset file for the csv source",
				Value: cfg.Data.DatasetPath,
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Snapshot date (YYYY-MM-DD), defaults to the latest",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Publish Critical materials to the alerts topic",
			},
		},
		Before: func(c *cli.Context) error {
			if c.String("source") == "postgres" {
				return initDB(c)
			}
			return nil
		},
		After: closeDB,
		Action: func(c *cli.Context) error {
			return runEvaluate(c, cfg)
		},
	}
}

func runEvaluate(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context

	var source service.ObservationSource
	if c.String("source") == "postgres" {
		repo, err := repositoryFrom(c)
		if err != nil {
			return err
		}
		source = repo
	} else {
		observations, err := dataset.LoadObservations(c.String("dataset"))
		if err != nil {
			return errors.Wrap(err, "failed to load dataset")
		}
		source = dataset.NewMemory(observations)
	}

	date, err := snapshotDate(c, source)
	if err != nil {
		return err
	}
	observations, err := source.ListByDate(ctx, date)
	if err != nil {
		return errors.Wrapf(err, "failed to list observations for %s", date.Format(dateLayout))
	}

	predictions, _ := app.Caches(cfg.Cache)
	defer predictions.Close()
	evaluator, err := app.Evaluator(ctx, cfg.Classifier, predictions)
	if err != nil {
		return err
	}

	started := time.Now()
	results := evaluator.EvaluateBatch(ctx, observations)
	if err := ctx.Err(); err != nil {
		return err
	}
	risk.SortResults(results)
	logger.Log.Info().
		Str("date", date.Format(dateLayout)).
		Int("materials", len(results)).
		Dur("elapsed", time.Since(started)).
		Msg("Evaluation complete")

	if err := writeResults(c.App.Writer, results); err != nil {
		return err
	}

	if !c.Bool("publish") {
		return nil
	}
	publisher := alert.NewPublisher(cfg.Alerts.Brokers, cfg.Alerts.Topic)
	defer publisher.Close()
	published, err := publisher.PublishCritical(ctx, results)
	if err != nil {
		return errors.Wrap(err, "failed to publish alerts")
	}
	logger.Log.Info().Int("published", published).Str("topic", cfg.Alerts.Topic).Msg("Critical alerts published")
	return nil
}

func snapshotDate(c *cli.Context, source service.ObservationSource) (time.Time, error) {
	if raw := c.String("date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid --date %q", raw)
		}
		return date, nil
	}
	dates, err := source.AvailableDates(c.Context)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to list snapshot dates")
	}
	if len(dates) == 0 {
		return time.Time{}, errors.New("no snapshot dates available")
	}
	return dates[0], nil
}

// writeResults prints results in the order given. Failed rows show the error
// in place of the status.
func writeResults(out io.Writer, results []risk.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tSECTION\tCOMPONENT\tSTOCK\tRATE\tLEAD\tDEPLETION\tBUFFER")
	for _, r := range results {
		obs := r.Observation
		status, depletion, buffer := "error: "+errorText(r.Err), "-", "-"
		if r.Err == nil {
			status = string(r.Assessment.Status)
			depletion = formatHours(r.Assessment.DepletionTime)
			buffer = formatHours(r.Assessment.BufferTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			status, obs.Section, obs.Component,
			formatFloat(obs.AvailableStock), formatFloat(obs.ConsumptionRate), formatFloat(obs.LeadTime),
			depletion, buffer)
	}
	return w.Flush()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func formatHours(h domain.Hours) string {
	if h.IsInf() {
		return "inf"
	}
	return strconv.FormatFloat(float64(h), 'f', 2, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runSeed(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("dataset file argument is required")
	}
	observations, err := dataset.LoadObservations(path)
	if err != nil {
		return errors.Wrap(err, "failed to load dataset")
	}
	repo, err := repositoryFrom(c)
	if err != nil {
		return err
	}
	n, err := repo.UpsertObservations(c.Context, observations)
	if err != nil {
		return errors.Wrap(err, "failed to upsert observations")
	}
	logger.Log.Info().Int("rows", n).Str("file", path).Msg("Seeding complete")
	return nil
}

func driveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "drive",
		Usage: "Google Drive dataset operations",
		Subcommands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Download every CSV and XLSX dataset in a Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Drive folder ID",
						Value: cfg.Drive.FolderID,
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Local download directory",
						Value: cfg.Drive.DownloadDir,
					},
				},
				Action: func(c *cli.Context) error {
					svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
					if err != nil {
						return errors.Wrap(err, "failed to create drive client")
					}
					paths, err := drive.NewDownloader(svc).DownloadFolder(c.Context, drive.DownloadOptions{
						FolderID:    c.String("folder"),
						DownloadDir: c.String("dir"),
					})
					if err != nil {
						return errors.Wrap(err, "drive sync failed")
					}
					for _, p := range paths {
						fmt.Fprintln(c.App.Writer, p)
					}
					logger.Log.Info().Int("files", len(paths)).Msg("Drive sync complete")
					return nil
				},
			},
		},
	}
}

func artifactsCommand(cfg *config.Config) *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Usage: "Local artifact directory",
		Value: cfg.Storage.ArtifactDir,
	}
	transfer := func(push bool) cli.ActionFunc {
		return func(c *cli.Context) error {
			store, err := app.ArtifactStore(cfg.Storage)
			if err != nil {
				return errors.Wrap(err, "failed to create object storage client")
			}
			if store == nil {
				return errors.New("object storage is not configured (STORAGE_ENDPOINT, STORAGE_BUCKET)")
			}
			var paths []string
			if push {
				paths, err = store.Push(c.Context, c.String("dir"))
			} else {
				paths, err = store.Pull(c.Context, c.String("dir"))
			}
			if err != nil {
				return err
			}
			logger.Log.Info().Int("files", len(paths)).Bool("push", push).Msg("Artifact transfer complete")
			return nil
		}
	}
	return &cli.Command{
		Name:  "artifacts",
		Usage: "Synchronise model artifacts with object storage",
		Subcommands: []*cli.Command{
			{Name: "pull", Usage: "Download artifacts", Flags: []cli.Flag{dirFlag}, Action: transfer(false)},
			{Name: "push", Usage: "Upload artifacts", Flags: []cli.Flag{dirFlag}, Action: transfer(true)},
		},
	}
}
