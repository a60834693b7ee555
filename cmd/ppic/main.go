package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/repository/postgres"
	"github.com/andresuchdata/ppic-monitor/pkg/logger"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		Value:   cfg.Database.URL(),
		EnvVars: []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to ping database")
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, errors.New("database connection not initialised")
	}
	return db, nil
}

// repositoryFrom reuses the CLI's pgx connection for the sqlx repository.
func repositoryFrom(c *cli.Context) (*postgres.ObservationRepository, error) {
	db, err := dbFrom(c)
	if err != nil {
		return nil, err
	}
	return postgres.NewObservationRepository(postgres.Wrap(sqlx.NewDb(db, "pgx"))), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	app := &cli.App{
		Name:  "ppic",
		Usage: "Material risk monitor operations",
		Commands: []*cli.Command{
			evaluateCommand(cfg),
			{
				Name:  "migrate",
				Usage: "Apply pending SQL migrations",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory containing *.sql migrations",
						Value:   "./scripts/migrations",
						EnvVars: []string{"MIGRATIONS_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:      "seed",
				Usage:     "Load a CSV or XLSX dataset into postgres",
				ArgsUsage: "<dataset file>",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeed,
			},
			driveCommand(cfg),
			artifactsCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Stack().Err(err).Msg("Command failed")
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(c.Context, db, c.String("dir"))
	if err != nil {
		return errors.Wrap(err, "migration failed")
	}
	logger.Log.Info().Int("applied", len(applied)).Strs("migrations", applied).Msg("Migrations complete")
	return nil
}
