package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// observationRow maps absent numeric values to NULL.
type observationRow struct {
	ObservedAt      time.Time       `db:"observed_at"`
	Section         string          `db:"section"`
	Component       string          `db:"component"`
	AvailableStock  sql.NullFloat64 `db:"available_stock"`
	ConsumptionRate sql.NullFloat64 `db:"consumption_rate"`
	LeadTime        sql.NullFloat64 `db:"lead_time"`
}

func toRow(o domain.MaterialObservation) observationRow {
	return observationRow{
		ObservedAt:      o.ObservedAt,
		Section:         o.Section,
		Component:       o.Component,
		AvailableStock:  nullable(o.AvailableStock),
		ConsumptionRate: nullable(o.ConsumptionRate),
		LeadTime:        nullable(o.LeadTime),
	}
}

func (r observationRow) toDomain() domain.MaterialObservation {
	return domain.MaterialObservation{
		ObservedAt:      r.ObservedAt.UTC(),
		Section:         r.Section,
		Component:       r.Component,
		AvailableStock:  absentIfNull(r.AvailableStock),
		ConsumptionRate: absentIfNull(r.ConsumptionRate),
		LeadTime:        absentIfNull(r.LeadTime),
	}
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func absentIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

type ObservationRepository struct {
	db *DB
}

func NewObservationRepository(db *DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

const upsertObservationQuery = `
	INSERT INTO material_observations (
		observed_at, section, component, available_stock, consumption_rate, lead_time
	) VALUES (
		:observed_at, :section, :component, :available_stock, :consumption_rate, :lead_time
	)
	ON CONFLICT (observed_at, section, component)
	DO UPDATE SET
		available_stock = EXCLUDED.available_stock,
		consumption_rate = EXCLUDED.consumption_rate,
		lead_time = EXCLUDED.lead_time,
		updated_at = NOW()
`

// UpsertObservations writes observations in one transaction keyed by date,
// section and component.
func (r *ObservationRepository) UpsertObservations(ctx context.Context, observations []domain.MaterialObservation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, upsertObservationQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, o := range observations {
			if o.ObservedAt.IsZero() {
				return fmt.Errorf("observation %s/%s has no date: %w", o.Section, o.Component, domain.NewMissingFieldError("observed_at"))
			}
			if _, err := stmt.ExecContext(ctx, toRow(o)); err != nil {
				return fmt.Errorf("failed to upsert observation %s/%s: %w", o.Section, o.Component, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int("rows", len(observations)).Msg("observations: upserted")
	return len(observations), nil
}

func (r *ObservationRepository) ListObservations(ctx context.Context, filter ObservationFilter) ([]domain.MaterialObservation, error) {
	where, args := buildObservationFilterClause(filter, "o.", 1)
	query := `
		SELECT o.observed_at, o.section, o.component, o.available_stock, o.consumption_rate, o.lead_time
		FROM material_observations o` + where + `
		ORDER BY o.observed_at, o.section, o.component`

	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	out := make([]domain.MaterialObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ObservationRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.MaterialObservation, error) {
	return r.ListObservations(ctx, ObservationFilter{Date: date})
}

// History returns every observation of a pair, oldest first.
func (r *ObservationRepository) History(ctx context.Context, section, component string) ([]domain.MaterialObservation, error) {
	return r.ListObservations(ctx, ObservationFilter{Section: section, Component: component})
}

// AvailableDates returns snapshot dates, newest first.
func (r *ObservationRepository) AvailableDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	query := `SELECT DISTINCT observed_at FROM material_observations ORDER BY observed_at DESC`
	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, fmt.Errorf("failed to list observation dates: %w", err)
	}
	for i := range dates {
		dates[i] = dates[i].UTC()
	}
	return dates, nil
}
