package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/solidkart/internal/domain/report"
)

const (
	insertReportSQL = `INSERT INTO reports (id, content, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`

	getReportSQL = `SELECT id::text, content, created_at FROM reports WHERE id = $1`
)

var (
	_ report.Saver  = (*ReportRepository)(nil)
	_ report.Finder = (*ReportRepository)(nil)
)

// ReportRepository stores reports in PostgreSQL.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save inserts the report. Saving an ID that already exists is a no-op.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	if _, err := r.pool.Exec(ctx, insertReportSQL, rep.ID, rep.Content, rep.CreatedAt); err != nil {
		return fmt.Errorf("saving report %q: %w", rep.ID, err)
	}
	return nil
}

// Find returns the report with the given ID, or report.ErrNotFound.
func (r *ReportRepository) Find(ctx context.Context, id string) (*report.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, report.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, getReportSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding report %q: %w", id, err)
	}

	rep, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[report.Report])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("finding report %q: %w", id, err)
	}
	rep.CreatedAt = rep.CreatedAt.UTC()
	return &rep, nil
}
