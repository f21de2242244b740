package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// SubmissionRepository stores the append-only checklist submission feed.
type SubmissionRepository interface {
	Create(ctx context.Context, record *domain.SubmissionRecord) error
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.SubmissionRecord, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

func (r *submissionRepository) Create(ctx context.Context, record *domain.SubmissionRecord) error {
	const query = `
        INSERT INTO submissions (outlet, time_slot, submitted_by, submitted_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.Outlet,
		record.TimeSlot,
		record.SubmittedBy,
		record.Timestamp,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *submissionRepository) ListByRange(ctx context.Context, from, to time.Time) ([]domain.SubmissionRecord, error) {
	const query = `
        SELECT id, outlet, time_slot, submitted_by, submitted_at, created_at
        FROM submissions
        WHERE submitted_at >= $1 AND submitted_at < $2
        ORDER BY submitted_at ASC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubmissionRecord
	for rows.Next() {
		var record domain.SubmissionRecord
		if err := rows.Scan(
			&record.ID,
			&record.Outlet,
			&record.TimeSlot,
			&record.SubmittedBy,
			&record.Timestamp,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
