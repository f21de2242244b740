package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// RosterRepository stores per-date scheduling reference data.
type RosterRepository interface {
	Create(ctx context.Context, entry *domain.ScheduledEmployee) error
	ListByDate(ctx context.Context, date time.Time) ([]domain.ScheduledEmployee, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.ScheduledEmployee, error)
}

type rosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository instantiates the repository.
func NewRosterRepository(pool *pgxpool.Pool) RosterRepository {
	return &rosterRepository{pool: pool}
}

func (r *rosterRepository) Create(ctx context.Context, entry *domain.ScheduledEmployee) error {
	const query = `
        INSERT INTO roster_entries (outlet, time_slot, employee_id, start_time, end_time, roster_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.Outlet,
		entry.TimeSlot,
		entry.EmployeeID,
		entry.StartTime,
		entry.EndTime,
		entry.Date,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *rosterRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.ScheduledEmployee, error) {
	return r.ListByRange(ctx, date, date.AddDate(0, 0, 1))
}

func (r *rosterRepository) ListByRange(ctx context.Context, from, to time.Time) ([]domain.ScheduledEmployee, error) {
	const query = `
        SELECT id, outlet, time_slot, employee_id, start_time, end_time, roster_date, created_at
        FROM roster_entries
        WHERE roster_date >= $1 AND roster_date < $2
        ORDER BY roster_date ASC, outlet ASC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ScheduledEmployee
	for rows.Next() {
		var entry domain.ScheduledEmployee
		if err := rows.Scan(
			&entry.ID,
			&entry.Outlet,
			&entry.TimeSlot,
			&entry.EmployeeID,
			&entry.StartTime,
			&entry.EndTime,
			&entry.Date,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
