package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ReasonRepository manages ticket reasons and their SLA policies.
type ReasonRepository interface {
	Create(ctx context.Context, reason *domain.Reason) error
	Update(ctx context.Context, reason *domain.Reason) error
	GetByID(ctx context.Context, id string) (*domain.Reason, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.Reason, error)
}

type reasonRepository struct {
	pool *pgxpool.Pool
}

// NewReasonRepository builds the repository.
func NewReasonRepository(pool *pgxpool.Pool) ReasonRepository {
	return &reasonRepository{pool: pool}
}

func (r *reasonRepository) Create(ctx context.Context, reason *domain.Reason) error {
	const query = `
        INSERT INTO ticket_reasons (department_id, name, response_minutes, resolution_minutes, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		reason.DepartmentID,
		reason.Name,
		reason.ResponseMinutes,
		reason.ResolutionMinutes,
		reason.IsActive,
	).Scan(&reason.ID, &reason.CreatedAt, &reason.UpdatedAt)
}

func (r *reasonRepository) Update(ctx context.Context, reason *domain.Reason) error {
	const query = `
        UPDATE ticket_reasons SET name=$1, response_minutes=$2, resolution_minutes=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		reason.Name,
		reason.ResponseMinutes,
		reason.ResolutionMinutes,
		reason.IsActive,
		reason.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reasonRepository) GetByID(ctx context.Context, id string) (*domain.Reason, error) {
	const query = `
        SELECT id, department_id, name, response_minutes, resolution_minutes, is_active, created_at, updated_at
        FROM ticket_reasons WHERE id=$1`
	var reason domain.Reason
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&reason.ID,
		&reason.DepartmentID,
		&reason.Name,
		&reason.ResponseMinutes,
		&reason.ResolutionMinutes,
		&reason.IsActive,
		&reason.CreatedAt,
		&reason.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *reasonRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Reason, error) {
	const query = `
        SELECT id, department_id, name, response_minutes, resolution_minutes, is_active, created_at, updated_at
        FROM ticket_reasons WHERE department_id=$1 AND is_active = TRUE ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reason
	for rows.Next() {
		var reason domain.Reason
		if err := rows.Scan(
			&reason.ID,
			&reason.DepartmentID,
			&reason.Name,
			&reason.ResponseMinutes,
			&reason.ResolutionMinutes,
			&reason.IsActive,
			&reason.CreatedAt,
			&reason.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reason)
	}
	return result, rows.Err()
}
