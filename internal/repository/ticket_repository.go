package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListActive(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, creator_user_id, department_id, reason_id, assigned_to,
            title, description, status, priority, sla_response_at, sla_resolution_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.CreatorID,
		ticket.DepartmentID,
		ticket.ReasonID,
		ticket.AssignedTo,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.SLAResponseAt,
		ticket.SLAResolutionAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update persists mutable ticket fields. The WHERE predicate excludes
// terminal rows so a concurrent finish or delete cannot be overwritten;
// SLA deadlines and creation fields are deliberately absent from the SET
// list.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to=$1, status=$2, priority=$3, deletion_reason=$4,
            responded_at=$5, resolved_at=$6, finished_at=$7, updated_at=NOW()
        WHERE id=$8 AND status NOT IN ('finished','deleted')`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedTo,
		ticket.Status,
		ticket.Priority,
		ticket.DeletionReason,
		ticket.RespondedAt,
		ticket.ResolvedAt,
		ticket.FinishedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const ticketColumns = `
        t.id, t.external_key, t.creator_user_id, t.department_id, t.reason_id, t.assigned_to,
        t.title, t.description, t.status, t.priority, t.deletion_reason,
        t.sla_response_at, t.sla_resolution_at, t.responded_at, t.resolved_at, t.finished_at,
        t.created_at, t.updated_at,
        d.name, r.name, cu.name, au.name`

const ticketJoins = `
        FROM tickets t
        JOIN departments d ON d.id = t.department_id
        JOIN ticket_reasons r ON r.id = t.reason_id
        JOIN users cu ON cu.id = t.creator_user_id
        LEFT JOIN users au ON au.id = t.assigned_to`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoins + ` WHERE t.id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListActive returns the board collection with joined labels, newest
// first. Deleted tickets are hidden; finished tickets stay visible in
// their column. No pagination.
func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoins + `
        WHERE t.status <> 'deleted'
        ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.CreatorID,
		&ticket.DepartmentID,
		&ticket.ReasonID,
		&ticket.AssignedTo,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.DeletionReason,
		&ticket.SLAResponseAt,
		&ticket.SLAResolutionAt,
		&ticket.RespondedAt,
		&ticket.ResolvedAt,
		&ticket.FinishedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DepartmentName,
		&ticket.ReasonName,
		&ticket.CreatorName,
		&ticket.AssigneeName,
	)
}
