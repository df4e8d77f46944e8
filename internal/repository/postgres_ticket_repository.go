package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-triage/internal/domain"
)

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,COALESCE($6, NOW()),COALESCE($6, NOW()))
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		string(ticket.Category),
		string(ticket.Priority),
		string(ticket.Status),
		createdAtArg(ticket.CreatedAt),
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	sets, args := patchAssignments(patch, dollarPlaceholder, time.Now().UTC())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return scanTicket(r.pool.QueryRow(ctx, query, args...))
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := filterClauses(filter, dollarPlaceholder, postgresFolding)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC%s`,
		ticketColumns, where, pageClause(filter, "ALL"))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *postgresTicketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n)
	return n, err
}

func (r *postgresTicketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status=$1`, string(status)).Scan(&n)
	return n, err
}

func (r *postgresTicketRepository) EarliestCreatedAt(ctx context.Context) (*time.Time, error) {
	var earliest *time.Time
	if err := r.pool.QueryRow(ctx, `SELECT MIN(created_at) FROM tickets`).Scan(&earliest); err != nil {
		return nil, err
	}
	return earliest, nil
}

func (r *postgresTicketRepository) CountByCategory(ctx context.Context) ([]domain.GroupCount, error) {
	return r.groupCount(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`)
}

func (r *postgresTicketRepository) CountByPriority(ctx context.Context) ([]domain.GroupCount, error) {
	return r.groupCount(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
}

func (r *postgresTicketRepository) groupCount(ctx context.Context, query string) ([]domain.GroupCount, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GroupCount
	for rows.Next() {
		var gc domain.GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, err
		}
		result = append(result, gc)
	}
	return result, rows.Err()
}

// createdAtArg passes a backfilled creation time through, or nil so the store assigns one.
func createdAtArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// rowScanner is satisfied by pgx rows and database/sql rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                     domain.Ticket
		category, priority, status string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&category,
		&priority,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Category = domain.TicketCategory(category)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}
