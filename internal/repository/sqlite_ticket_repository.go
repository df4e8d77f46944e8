package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-triage/internal/domain"
)

type sqliteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTicketRepository instantiates the database/sql repository for an
// embedded SQLite file.
func NewSQLiteTicketRepository(db *sql.DB) TicketRepository {
	return &sqliteTicketRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, category, priority, status, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?)`
	createdAt := ticket.CreatedAt.UTC()
	if ticket.CreatedAt.IsZero() {
		createdAt = r.now()
	}
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, query,
		id,
		ticket.Title,
		ticket.Description,
		string(ticket.Category),
		string(ticket.Priority),
		string(ticket.Status),
		createdAt,
		createdAt,
	); err != nil {
		return err
	}
	ticket.ID = id
	ticket.CreatedAt = createdAt
	ticket.UpdatedAt = createdAt
	return nil
}

func (r *sqliteTicketRepository) Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	sets, args := patchAssignments(patch, questionPlaceholder, r.now())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=?`, strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=?`
	return scanTicket(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := filterClauses(filter, questionPlaceholder, sqliteFolding)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC%s`,
		ticketColumns, where, pageClause(filter, "-1"))

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *sqliteTicketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n)
	return n, err
}

func (r *sqliteTicketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE status=?`, string(status)).Scan(&n)
	return n, err
}

// EarliestCreatedAt reads the column directly rather than MIN() so the
// driver still sees the DATETIME declaration and returns a time.Time.
func (r *sqliteTicketRepository) EarliestCreatedAt(ctx context.Context) (*time.Time, error) {
	var earliest time.Time
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM tickets ORDER BY created_at ASC LIMIT 1`).Scan(&earliest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &earliest, nil
}

func (r *sqliteTicketRepository) CountByCategory(ctx context.Context) ([]domain.GroupCount, error) {
	return r.groupCount(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`)
}

func (r *sqliteTicketRepository) CountByPriority(ctx context.Context) ([]domain.GroupCount, error) {
	return r.groupCount(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
}

func (r *sqliteTicketRepository) groupCount(ctx context.Context, query string) ([]domain.GroupCount, error) {
	rows, err := r.db.QueryContext(ctx, query)
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
