package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/spec-kit/ticket-triage/internal/domain"
)

// TicketFilter captures list query parameters. Nil fields are not filtered on.
type TicketFilter struct {
	Category   *domain.TicketCategory
	Priority   *domain.TicketPriority
	Status     *domain.TicketStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketPatch holds the fields to change in one update. Nil fields are left untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Priority == nil && p.Status == nil
}

// TicketStatsReader exposes the aggregate reads used for statistics. Each
// call is an independent read; callers must not assume a shared snapshot.
type TicketStatsReader interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error)
	EarliestCreatedAt(ctx context.Context) (*time.Time, error)
	CountByCategory(ctx context.Context) ([]domain.GroupCount, error)
	CountByPriority(ctx context.Context) ([]domain.GroupCount, error)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	TicketStatsReader
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

const ticketColumns = `id, title, description, category, priority, status, created_at, updated_at`

// placeholderFunc renders the n-th (1-based) bind parameter for a driver.
type placeholderFunc func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// CaseFoldFunc is the SQL function name under which the SQLite driver
// exposes FoldCase.
const CaseFoldFunc = "casefold"

// FoldCase applies full Unicode case folding, so "ÉCRAN" matches "écran"
// and "STRASSE" matches "Straße".
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// searchFolding pairs the SQL function applied to columns with the Go
// function applied to the search term. Both sides must fold alike.
type searchFolding struct {
	column string
	term   func(string) string
}

var (
	postgresFolding = searchFolding{column: "LOWER", term: strings.ToLower}
	sqliteFolding   = searchFolding{column: CaseFoldFunc, term: FoldCase}
)

// filterClauses renders the WHERE body and its arguments.
func filterClauses(filter TicketFilter, ph placeholderFunc, fold searchFolding) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, "category="+ph(len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		clauses = append(clauses, "priority="+ph(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, "status="+ph(len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		pattern := "%" + escapeLike(fold.term(strings.TrimSpace(*filter.SearchTerm))) + "%"
		args = append(args, pattern)
		first := ph(len(args))
		args = append(args, pattern)
		second := ph(len(args))
		clauses = append(clauses, fmt.Sprintf(`(%[1]s(title) LIKE %[2]s ESCAPE '\' OR %[1]s(description) LIKE %[3]s ESCAPE '\')`,
			fold.column, first, second))
	}
	return strings.Join(clauses, " AND "), args
}

// pageClause renders LIMIT/OFFSET; a non-positive limit returns every row.
// unlimited is the driver's spelling of "no limit".
func pageClause(filter TicketFilter, unlimited string) string {
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if filter.Limit <= 0 {
		if offset == 0 {
			return ""
		}
		return fmt.Sprintf(" LIMIT %s OFFSET %d", unlimited, offset)
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
}

// patchAssignments renders SET assignments for the non-nil patch fields.
func patchAssignments(patch TicketPatch, ph placeholderFunc, now time.Time) ([]string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"="+ph(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	add("updated_at", now)
	return sets, args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
