package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/persistence"
	"github.com/spec-kit/ticket-triage/internal/repository"
	"github.com/spec-kit/ticket-triage/pkg/util/errorutil"
)

func newStore(t *testing.T) repository.TicketRepository {
	t.Helper()
	ctx := context.Background()
	lite, err := persistence.NewSQLite(ctx, filepath.Join(t.TempDir(), "service-test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lite.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, lite.DB, zap.NewNop()))
	return repository.NewSQLiteTicketRepository(lite.DB)
}

func insertTicket(t *testing.T, repo repository.TicketRepository, c domain.TicketCategory, p domain.TicketPriority, s domain.TicketStatus, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Ticket{
		Title:       "ticket",
		Description: "description",
		Category:    c,
		Priority:    p,
		Status:      s,
		CreatedAt:   createdAt,
	}))
}

func requireDomainStatus(t *testing.T, err error, status int) *errorutil.DomainError {
	t.Helper()
	require.Error(t, err)
	de := errorutil.ToDomainError(err)
	require.Equal(t, status, de.HTTPStatus, de.Message)
	return de
}
