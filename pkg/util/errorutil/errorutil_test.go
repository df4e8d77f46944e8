package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	validation := NewValidationError("description required", nil)
	de := ToDomainError(fmt.Errorf("wrapped: %w", validation))
	require.NotNil(t, de)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, "description required", de.Message)

	assert.Equal(t, http.StatusNotFound, ToDomainError(sql.ErrNoRows).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, ToDomainError(fmt.Errorf("get: %w", pgx.ErrNoRows)).HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)
	assert.EqualError(t, internal, "internal server error: boom")
}

func TestNewNotFoundMessage(t *testing.T) {
	err := NewNotFound("ticket", map[string]any{"id": "abc"})
	de := ToDomainError(err)
	assert.Equal(t, "ticket not found", de.Message)
	assert.Equal(t, "abc", de.Details["id"])
}
