package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"taskmaster/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	pg := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "boom"})
	}

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique", pg(pgUniqueViolation), domain.ErrConflict},
		{"foreign key", pg(pgForeignKeyViolation), domain.ErrNotFound},
		{"check", pg(pgCheckViolation), domain.ErrBadRequest},
		{"invalid text", pg(pgInvalidText), domain.ErrBadRequest},
		{"too many connections", pg(pgTooManyConnections), domain.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrUnavailable},
		{"unknown pg code", pg("XX000"), domain.ErrInternal},
		{"plain", errors.New("boom"), domain.ErrInternal},
		{"domain passthrough", domain.Conflict("taken"), domain.ErrConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}
	assert.NoError(t, classify(nil))
}

func TestClassifyKeepsDomainDetail(t *testing.T) {
	err := classify(domain.NotFound("category not found"))
	assert.Equal(t, "category not found", domain.Detail(err))
}
