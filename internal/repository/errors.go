package repository

import (
	"context"
	"errors"

	"taskmaster/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgInvalidText         = "22P02"
	pgTooManyConnections  = "53300"
	pgAdminShutdown       = "57P01"
	pgCannotConnectNow    = "57P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// classify turns a storage error into a domain error. Errors that already
// carry a kind pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("not found")
	}

	switch pgCode(err) {
	case pgUniqueViolation:
		return domain.Conflict("already exists")
	case pgForeignKeyViolation:
		return domain.NotFound("referenced row not found")
	case pgCheckViolation, pgNotNullViolation, pgInvalidText:
		return domain.BadRequest("invalid value")
	case pgTooManyConnections, pgAdminShutdown, pgCannotConnectNow:
		return domain.Unavailable("database unavailable", err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Unavailable("database unavailable", err)
	}
	return domain.Internal("database error", err)
}
