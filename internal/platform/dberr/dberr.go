// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Classification
//
//   - pgx.ErrNoRows: NOT_FOUND
//   - 23505 unique_violation: CONSTRAINT_VIOLATION
//   - 23503 foreign_key_violation: NOT_FOUND (a referenced row does not exist)
//   - 22001 string_data_right_truncation: VALIDATION_ERROR
//   - errors that already are an [apperr.AppError]: returned unchanged
//   - anything else: INTERNAL_ERROR
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource")
	}

	// 2. Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	// 3. SQLSTATE mapping
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			return apperr.ConstraintViolation(
				fmt.Sprintf("Duplicate value violates unique constraint %q", pgError.ConstraintName), err)
		case pgerrcode.ForeignKeyViolation:
			notFound := apperr.NotFound(fmt.Sprintf("Row referenced by %q", pgError.ConstraintName))
			notFound.Cause = err
			return notFound
		case pgerrcode.StringDataRightTruncationDataException:
			tooLong := apperr.ValidationError("Value too long for its column")
			tooLong.Cause = err
			return tooLong
		}
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsNoRows reports whether err signals an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
