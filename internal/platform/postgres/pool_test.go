// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/platform/ctxutil"
	"github.com/taibuivan/refcatalog/internal/platform/postgres"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

/*
TestWithTx covers the commit and rollback paths of the unit of work.
*/
func TestWithTx(t *testing.T) {
	ctx := context.Background()
	rejected := errors.New("series already claimed")

	t.Run("commit", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := postgres.WithTx(ctx, mock, func(pgx.Tx) error { return nil })
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_rolls_back", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := postgres.WithTx(ctx, mock, func(pgx.Tx) error { return rejected })
		assert.Equal(t, rejected, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed_rollback_keeps_error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		logs := new(bytes.Buffer)
		logged := ctxutil.WithLogger(ctx, slog.New(slog.NewTextHandler(logs, nil)))

		err := postgres.WithTx(logged, mock, func(pgx.Tx) error { return rejected })
		assert.Equal(t, rejected, err, "the unit of work's error must come back unchanged")
		assert.Contains(t, logs.String(), "postgres_rollback_failed")
		assert.Contains(t, logs.String(), "connection lost")
	})

	t.Run("begin_fails", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many clients"))

		called := false
		err := postgres.WithTx(ctx, mock, func(pgx.Tx) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin")
		assert.False(t, called)
	})

	t.Run("panic_rolls_back", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = postgres.WithTx(ctx, mock, func(pgx.Tx) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
