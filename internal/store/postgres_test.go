// File: internal/store/postgres_test.go
package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openpolicylab/debatesim/api/schemas"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// TestNewPostgresStore verifies the connection check at construction.
func TestNewPostgresStore(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectPing()

		pg, err := NewPostgresStore(context.Background(), pool, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotNil(t, pg)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("failed ping rejects construction", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectPing().WillReturnError(errors.New("connection refused"))

		_, err := NewPostgresStore(context.Background(), pool, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping")
	})
}

// TestPostgresStore_Save verifies the upsert shape and argument mapping.
func TestPostgresStore_Save(t *testing.T) {
	record := testRecord()

	t.Run("successful upsert", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectPing()
		pool.ExpectExec("INSERT INTO evaluation_logs").
			WithArgs(pgxmock.AnyArg(), record.ExperimentID, string(record.Kind), pgxmock.AnyArg(), record.Timestamp.UTC()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		pg, err := NewPostgresStore(context.Background(), pool, zaptest.NewLogger(t))
		require.NoError(t, err)

		require.NoError(t, pg.Save(context.Background(), record))
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("exec failure surfaces", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectPing()
		pool.ExpectExec("INSERT INTO evaluation_logs").
			WithArgs(pgxmock.AnyArg(), record.ExperimentID, string(record.Kind), pgxmock.AnyArg(), record.Timestamp.UTC()).
			WillReturnError(errors.New("table missing"))

		pg, err := NewPostgresStore(context.Background(), pool, zaptest.NewLogger(t))
		require.NoError(t, err)

		err = pg.Save(context.Background(), record)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert")
	})

	t.Run("missing experiment id rejected without touching the pool", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectPing()

		pg, err := NewPostgresStore(context.Background(), pool, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.Error(t, pg.Save(context.Background(), schemas.AuditRecord{}))
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}
