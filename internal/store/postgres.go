// File: internal/store/postgres.go
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// DBPool abstracts the pgxpool.Pool so tests can mock it.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const sqlInsertAuditRecord = `
        INSERT INTO evaluation_logs (id, experiment_id, kind, payload, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (experiment_id) DO UPDATE SET
            kind = EXCLUDED.kind,
            payload = EXCLUDED.payload,
            created_at = EXCLUDED.created_at;
    `

// PostgresStore persists audit records into an evaluation_logs table, the
// full record as a jsonb payload alongside the keys audits filter on.
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresStore creates the store and verifies the connection.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{
		pool: pool,
		log:  logger.Named("store.postgres"),
	}, nil
}

// Save upserts the record keyed by experiment id.
func (s *PostgresStore) Save(ctx context.Context, record schemas.AuditRecord) error {
	if record.ExperimentID == "" {
		return fmt.Errorf("audit record requires an experiment id")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	createdAt := record.Timestamp.UTC()
	_, err = s.pool.Exec(ctx, sqlInsertAuditRecord,
		uuid.New().String(), record.ExperimentID, string(record.Kind), payload, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	s.log.Debug("Audit record persisted",
		zap.String("experiment_id", record.ExperimentID))
	return nil
}
