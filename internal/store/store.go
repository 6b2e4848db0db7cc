// File: internal/store/store.go
// Persistence for evaluation audit records. Two sinks share one contract:
// JSON files on disk (the default, one file per record) and a Postgres
// table for setups that aggregate many experiments.
package store

import (
	"context"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// AuditStore persists evaluation audit records for reproducibility audits.
type AuditStore interface {
	Save(ctx context.Context, record schemas.AuditRecord) error
}
