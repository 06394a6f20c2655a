package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

// AuditRepository appends before/after snapshots to the audit_log table.
type AuditRepository struct {
	pool database.DBTX
}

// NewAuditRepository creates a new PostgreSQL-backed audit repository.
func NewAuditRepository(pool database.DBTX) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// RecordAuditEvent appends one audit entry. Snapshots are stored as JSON.
func (r *AuditRepository) RecordAuditEvent(ctx context.Context, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("marshal audit before snapshot: %w", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("marshal audit after snapshot: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, action, entity_type, entity_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		uuid.New().String(),
		action,
		entityType,
		entityID,
		beforeJSON,
		afterJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return storeErr("record audit event", err)
	}
	return nil
}
