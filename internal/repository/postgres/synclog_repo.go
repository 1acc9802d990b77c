package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-admissions-backend/pkg/synclog"
)

// SyncEventRepository appends reconciliation events to the audit table.
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS sync_events (
//	    id          BIGSERIAL PRIMARY KEY,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    service     TEXT NOT NULL,
//	    event       TEXT NOT NULL,
//	    collection  TEXT,
//	    operation   TEXT,
//	    tier        TEXT,
//	    identifier  TEXT,
//	    user_id     BIGINT,
//	    status      INT,
//	    request_id  TEXT,
//	    details     JSONB
//	);
type SyncEventRepository struct {
	db *pgxpool.Pool
}

func NewSyncEventRepository(db *pgxpool.Pool) *SyncEventRepository {
	return &SyncEventRepository{db: db}
}

// Record inserts one event. Callers treat failures as non-fatal.
func (r *SyncEventRepository) Record(ctx context.Context, event synclog.Event) error {
	var details []byte
	if len(event.Details) > 0 {
		details, _ = json.Marshal(event.Details)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO sync_events
			(occurred_at, service, event, collection, operation, tier, identifier, user_id, status, request_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.Timestamp,
		event.Service,
		string(event.Event),
		event.Collection,
		event.Operation,
		event.Tier,
		event.Identifier,
		event.UserID,
		event.Status,
		event.RequestID,
		details,
	)
	return err
}
