package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit entries
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the writer's requirements.
var _ Store = (*Repository)(nil)

// NewRepository creates a new audit repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEntry appends one audit entry. Single-statement insert, atomic per
// call.
func (r *Repository) CreateEntry(ctx context.Context, entry *Entry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_entries (
			id, actor_id, action, entity_type, entity_id,
			metadata, is_suspicious, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		metadataJSON,
		entry.IsSuspicious,
		entry.CreatedAt,
	)

	return err
}

// CountSuspiciousForUser counts suspicious audit entries in a user's history,
// whether the user acted or was acted upon. Running total, not time-windowed.
func (r *Repository) CountSuspiciousForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM audit_entries
		WHERE is_suspicious = true
		  AND (actor_id = $1 OR (entity_type = 'user' AND entity_id = $1))
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListForEntity retrieves the audit trail for one entity, newest first
func (r *Repository) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id,
		       metadata, is_suspicious, created_at
		FROM audit_entries
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&metadataJSON,
			&entry.IsSuspicious,
			&entry.CreatedAt,
		)
		if err != nil {
			continue
		}

		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			entry.Metadata = make(map[string]interface{})
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}

// ListForActor retrieves the audit trail produced by one actor, newest first
func (r *Repository) ListForActor(ctx context.Context, actorID uuid.UUID, since time.Time, limit int) ([]*Entry, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id,
		       metadata, is_suspicious, created_at
		FROM audit_entries
		WHERE actor_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, actorID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&metadataJSON,
			&entry.IsSuspicious,
			&entry.CreatedAt,
		)
		if err != nil {
			continue
		}

		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			entry.Metadata = make(map[string]interface{})
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}
