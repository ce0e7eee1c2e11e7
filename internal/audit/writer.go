package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"go.uber.org/zap"
)

const (
	writeAttempts = 3
	retryBackoff  = 100 * time.Millisecond
)

// Store is the persistence capability the writer needs
type Store interface {
	CreateEntry(ctx context.Context, entry *Entry) error
}

// Writer appends audit entries with bounded retry. Audit durability is
// separate from the scoring decision: a failed write is retried and then
// surfaced, but never rolls the decision back.
type Writer struct {
	store Store
}

// NewWriter creates an audit writer
func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Record fills in identity/timestamp defaults and appends the entry,
// retrying transient failures
func (w *Writer) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		err = w.store.CreateEntry(ctx, entry)
		if err == nil {
			return nil
		}

		if attempt < writeAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}

	logger.WithContext(ctx).Error("audit entry lost after retries",
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID.String()),
		zap.Error(err),
	)
	return err
}
