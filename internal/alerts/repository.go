package alerts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists alerts
type Repository struct {
	db *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new alert repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateAlert inserts a new alert
func (r *Repository) CreateAlert(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (
			id, title, message, category, severity, audience,
			report_id, created_by, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.Title,
		alert.Message,
		alert.Category,
		alert.Severity,
		alert.Audience,
		alert.ReportID,
		alert.CreatedBy,
		alert.ExpiresAt,
		alert.CreatedAt,
	)

	return err
}

// ListActive retrieves unexpired alerts for an audience, newest first.
// An empty audience returns alerts for every audience.
func (r *Repository) ListActive(ctx context.Context, audience string, limit, offset int) ([]*Alert, error) {
	query := `
		SELECT id, title, message, category, severity, audience,
		       report_id, created_by, expires_at, created_at
		FROM alerts
		WHERE (expires_at IS NULL OR expires_at > NOW())
		  AND ($1 = '' OR audience = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, audience, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*Alert, 0)
	for rows.Next() {
		var alert Alert
		err := rows.Scan(
			&alert.ID,
			&alert.Title,
			&alert.Message,
			&alert.Category,
			&alert.Severity,
			&alert.Audience,
			&alert.ReportID,
			&alert.CreatedBy,
			&alert.ExpiresAt,
			&alert.CreatedAt,
		)
		if err != nil {
			continue
		}
		result = append(result, &alert)
	}

	return result, nil
}

// CountActive counts unexpired alerts for an audience
func (r *Repository) CountActive(ctx context.Context, audience string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE (expires_at IS NULL OR expires_at > NOW())
		  AND ($1 = '' OR audience = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, audience).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
