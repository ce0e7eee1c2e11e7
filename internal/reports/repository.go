package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scamshield-ai/scamshield/internal/behavior"
	"github.com/scamshield-ai/scamshield/internal/correlation"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

// ErrNotFound indicates the report does not exist
var ErrNotFound = errors.New("report not found")

// Repository persists reports. It also serves as the read source for the
// correlation, behavioral and anomaly engines.
type Repository struct {
	db *pgxpool.Pool
}

var _ correlation.ReportSource = (*Repository)(nil)

// NewRepository creates a new report repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const reportColumns = `
	id, title, description, scam_type,
	contact_phone, contact_email, contact_website,
	reported_by, external_source, status,
	risk_score, risk_level, votes_up, votes_down,
	created_at, updated_at
`

// CreateReport inserts a new report
func (r *Repository) CreateReport(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		report.ScamType,
		report.ContactPhone,
		report.ContactEmail,
		report.ContactWebsite,
		report.ReportedBy,
		report.ExternalSource,
		report.Status,
		report.RiskScore,
		report.RiskLevel,
		report.VotesUp,
		report.VotesDown,
		report.CreatedAt,
		report.UpdatedAt,
	)

	return err
}

// GetReport fetches one report by id
func (r *Repository) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListReports retrieves reports, newest first
func (r *Repository) ListReports(ctx context.Context, limit, offset int) ([]*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			continue
		}
		result = append(result, report)
	}

	return result, nil
}

// CountReports counts all reports
func (r *Repository) CountReports(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SetRiskScore persists the pipeline's verdict on a report. Score and level
// are written together so the tier can never drift from the score.
func (r *Repository) SetRiskScore(ctx context.Context, id uuid.UUID, score float64, level risk.Level) error {
	query := `UPDATE reports SET risk_score = $2, risk_level = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, score, level, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus writes a new lifecycle status
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVote increments the up or down vote counter
func (r *Repository) AddVote(ctx context.Context, id uuid.UUID, up bool) error {
	column := "votes_down"
	if up {
		column = "votes_up"
	}
	query := `UPDATE reports SET ` + column + ` = ` + column + ` + 1, updated_at = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentReports returns the bounded correlation corpus: reports created after
// since, excluding the candidate itself, newest first.
func (r *Repository) RecentReports(ctx context.Context, since time.Time, excludeID uuid.UUID, limit int) ([]correlation.ReportRef, error) {
	query := `
		SELECT id, description, contact_phone, contact_email, contact_website
		FROM reports
		WHERE created_at >= $1 AND id != $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, since, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]correlation.ReportRef, 0)
	for rows.Next() {
		var ref correlation.ReportRef
		if err := rows.Scan(&ref.ID, &ref.Description, &ref.ContactPhone, &ref.ContactEmail, &ref.ContactWebsite); err != nil {
			continue
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// ReportStats summarizes one user's report history for the behavioral
// aggregator
func (r *Repository) ReportStats(ctx context.Context, userID uuid.UUID) (*behavior.ReportStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'false_report'),
			COUNT(*) FILTER (WHERE risk_level = 'critical')
		FROM reports
		WHERE reported_by = $1
	`

	var stats behavior.ReportStats
	if err := r.db.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.FalseReports, &stats.CriticalTier); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReportCountSince counts a user's reports created after since, for the
// anomaly detector's rate check
func (r *Repository) ReportCountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM reports WHERE reported_by = $1 AND created_at >= $2`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var report Report
	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.ScamType,
		&report.ContactPhone,
		&report.ContactEmail,
		&report.ContactWebsite,
		&report.ReportedBy,
		&report.ExternalSource,
		&report.Status,
		&report.RiskScore,
		&report.RiskLevel,
		&report.VotesUp,
		&report.VotesDown,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
