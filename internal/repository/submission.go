package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/mailvend/mailvend/internal/model"
)

// Common errors for submission repository operations.
var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrDuplicateSubmission = errors.New("submission already exists")
)

// SubmissionFilter defines filters for listing submissions.
// A zero filter matches the entire collection.
type SubmissionFilter struct {
	OwnerID  string
	Statuses []model.SubmissionStatus
}

// SubmissionSummary holds the aggregate counts shown on the admin panel.
type SubmissionSummary struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	ApprovedUnpaid int64 `json:"approved_unpaid"`
	Paid           int64 `json:"paid"`
}

// CreateSubmission inserts a new submission.
// Both the id and the email carry unique constraints, so a concurrent
// insert of the same email loses with ErrDuplicateSubmission instead of
// producing a second document.
func (r *Repository) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	query := `
		INSERT INTO submissions (id, email, submitted_by_user_id, submitted_by_label, submitted_at, price, status, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.Email,
		sub.SubmittedByUserID,
		sub.SubmittedByLabel,
		sub.SubmittedAt,
		sub.Price,
		sub.Status,
		sub.IsPaid,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetSubmissionByID retrieves a submission by its ID.
func (r *Repository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `
		SELECT id, email, submitted_by_user_id, submitted_by_label, submitted_at, price, status, is_paid, admin_updated_at, admin_updated_by
		FROM submissions
		WHERE id = $1
	`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission by ID: %w", err)
	}

	return sub, nil
}

// GetSubmissionByEmail retrieves a submission by its normalized email.
// Used for the duplicate pre-check before creating.
func (r *Repository) GetSubmissionByEmail(ctx context.Context, email string) (*model.Submission, error) {
	query := `
		SELECT id, email, submitted_by_user_id, submitted_by_label, submitted_at, price, status, is_paid, admin_updated_at, admin_updated_by
		FROM submissions
		WHERE email = $1
	`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission by email: %w", err)
	}

	return sub, nil
}

// ListSubmissions retrieves submissions matching the filter, newest first.
func (r *Repository) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*model.Submission, error) {
	query := `
		SELECT id, email, submitted_by_user_id, submitted_by_label, submitted_at, price, status, is_paid, admin_updated_at, admin_updated_by
		FROM submissions
		WHERE 1=1
	`
	args := []any{}
	argIndex := 1

	if filter.OwnerID != "" {
		query += fmt.Sprintf(" AND submitted_by_user_id = $%d", argIndex)
		args = append(args, filter.OwnerID)
		argIndex++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	query += " ORDER BY submitted_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return subs, nil
}

// UpdateSubmissionReview applies an administrative review in a single
// atomic write. No prior state is read; last write wins.
func (r *Repository) UpdateSubmissionReview(ctx context.Context, id string, status model.SubmissionStatus, isPaid bool, reviewedBy string, at time.Time) error {
	query := `
		UPDATE submissions
		SET status = $2, is_paid = $3, admin_updated_at = $4, admin_updated_by = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status, isPaid, at, reviewedBy)
	if err != nil {
		return fmt.Errorf("failed to update submission review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}

	return nil
}

// SummarizeSubmissions computes the aggregate counts for the admin panel.
func (r *Repository) SummarizeSubmissions(ctx context.Context) (*SubmissionSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending_verification'),
			COUNT(*) FILTER (WHERE status = 'approved' AND NOT is_paid),
			COUNT(*) FILTER (WHERE is_paid)
		FROM submissions
	`

	var summary SubmissionSummary
	err := r.pool.QueryRow(ctx, query).Scan(
		&summary.Total,
		&summary.Pending,
		&summary.ApprovedUnpaid,
		&summary.Paid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize submissions: %w", err)
	}

	return &summary, nil
}

// scanSubmission scans a submission from a row.
func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var sub model.Submission
	var adminUpdatedBy *string
	err := row.Scan(
		&sub.ID,
		&sub.Email,
		&sub.SubmittedByUserID,
		&sub.SubmittedByLabel,
		&sub.SubmittedAt,
		&sub.Price,
		&sub.Status,
		&sub.IsPaid,
		&sub.AdminUpdatedAt,
		&adminUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if adminUpdatedBy != nil {
		sub.AdminUpdatedBy = *adminUpdatedBy
	}
	return &sub, nil
}
