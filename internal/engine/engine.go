// Package engine implements the submission lifecycle: validation,
// deduplication, administrative review, and visibility selection.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mailvend/mailvend/internal/metrics"
	"github.com/mailvend/mailvend/internal/model"
	"github.com/mailvend/mailvend/internal/repository"
)

// Engine errors.
var (
	ErrNoIdentity     = errors.New("authenticated identity required")
	ErrEmptyEmail     = errors.New("email must not be empty")
	ErrInvalidDomain  = errors.New("email domain not accepted")
	ErrDuplicateEmail = errors.New("email already submitted")
	ErrUnauthorized   = errors.New("administrator privilege required")
	ErrInvalidStatus  = errors.New("unknown submission status")
	ErrNotFound       = errors.New("submission not found")
)

// Store is the document collection the engine reads and writes.
// *repository.Repository satisfies it.
type Store interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmissionByEmail(ctx context.Context, email string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]*model.Submission, error)
	UpdateSubmissionReview(ctx context.Context, id string, status model.SubmissionStatus, isPaid bool, reviewedBy string, at time.Time) error
	SummarizeSubmissions(ctx context.Context) (*repository.SubmissionSummary, error)
}

// ChangeFeed receives a change event after every successful write.
// Delivery is fire-and-forget; readers re-query on notification.
type ChangeFeed interface {
	PublishAsync(change model.SubmissionChange)
}

// Engine coordinates submission writes and visibility-scoped reads.
type Engine struct {
	store   Store
	changes ChangeFeed
	logger  *slog.Logger
	metrics metrics.Recorder
	price   int64
	domain  string
}

// New creates an Engine. domain is the accepted email suffix
// (e.g. "@gmail.com"); price is the amount fixed into each new submission.
func New(store Store, changes ChangeFeed, price int64, domain string, logger *slog.Logger, recorder metrics.Recorder) *Engine {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Engine{
		store:   store,
		changes: changes,
		logger:  logger.With("component", "engine"),
		metrics: recorder,
		price:   price,
		domain:  strings.ToLower(domain),
	}
}

// Price returns the current per-submission price.
func (e *Engine) Price() int64 {
	return e.price
}

// Submit validates and records a new email submission for the acting
// identity. Validation order: identity present, non-empty after trim,
// accepted domain suffix, not already submitted.
//
// The duplicate pre-check and the insert are separate store operations.
// The insert is the real guard: the store enforces uniqueness on both
// the deterministic id and the email, so a concurrent submit of the
// same address resolves to ErrDuplicateEmail instead of a second record.
func (e *Engine) Submit(ctx context.Context, rawEmail string, access model.AccessContext) (*model.Submission, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNoIdentity
	}

	email := model.NormalizeEmail(rawEmail)
	if email == "" {
		e.metrics.IncSubmissionRejected("empty")
		return nil, ErrEmptyEmail
	}

	if !strings.HasSuffix(email, e.domain) {
		e.metrics.IncSubmissionRejected("invalid_domain")
		return nil, ErrInvalidDomain
	}

	// Advisory pre-check: a friendlier rejection without burning an insert.
	_, err := e.store.GetSubmissionByEmail(ctx, email)
	switch {
	case err == nil:
		e.metrics.IncSubmissionRejected("duplicate")
		return nil, ErrDuplicateEmail
	case errors.Is(err, repository.ErrSubmissionNotFound):
		// Not submitted yet, continue.
	default:
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	sub := &model.Submission{
		ID:                model.SubmissionID(email),
		Email:             email,
		SubmittedByUserID: access.UserID,
		SubmittedByLabel:  access.Email,
		SubmittedAt:       time.Now().UTC(),
		Price:             e.price,
		Status:            model.StatusPendingVerification,
		IsPaid:            false,
	}

	if err := e.store.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			// Lost the race between pre-check and insert.
			e.metrics.IncSubmissionRejected("duplicate")
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}

	e.metrics.IncSubmissionCreated()
	e.logger.Info("submission created",
		"submission_id", sub.ID,
		"user_id", access.UserID,
	)
	e.publish(model.ChangeCreated, sub.ID)

	return sub, nil
}

// UpdateStatus applies an administrative review: the new status and paid
// flag land in one atomic write together with the audit fields. No prior
// state is read; the latest call wins. Any status may be set repeatedly,
// including reverting an approval, and the paid flag is independent of
// the status.
func (e *Engine) UpdateStatus(ctx context.Context, submissionID string, newStatus model.SubmissionStatus, isPaid bool, access model.AccessContext) error {
	if !access.IsAdmin() {
		e.metrics.IncAuthFailure("unauthorized")
		return ErrUnauthorized
	}

	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}

	err := e.store.UpdateSubmissionReview(ctx, submissionID, newStatus, isPaid, access.Email, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update submission review: %w", err)
	}

	e.metrics.IncReviewApplied(string(newStatus))
	e.logger.Info("review applied",
		"submission_id", submissionID,
		"status", newStatus,
		"is_paid", isPaid,
		"reviewed_by", access.Email,
	)
	e.publish(model.ChangeUpdated, submissionID)

	return nil
}

// ListFor returns the submissions visible to the acting identity,
// newest first.
func (e *Engine) ListFor(ctx context.Context, access model.AccessContext) ([]*model.Submission, error) {
	filter, err := VisibilityFilter(access)
	if err != nil {
		return nil, err
	}

	subs, err := e.store.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	model.SortNewestFirst(subs)
	return subs, nil
}

// Summary returns the aggregate counts for the admin panel.
func (e *Engine) Summary(ctx context.Context, access model.AccessContext) (*repository.SubmissionSummary, error) {
	if !access.IsAdmin() {
		e.metrics.IncAuthFailure("unauthorized")
		return nil, ErrUnauthorized
	}

	summary, err := e.store.SummarizeSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize submissions: %w", err)
	}
	return summary, nil
}

// VisibilityFilter selects the store query for an identity: the
// administrator sees the whole collection, any other identity only its
// own submissions, and no identity sees nothing.
func VisibilityFilter(access model.AccessContext) (repository.SubmissionFilter, error) {
	if !access.IsAuthenticated() {
		return repository.SubmissionFilter{}, ErrNoIdentity
	}
	if access.IsAdmin() {
		return repository.SubmissionFilter{}, nil
	}
	return repository.SubmissionFilter{OwnerID: access.UserID}, nil
}

// publish emits a change event without blocking the write path.
func (e *Engine) publish(kind model.ChangeKind, submissionID string) {
	if e.changes == nil {
		return
	}
	e.changes.PublishAsync(model.SubmissionChange{
		EventID:      ulid.Make().String(),
		Kind:         kind,
		SubmissionID: submissionID,
		OccurredAt:   time.Now().UTC(),
	})
}
