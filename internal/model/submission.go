// Package model defines domain entities for the application.
package model

import (
	"encoding/base64"
	"sort"
	"strings"
	"time"
)

// SubmissionStatus represents the review status of a submission.
type SubmissionStatus string

const (
	StatusPendingVerification SubmissionStatus = "pending_verification"
	StatusApproved            SubmissionStatus = "approved"
	StatusDeclined            SubmissionStatus = "declined"
)

// IsValid checks if the status is a known value.
func (s SubmissionStatus) IsValid() bool {
	return s == StatusPendingVerification || s == StatusApproved || s == StatusDeclined
}

// Display returns the human-readable label for the status.
func (s SubmissionStatus) Display() string {
	switch s {
	case StatusPendingVerification:
		return "Pending Verification"
	case StatusApproved:
		return "Approved"
	case StatusDeclined:
		return "Declined"
	default:
		return string(s)
	}
}

// Submission represents a single user-submitted email address under
// administrative review.
type Submission struct {
	ID                string           `json:"id"`
	Email             string           `json:"email"`
	SubmittedByUserID string           `json:"submitted_by_user_id"`
	SubmittedByLabel  string           `json:"submitted_by_label"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	Price             int64            `json:"price"`
	Status            SubmissionStatus `json:"status"`
	IsPaid            bool             `json:"is_paid"`
	AdminUpdatedAt    *time.Time       `json:"admin_updated_at,omitempty"`
	AdminUpdatedBy    string           `json:"admin_updated_by,omitempty"`
}

// DisplayStatus returns the status text shown to users.
// A paid submission displays "Paid" regardless of its review status.
func (s *Submission) DisplayStatus() string {
	if s.IsPaid {
		return "Paid"
	}
	return s.Status.Display()
}

// IsApprovedUnpaid returns true if the submission is approved but not yet paid.
func (s *Submission) IsApprovedUnpaid() bool {
	return s.Status == StatusApproved && !s.IsPaid
}

// NormalizeEmail trims surrounding whitespace and lowercases an address.
// All validation, deduplication, and id derivation operate on the
// normalized form.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SubmissionID derives the stable identifier for a normalized email.
// The encoding is injective over email strings, so one email maps to
// exactly one document id.
func SubmissionID(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// SortNewestFirst orders submissions by submission time descending.
// Ties break on id so repeated sorts of the same set are stable.
func SortNewestFirst(subs []*Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
	})
}

// PendingEarnings sums the price of approved-but-unpaid submissions.
func PendingEarnings(subs []*Submission) int64 {
	var total int64
	for _, s := range subs {
		if s.IsApprovedUnpaid() {
			total += s.Price
		}
	}
	return total
}

// ChangeKind describes what happened to a submission.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
)

// SubmissionChange is the change-feed event emitted after every
// successful submission write.
type SubmissionChange struct {
	EventID      string     `json:"event_id"`
	Kind         ChangeKind `json:"kind"`
	SubmissionID string     `json:"submission_id"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
