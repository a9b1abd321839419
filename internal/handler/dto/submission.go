package dto

import (
	"time"

	"github.com/mailvend/mailvend/internal/model"
)

// SubmitRequest represents the request body for submitting an email.
type SubmitRequest struct {
	Email string `json:"email"`
}

// AdminUpdateRequest represents an administrative review: the new status
// and paid flag always travel together in one request.
type AdminUpdateRequest struct {
	Status string `json:"status"`
	IsPaid bool   `json:"is_paid"`
}

// SubmissionResponse represents a submission in API responses.
type SubmissionResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	SubmittedByUserID string     `json:"submitted_by_user_id"`
	SubmittedByLabel  string     `json:"submitted_by_label"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	Price             int64      `json:"price"`
	Status            string     `json:"status"`
	DisplayStatus     string     `json:"display_status"`
	IsPaid            bool       `json:"is_paid"`
	AdminUpdatedAt    *time.Time `json:"admin_updated_at,omitempty"`
	AdminUpdatedBy    string     `json:"admin_updated_by,omitempty"`
}

// ToSubmissionResponse converts a Submission to its API representation.
func ToSubmissionResponse(sub *model.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                sub.ID,
		Email:             sub.Email,
		SubmittedByUserID: sub.SubmittedByUserID,
		SubmittedByLabel:  sub.SubmittedByLabel,
		SubmittedAt:       sub.SubmittedAt,
		Price:             sub.Price,
		Status:            string(sub.Status),
		DisplayStatus:     sub.DisplayStatus(),
		IsPaid:            sub.IsPaid,
		AdminUpdatedAt:    sub.AdminUpdatedAt,
		AdminUpdatedBy:    sub.AdminUpdatedBy,
	}
}

// SubmissionListResponse represents an ordered submission list together
// with the dashboard aggregates.
type SubmissionListResponse struct {
	Data            []SubmissionResponse `json:"data"`
	Count           int                  `json:"count"`
	Price           int64                `json:"price"`
	PendingEarnings int64                `json:"pending_earnings"`
}

// ToSubmissionListResponse converts an ordered submission slice.
func ToSubmissionListResponse(subs []*model.Submission, price int64) SubmissionListResponse {
	data := make([]SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		data = append(data, ToSubmissionResponse(sub))
	}
	return SubmissionListResponse{
		Data:            data,
		Count:           len(data),
		Price:           price,
		PendingEarnings: model.PendingEarnings(subs),
	}
}
