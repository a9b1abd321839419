package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mailvend/mailvend/internal/model"
	"github.com/mailvend/mailvend/internal/testutil"
)

// setupRepo connects to the test database and resets both schemas.
// Tests are skipped unless TEST_DATABASE_URL is set.
func setupRepo(t *testing.T) (*Repository, context.Context) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("failed to acquire DB lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("failed to release DB lock: %v", err)
		}
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("failed to reset users schema: %v", err)
	}
	if err := testutil.ResetSubmissionsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("failed to reset submissions schema: %v", err)
	}

	return repo, ctx
}

func TestRepository_CreateAndGetSubmission(t *testing.T) {
	repo, ctx := setupRepo(t)

	sub := testutil.NewTestSubmission(t, "lead@gmail.com")
	if err := repo.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	got, err := repo.GetSubmissionByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmissionByID failed: %v", err)
	}
	if got.Email != "lead@gmail.com" {
		t.Errorf("Email = %s, want lead@gmail.com", got.Email)
	}
	if got.Status != model.StatusPendingVerification {
		t.Errorf("Status = %s, want %s", got.Status, model.StatusPendingVerification)
	}
	if got.AdminUpdatedAt != nil || got.AdminUpdatedBy != "" {
		t.Error("new submission should have no audit fields")
	}

	byEmail, err := repo.GetSubmissionByEmail(ctx, "lead@gmail.com")
	if err != nil {
		t.Fatalf("GetSubmissionByEmail failed: %v", err)
	}
	if byEmail.ID != sub.ID {
		t.Errorf("ID = %s, want %s", byEmail.ID, sub.ID)
	}
}

func TestRepository_CreateSubmission_Duplicate(t *testing.T) {
	repo, ctx := setupRepo(t)

	sub := testutil.NewTestSubmission(t, "lead@gmail.com")
	if err := repo.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	// Same email, so both unique constraints trip.
	dup := testutil.NewTestSubmission(t, "lead@gmail.com")
	err := repo.CreateSubmission(ctx, dup)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("expected ErrDuplicateSubmission, got %v", err)
	}
}

func TestRepository_GetSubmission_NotFound(t *testing.T) {
	repo, ctx := setupRepo(t)

	if _, err := repo.GetSubmissionByID(ctx, "missing"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("GetSubmissionByID = %v, want ErrSubmissionNotFound", err)
	}
	if _, err := repo.GetSubmissionByEmail(ctx, "ghost@gmail.com"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("GetSubmissionByEmail = %v, want ErrSubmissionNotFound", err)
	}
}

func TestRepository_ListSubmissions(t *testing.T) {
	repo, ctx := setupRepo(t)

	base := time.Now().UTC().Truncate(time.Microsecond)
	emails := []string{"one@gmail.com", "two@gmail.com", "three@gmail.com"}
	for i, email := range emails {
		sub := testutil.NewTestSubmission(t, email)
		sub.SubmittedAt = base.Add(time.Duration(i) * time.Minute)
		if i == 2 {
			sub.SubmittedByUserID = "other-user"
		}
		if err := repo.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}
	}

	all, err := repo.ListSubmissions(ctx, SubmissionFilter{})
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered list has %d submissions, want 3", len(all))
	}
	if all[0].Email != "three@gmail.com" {
		t.Errorf("list should be newest first, got %s first", all[0].Email)
	}

	mine, err := repo.ListSubmissions(ctx, SubmissionFilter{OwnerID: "test-user"})
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("owner-scoped list has %d submissions, want 2", len(mine))
	}
}

func TestRepository_ListSubmissions_StatusFilter(t *testing.T) {
	repo, ctx := setupRepo(t)

	approved := testutil.NewTestSubmission(t, "approved@gmail.com")
	approved.Status = model.StatusApproved
	pending := testutil.NewTestSubmission(t, "pending@gmail.com")

	for _, sub := range []*model.Submission{approved, pending} {
		if err := repo.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}
	}

	got, err := repo.ListSubmissions(ctx, SubmissionFilter{
		Statuses: []model.SubmissionStatus{model.StatusApproved},
	})
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(got) != 1 || got[0].Email != "approved@gmail.com" {
		t.Errorf("status-filtered list = %d submissions, want only the approved one", len(got))
	}
}

func TestRepository_UpdateSubmissionReview(t *testing.T) {
	repo, ctx := setupRepo(t)

	sub := testutil.NewTestSubmission(t, "lead@gmail.com")
	if err := repo.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Microsecond)
	err := repo.UpdateSubmissionReview(ctx, sub.ID, model.StatusApproved, true, "admin@gmail.com", at)
	if err != nil {
		t.Fatalf("UpdateSubmissionReview failed: %v", err)
	}

	got, err := repo.GetSubmissionByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmissionByID failed: %v", err)
	}
	if got.Status != model.StatusApproved {
		t.Errorf("Status = %s, want %s", got.Status, model.StatusApproved)
	}
	if !got.IsPaid {
		t.Error("IsPaid should be true")
	}
	if got.AdminUpdatedBy != "admin@gmail.com" {
		t.Errorf("AdminUpdatedBy = %s, want admin@gmail.com", got.AdminUpdatedBy)
	}
	if got.AdminUpdatedAt == nil || !got.AdminUpdatedAt.Equal(at) {
		t.Errorf("AdminUpdatedAt = %v, want %v", got.AdminUpdatedAt, at)
	}
}

func TestRepository_UpdateSubmissionReview_NotFound(t *testing.T) {
	repo, ctx := setupRepo(t)

	err := repo.UpdateSubmissionReview(ctx, "missing", model.StatusApproved, false, "admin@gmail.com", time.Now().UTC())
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestRepository_SummarizeSubmissions(t *testing.T) {
	repo, ctx := setupRepo(t)

	pending := testutil.NewTestSubmission(t, "pending@gmail.com")
	approved := testutil.NewTestSubmission(t, "approved@gmail.com")
	approved.Status = model.StatusApproved
	paid := testutil.NewTestSubmission(t, "paid@gmail.com")
	paid.Status = model.StatusApproved
	paid.IsPaid = true

	for _, sub := range []*model.Submission{pending, approved, paid} {
		if err := repo.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}
	}

	summary, err := repo.SummarizeSubmissions(ctx)
	if err != nil {
		t.Fatalf("SummarizeSubmissions failed: %v", err)
	}

	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if summary.Pending != 1 {
		t.Errorf("Pending = %d, want 1", summary.Pending)
	}
	if summary.ApprovedUnpaid != 1 {
		t.Errorf("ApprovedUnpaid = %d, want 1", summary.ApprovedUnpaid)
	}
	if summary.Paid != 1 {
		t.Errorf("Paid = %d, want 1", summary.Paid)
	}
}

func TestRepository_Users(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := testutil.NewTestUser(t, "user@gmail.com")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "user@gmail.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}

	dup := testutil.NewTestUser(t, "user@gmail.com")
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, "ghost@gmail.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
