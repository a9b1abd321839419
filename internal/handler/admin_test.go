package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mailvend/mailvend/internal/engine"
	"github.com/mailvend/mailvend/internal/metrics"
	"github.com/mailvend/mailvend/internal/model"
	"github.com/mailvend/mailvend/internal/repository"
)

func newTestAdminHandler(store engine.Store) (*AdminHandler, *engine.Engine) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(store, noopFeed{}, 5, "@gmail.com", logger, metrics.NewNoop())
	subs := NewSubmissionHandler(eng, nil, logger)
	return NewAdminHandler(eng, subs, logger), eng
}

func patchReview(t *testing.T, h *AdminHandler, id, body string, access model.AccessContext) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/submissions/"+id, bytes.NewBufferString(body))
	req = requestWithAccess(req, access)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	return rec
}

func TestAdminHandler_UpdateStatus(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h, eng := newTestAdminHandler(store)

	sub, err := eng.Submit(context.Background(), "lead@gmail.com", testUser)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rec := patchReview(t, h, sub.ID, `{"status":"approved","is_paid":true}`, testAdmin)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	updated := store.byEmail["lead@gmail.com"]
	if updated.Status != model.StatusApproved || !updated.IsPaid {
		t.Errorf("got status=%s isPaid=%v, want approved and paid", updated.Status, updated.IsPaid)
	}
}

func TestAdminHandler_UpdateStatus_NonAdmin(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h, eng := newTestAdminHandler(store)

	sub, err := eng.Submit(context.Background(), "lead@gmail.com", testUser)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rec := patchReview(t, h, sub.ID, `{"status":"approved","is_paid":false}`, testUser)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAdminHandler_UpdateStatus_NotFound(t *testing.T) {
	t.Parallel()

	h, _ := newTestAdminHandler(newMemStore())

	rec := patchReview(t, h, "missing", `{"status":"approved","is_paid":false}`, testAdmin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdminHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	t.Parallel()

	h, _ := newTestAdminHandler(newMemStore())

	rec := patchReview(t, h, "some-id", `{"status":"mystery","is_paid":false}`, testAdmin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdminHandler_Summary(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h, eng := newTestAdminHandler(store)
	ctx := context.Background()

	sub, err := eng.Submit(ctx, "one@gmail.com", testUser)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := eng.Submit(ctx, "two@gmail.com", testUser); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := eng.UpdateStatus(ctx, sub.ID, model.StatusApproved, false, testAdmin); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	req := requestWithAccess(httptest.NewRequest(http.MethodGet, "/api/v1/admin/summary", nil), testAdmin)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var summary repository.SubmissionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.Total != 2 || summary.Pending != 1 || summary.ApprovedUnpaid != 1 {
		t.Errorf("summary = %+v, want total=2 pending=1 approved_unpaid=1", summary)
	}
}

func TestAdminHandler_Summary_NonAdmin(t *testing.T) {
	t.Parallel()

	h, _ := newTestAdminHandler(newMemStore())

	req := requestWithAccess(httptest.NewRequest(http.MethodGet, "/api/v1/admin/summary", nil), testUser)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
