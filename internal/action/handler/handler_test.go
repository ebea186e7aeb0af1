package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"regula/internal/action/models"
	"regula/internal/action/service"
	"regula/internal/action/store"
	licmodels "regula/internal/license/models"
	licservice "regula/internal/license/service"
	licstore "regula/internal/license/store"
	"regula/internal/platform/idgen"
	id "regula/pkg/domain"
	"regula/pkg/requestcontext"
)

var handlerNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	router   chi.Router
	actions  *service.Service
	licenses *licservice.Service
	license  *licmodels.License
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids := idgen.New(idgen.Seeds{})
	licenses := licservice.New(licstore.NewInMemory(), ids)
	actions := service.New(store.NewInMemory(), ids, licenses)
	h := New(actions, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithStaffID(
				requestcontext.WithTime(req.Context(), handlerNow), "reg_001")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)

	ctx := requestcontext.WithTime(t.Context(), handlerNow)
	result, err := licenses.Issue(ctx, licservice.IssueRequest{
		ApplicationID: "APP-2603-0001",
		EntityID:      "ent_001",
		LicenseType:   "Payment Institution",
	})
	if err != nil {
		t.Fatalf("failed to issue test license: %v", err)
	}
	return &fixture{router: r, actions: actions, licenses: licenses, license: result.License}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeAction(t *testing.T, rec *httptest.ResponseRecorder) *models.Action {
	t.Helper()
	var action models.Action
	if err := json.NewDecoder(rec.Body).Decode(&action); err != nil {
		t.Fatalf("failed to decode action: %v", err)
	}
	return &action
}

// draftAction seeds an action directly through the service so handler tests
// exercise one endpoint each.
func (f *fixture) draftAction(t *testing.T) *models.Action {
	t.Helper()
	ctx := requestcontext.WithStaffID(
		requestcontext.WithTime(t.Context(), handlerNow), "reg_001")
	action, err := f.actions.Create(ctx, f.license.ID, models.TypeSuspend, "reg_001")
	if err != nil {
		t.Fatalf("failed to draft action: %v", err)
	}
	if _, err := f.actions.UpdateReason(ctx, action.ID,
		"Regulatory Breach", "Failure to file quarterly returns."); err != nil {
		t.Fatalf("failed to set reason: %v", err)
	}
	return action
}

func TestCreateAction(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/actions", map[string]string{
		"license_id":          f.license.ID.String(),
		"action_type":         string(models.TypeSuspend),
		"initiating_staff_id": "reg_002",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	action := decodeAction(t, rec)
	if action.Status != models.StatusDraft {
		t.Fatalf("expected Draft status, got %s", action.Status)
	}
	if action.InitiatingStaffID != id.StaffID("reg_002") {
		t.Fatalf("expected initiating staff reg_002, got %s", action.InitiatingStaffID)
	}
	if len(action.Checklist) != 6 {
		t.Fatalf("expected 6 checklist items, got %d", len(action.Checklist))
	}
}

func TestCreateActionRequiresLicense(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/actions", map[string]string{
		"action_type": string(models.TypeSuspend),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/actions", map[string]string{
		"license_id":  "LIC-2026-9999",
		"action_type": string(models.TypeSuspend),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateReasonAndSubmit(t *testing.T) {
	f := newFixture(t)
	action := f.draftAction(t)

	rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeAction(t, rec); got.Status != models.StatusPendingReview {
		t.Fatalf("expected Pending Review, got %s", got.Status)
	}
}

func TestSubmitWithoutReason(t *testing.T) {
	f := newFixture(t)
	ctx := requestcontext.WithTime(t.Context(), handlerNow)
	action, err := f.actions.Create(ctx, f.license.ID, models.TypeSuspend, "reg_001")
	if err != nil {
		t.Fatalf("failed to draft action: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/submit", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if errBody.Error != "missing_field" {
		t.Fatalf("expected missing_field code, got %q", errBody.Error)
	}
}

func TestChecklistEndpoint(t *testing.T) {
	f := newFixture(t)
	action := f.draftAction(t)

	rec := f.do(t, http.MethodPut, "/actions/"+action.ID.String()+"/checklist", map[string]any{
		"item":    "item1",
		"checked": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeAction(t, rec); !got.Checklist["item1"] {
		t.Fatal("expected item1 to be checked")
	}
}

func TestDocumentEndpoints(t *testing.T) {
	f := newFixture(t)
	action := f.draftAction(t)

	rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/documents", map[string]string{
		"document_id": "doc_101",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, "/actions/"+action.ID.String()+"/documents/doc_101", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeAction(t, rec); len(got.SupportingDocumentIDs) != 0 {
		t.Fatalf("expected no documents, got %v", got.SupportingDocumentIDs)
	}
}

func TestDecideSuspendsLicense(t *testing.T) {
	f := newFixture(t)
	action := f.draftAction(t)
	if rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/submit", nil); rec.Code != http.StatusOK {
		t.Fatalf("submit failed with %d", rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/decision", map[string]string{
		"outcome":        "Proceed with Suspension",
		"decision_notes": "Breach confirmed by legal.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decided := decodeAction(t, rec)
	if decided.Status != models.StatusApproved {
		t.Fatalf("expected Approved, got %s", decided.Status)
	}

	ctx := requestcontext.WithTime(t.Context(), handlerNow)
	license, err := f.licenses.Get(ctx, f.license.ID)
	if err != nil {
		t.Fatalf("failed to reload license: %v", err)
	}
	if license.Status != licmodels.StatusSuspended {
		t.Fatalf("expected Suspended license, got %s", license.Status)
	}
}

func TestDecideOnDraftRejected(t *testing.T) {
	f := newFixture(t)
	action := f.draftAction(t)

	rec := f.do(t, http.MethodPost, "/actions/"+action.ID.String()+"/decision", map[string]string{
		"outcome":        "Proceed with Suspension",
		"decision_notes": "Too early.",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListActionsByLicense(t *testing.T) {
	f := newFixture(t)
	f.draftAction(t)
	f.draftAction(t)

	rec := f.do(t, http.MethodGet, "/actions?license_id="+f.license.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Actions []*models.Action `json:"actions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(list.Actions))
	}
}

func TestGetActionBadID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/actions/not-an-action", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
