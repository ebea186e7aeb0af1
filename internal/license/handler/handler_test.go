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

	"regula/internal/license/models"
	"regula/internal/license/service"
	"regula/internal/license/store"
	"regula/internal/platform/idgen"
	"regula/pkg/requestcontext"
)

func newLicenseRouter(t *testing.T) (chi.Router, *service.Service) {
	t.Helper()
	svc := service.New(store.NewInMemory(), idgen.New(idgen.Seeds{}))
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithTime(req.Context(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r, svc
}

func issueTestLicense(t *testing.T, svc *service.Service) *models.License {
	t.Helper()
	ctx := requestcontext.WithTime(t.Context(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	result, err := svc.Issue(ctx, service.IssueRequest{
		ApplicationID: "APP-2603-0001",
		EntityID:      "ent_001",
		LicenseType:   "Payment Institution",
	})
	if err != nil {
		t.Fatalf("failed to issue test license: %v", err)
	}
	return result.License
}

func TestGetLicense(t *testing.T) {
	router, svc := newLicenseRouter(t)
	license := issueTestLicense(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/licenses/"+license.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got models.License
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != license.ID {
		t.Fatalf("expected license %s, got %s", license.ID, got.ID)
	}
	if got.Status != models.StatusActive {
		t.Fatalf("expected Active status, got %s", got.Status)
	}
}

func TestGetLicenseNotFound(t *testing.T) {
	router, _ := newLicenseRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/licenses/LIC-2026-0099", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetLicenseBadID(t *testing.T) {
	router, _ := newLicenseRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/licenses/not-a-license", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChangeStatus(t *testing.T) {
	router, svc := newLicenseRouter(t)
	license := issueTestLicense(t, svc)

	body, _ := json.Marshal(map[string]string{"status": "Suspended", "reason": "aml findings"})
	req := httptest.NewRequest(http.MethodPost, "/licenses/"+license.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.License
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != models.StatusSuspended {
		t.Fatalf("expected Suspended, got %s", got.Status)
	}
}

func TestChangeStatusIllegalTransition(t *testing.T) {
	router, svc := newLicenseRouter(t)
	license := issueTestLicense(t, svc)

	ctx := requestcontext.WithTime(t.Context(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	if _, err := svc.ChangeStatus(ctx, license.ID, models.StatusRevoked, "misconduct"); err != nil {
		t.Fatalf("failed to revoke: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"status": "Active"})
	req := httptest.NewRequest(http.MethodPost, "/licenses/"+license.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for illegal transition, got %d", rec.Code)
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %q", envelope.Error)
	}
}

func TestRenewalLifecycleViaHandlers(t *testing.T) {
	router, svc := newLicenseRouter(t)
	license := issueTestLicense(t, svc)

	// Open the cycle.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/licenses/"+license.ID.String()+"/renewal", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 initiating renewal, got %d: %s", rec.Code, rec.Body.String())
	}

	// Submit with documents.
	patch := map[string]any{
		"renewal_status":       "Submitted",
		"renewal_notes":        []string{"financials attached"},
		"renewal_document_ids": []string{"doc_001"},
	}
	body, _ := json.Marshal(patch)
	req := httptest.NewRequest(http.MethodPatch, "/licenses/"+license.ID.String()+"/renewal", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating renewal, got %d: %s", rec.Code, rec.Body.String())
	}

	// Move under review, then approve with a new expiry.
	body, _ = json.Marshal(map[string]any{"renewal_status": "Under Review"})
	req = httptest.NewRequest(http.MethodPatch, "/licenses/"+license.ID.String()+"/renewal", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 moving under review, got %d: %s", rec.Code, rec.Body.String())
	}

	body, _ = json.Marshal(map[string]string{
		"decision":        "Renewal Approved",
		"new_expiry_date": "2028-03-15",
	})
	req = httptest.NewRequest(http.MethodPost, "/licenses/"+license.ID.String()+"/renewal/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 processing decision, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.License
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Renewal.Status != models.RenewalApproved {
		t.Fatalf("expected Renewal Approved, got %s", got.Renewal.Status)
	}
	if got.ExpiryDate.Format(time.DateOnly) != "2028-03-15" {
		t.Fatalf("expected expiry 2028-03-15, got %s", got.ExpiryDate.Format(time.DateOnly))
	}
}

func TestRenewalDecisionMissingExpiry(t *testing.T) {
	router, svc := newLicenseRouter(t)
	license := issueTestLicense(t, svc)

	ctx := requestcontext.WithTime(t.Context(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	if _, err := svc.InitiateRenewal(ctx, license.ID); err != nil {
		t.Fatalf("failed to initiate renewal: %v", err)
	}
	submitted := models.RenewalSubmitted
	if _, err := svc.UpdateRenewalData(ctx, license.ID, service.RenewalUpdate{Status: &submitted}); err != nil {
		t.Fatalf("failed to submit renewal: %v", err)
	}
	underReview := models.RenewalUnderReview
	if _, err := svc.UpdateRenewalData(ctx, license.ID, service.RenewalUpdate{Status: &underReview}); err != nil {
		t.Fatalf("failed to move under review: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"decision": "Renewal Approved"})
	req := httptest.NewRequest(http.MethodPost, "/licenses/"+license.ID.String()+"/renewal/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing expiry, got %d", rec.Code)
	}
}

func TestNearExpiryQuery(t *testing.T) {
	router, svc := newLicenseRouter(t)
	issueTestLicense(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/licenses/near-expiry?days_out=400&as_of=2026-03-15", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Licenses []models.License `json:"licenses"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Licenses) != 1 {
		t.Fatalf("expected 1 license in horizon, got %d", len(got.Licenses))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/licenses/near-expiry?days_out=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad days_out, got %d", rec.Code)
	}
}
