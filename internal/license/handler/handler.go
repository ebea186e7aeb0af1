// Package handler wires license endpoints to the license service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"regula/internal/license/models"
	"regula/internal/license/service"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/httputil"
	"regula/pkg/requestcontext"
)

// Service defines the license operations the handler depends on.
type Service interface {
	Get(ctx context.Context, licenseID id.LicenseID) (*models.License, error)
	List(ctx context.Context) ([]*models.License, error)
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.License, error)
	ChangeStatus(ctx context.Context, licenseID id.LicenseID, next models.Status, reason string) (*models.License, error)
	NearingExpiry(ctx context.Context, daysOut int, asOf time.Time) ([]*models.License, error)
	InitiateRenewal(ctx context.Context, licenseID id.LicenseID) (*models.License, error)
	UpdateRenewalData(ctx context.Context, licenseID id.LicenseID, update service.RenewalUpdate) (*models.License, error)
	ProcessRenewalDecision(ctx context.Context, licenseID id.LicenseID, decision models.RenewalStatus, newExpiry *time.Time, reason string) (*models.License, error)
}

// Handler exposes license and renewal endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a license handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts license endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/licenses", h.HandleList)
	r.Get("/licenses/near-expiry", h.HandleNearExpiry)
	r.Get("/licenses/{licenseID}", h.HandleGet)
	r.Post("/licenses/{licenseID}/status", h.HandleChangeStatus)
	r.Post("/licenses/{licenseID}/renewal", h.HandleInitiateRenewal)
	r.Patch("/licenses/{licenseID}/renewal", h.HandleUpdateRenewal)
	r.Post("/licenses/{licenseID}/renewal/decision", h.HandleRenewalDecision)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if entity := r.URL.Query().Get("entity_id"); entity != "" {
		entityID, err := id.ParseEntityID(entity)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		licenses, err := h.service.ListByEntity(ctx, entityID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Licenses: licenses})
		return
	}

	licenses, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Licenses: licenses})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	licenseID, err := id.ParseLicenseID(chi.URLParam(r, "licenseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	license, err := h.service.Get(r.Context(), licenseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, license)
}

func (h *Handler) HandleNearExpiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	daysOut := 90
	if raw := r.URL.Query().Get("days_out"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "days_out must be a positive integer"))
			return
		}
		daysOut = parsed
	}
	asOf := requestcontext.Now(ctx)
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "as_of must be a YYYY-MM-DD date"))
			return
		}
		asOf = parsed
	}

	licenses, err := h.service.NearingExpiry(ctx, daysOut, asOf)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Licenses: licenses})
}

func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	licenseID, err := id.ParseLicenseID(chi.URLParam(r, "licenseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[changeStatusRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	license, err := h.service.ChangeStatus(ctx, licenseID, models.Status(req.Status), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "license status change rejected",
			"license_id", licenseID.String(),
			"target_status", req.Status,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, license)
}

func (h *Handler) HandleInitiateRenewal(w http.ResponseWriter, r *http.Request) {
	licenseID, err := id.ParseLicenseID(chi.URLParam(r, "licenseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	license, err := h.service.InitiateRenewal(r.Context(), licenseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, license)
}

func (h *Handler) HandleUpdateRenewal(w http.ResponseWriter, r *http.Request) {
	licenseID, err := id.ParseLicenseID(chi.URLParam(r, "licenseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[updateRenewalRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	license, err := h.service.UpdateRenewalData(r.Context(), licenseID, req.toUpdate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, license)
}

func (h *Handler) HandleRenewalDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	licenseID, err := id.ParseLicenseID(chi.URLParam(r, "licenseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[renewalDecisionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var newExpiry *time.Time
	if req.NewExpiryDate != "" {
		parsed, err := time.Parse(time.DateOnly, req.NewExpiryDate)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "new_expiry_date must be a YYYY-MM-DD date"))
			return
		}
		newExpiry = &parsed
	}

	license, err := h.service.ProcessRenewalDecision(ctx, licenseID, models.RenewalStatus(req.Decision), newExpiry, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "renewal decision rejected",
			"license_id", licenseID.String(),
			"decision", req.Decision,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, license)
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "not a positive integer")
	}
	return n, nil
}
