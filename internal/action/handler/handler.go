// Package handler exposes the license action workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regula/internal/action/models"
	id "regula/pkg/domain"
	"regula/pkg/platform/httputil"
)

// Service defines the action operations the handler depends on.
type Service interface {
	Create(ctx context.Context, licenseID id.LicenseID, actionType models.Type, initiatedBy id.StaffID) (*models.Action, error)
	Get(ctx context.Context, actionID id.ActionID) (*models.Action, error)
	List(ctx context.Context) ([]*models.Action, error)
	ListByLicense(ctx context.Context, licenseID id.LicenseID) ([]*models.Action, error)
	UpdateReason(ctx context.Context, actionID id.ActionID, category, details string) (*models.Action, error)
	AddDocument(ctx context.Context, actionID id.ActionID, docID id.DocumentID) (*models.Action, error)
	RemoveDocument(ctx context.Context, actionID id.ActionID, docID id.DocumentID) (*models.Action, error)
	SetChecklistItem(ctx context.Context, actionID id.ActionID, item string, checked bool) (*models.Action, error)
	AddNote(ctx context.Context, actionID id.ActionID, text string) (*models.Action, error)
	SubmitForReview(ctx context.Context, actionID id.ActionID) (*models.Action, error)
	Decide(ctx context.Context, actionID id.ActionID, outcome, decisionNotes string) (*models.Action, error)
}

// Handler exposes license action endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an action handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts action endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/actions", h.HandleCreate)
	r.Get("/actions", h.HandleList)
	r.Get("/actions/{actionID}", h.HandleGet)
	r.Put("/actions/{actionID}/reason", h.HandleUpdateReason)
	r.Post("/actions/{actionID}/documents", h.HandleAddDocument)
	r.Delete("/actions/{actionID}/documents/{documentID}", h.HandleRemoveDocument)
	r.Put("/actions/{actionID}/checklist", h.HandleSetChecklistItem)
	r.Post("/actions/{actionID}/notes", h.HandleAddNote)
	r.Post("/actions/{actionID}/submit", h.HandleSubmitForReview)
	r.Post("/actions/{actionID}/decision", h.HandleDecide)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeValid[createRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	action, err := h.service.Create(r.Context(),
		id.LicenseID(req.LicenseID), models.Type(req.ActionType), id.StaffID(req.InitiatingStaffID))
	if err != nil {
		h.logger.WarnContext(r.Context(), "action creation rejected", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, action)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if license := r.URL.Query().Get("license_id"); license != "" {
		licenseID, err := id.ParseLicenseID(license)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		actions, err := h.service.ListByLicense(ctx, licenseID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Actions: actions})
		return
	}

	actions, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Actions: actions})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.Get(r.Context(), actionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleUpdateReason(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[reasonRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.UpdateReason(r.Context(), actionID, req.ReasonCategory, req.ReasonDetails)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleAddDocument(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[documentRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.AddDocument(r.Context(), actionID, id.DocumentID(req.DocumentID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.RemoveDocument(r.Context(), actionID, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleSetChecklistItem(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[checklistRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.SetChecklistItem(r.Context(), actionID, req.Item, req.Checked)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[noteRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.AddNote(r.Context(), actionID, req.Text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleSubmitForReview(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.SubmitForReview(r.Context(), actionID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "action submission rejected",
			"action_id", actionID.String(), "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[decisionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := h.service.Decide(r.Context(), actionID, req.Outcome, req.DecisionNotes)
	if err != nil {
		h.logger.WarnContext(r.Context(), "action decision rejected",
			"action_id", actionID.String(), "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}
