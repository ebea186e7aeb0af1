// Package handler wires application review endpoints to the application
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regula/internal/application/models"
	"regula/internal/application/service"
	id "regula/pkg/domain"
	"regula/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/application-mocks.go -package=mocks Service

// Service defines the application operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.Application, error)
	Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	Detail(ctx context.Context, applicationID id.ApplicationID) (*service.Detail, error)
	List(ctx context.Context) ([]*models.Application, error)
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.Application, error)
	Advance(ctx context.Context, applicationID id.ApplicationID, next models.Status, notes string) (*models.Application, error)
	AddNote(ctx context.Context, applicationID id.ApplicationID, note string) (*models.Application, error)
	LogCommunication(ctx context.Context, applicationID id.ApplicationID, commType, summary string) (*models.Application, error)
	AssignReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error)
	AddAdditionalReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error)
	RemoveAdditionalReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error)
	Rescreen(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
}

// Handler exposes application workflow endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleSubmit)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Get("/applications/{applicationID}/detail", h.HandleDetail)
	r.Post("/applications/{applicationID}/status", h.HandleAdvance)
	r.Post("/applications/{applicationID}/notes", h.HandleAddNote)
	r.Post("/applications/{applicationID}/communications", h.HandleLogCommunication)
	r.Put("/applications/{applicationID}/reviewer", h.HandleAssignReviewer)
	r.Post("/applications/{applicationID}/reviewers", h.HandleAddAdditionalReviewer)
	r.Delete("/applications/{applicationID}/reviewers/{staffID}", h.HandleRemoveAdditionalReviewer)
	r.Post("/applications/{applicationID}/screening", h.HandleRescreen)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeValid[submitRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Submit(r.Context(), req.toSubmitRequest())
	if err != nil {
		h.logger.WarnContext(r.Context(), "application intake rejected", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if entity := r.URL.Query().Get("entity_id"); entity != "" {
		entityID, err := id.ParseEntityID(entity)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		apps, err := h.service.ListByEntity(ctx, entityID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Applications: apps})
		return
	}

	apps, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Applications: apps})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Get(r.Context(), applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.Detail(r.Context(), applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[advanceRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Advance(r.Context(), applicationID, models.Status(req.Status), req.Notes)
	if err != nil {
		h.logger.WarnContext(r.Context(), "application transition rejected",
			"application_id", applicationID.String(),
			"next_status", req.Status,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[addNoteRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.AddNote(r.Context(), applicationID, req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleLogCommunication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[logCommunicationRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.LogCommunication(r.Context(), applicationID, req.Type, req.Summary)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleAssignReviewer(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[reviewerRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.AssignReviewer(r.Context(), applicationID, id.StaffID(req.StaffID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleAddAdditionalReviewer(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeValid[reviewerRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.AddAdditionalReviewer(r.Context(), applicationID, id.StaffID(req.StaffID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleRemoveAdditionalReviewer(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.RemoveAdditionalReviewer(r.Context(), applicationID, id.StaffID(chi.URLParam(r, "staffID")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleRescreen(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.Rescreen(r.Context(), applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}
