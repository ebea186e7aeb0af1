package registry

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "regula/pkg/domain"
	"regula/pkg/platform/httputil"
)

// Handler exposes the entity and document registry.
type Handler struct {
	service *Service
}

// NewHandler constructs a registry handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/entities", h.HandleRegisterEntity)
	r.Get("/entities", h.HandleListEntities)
	r.Get("/entities/{entityID}", h.HandleGetEntity)
	r.Post("/documents", h.HandleUploadDocument)
	r.Get("/documents/{documentID}", h.HandleGetDocument)
}

type entityPayload struct {
	CompanyName                 string   `json:"company_name" validate:"required"`
	LegalName                   string   `json:"legal_name" validate:"required"`
	RegistrationNumber          string   `json:"registration_number"`
	DateOfIncorporation         string   `json:"date_of_incorporation"`
	JurisdictionOfIncorporation string   `json:"jurisdiction_of_incorporation"`
	CompanyType                 string   `json:"company_type"`
	PrimaryAddress              string   `json:"primary_address"`
	Website                     string   `json:"website"`
	PrimaryContact              Person   `json:"primary_contact" validate:"required"`
	Directors                   []Person `json:"directors"`
	UBOs                        []Person `json:"ubos"`
}

func (p entityPayload) toInput() EntityInput {
	return EntityInput{
		CompanyName:                 p.CompanyName,
		LegalName:                   p.LegalName,
		RegistrationNumber:          p.RegistrationNumber,
		DateOfIncorporation:         p.DateOfIncorporation,
		JurisdictionOfIncorporation: p.JurisdictionOfIncorporation,
		CompanyType:                 p.CompanyType,
		PrimaryAddress:              p.PrimaryAddress,
		Website:                     p.Website,
		PrimaryContact:              p.PrimaryContact,
		Directors:                   p.Directors,
		UBOs:                        p.UBOs,
	}
}

func (h *Handler) HandleRegisterEntity(w http.ResponseWriter, r *http.Request) {
	payload, err := httputil.DecodeValid[entityPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entity, err := h.service.RegisterEntity(r.Context(), payload.toInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entity)
}

func (h *Handler) HandleListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.ListEntities(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]*Entity{"entities": entities})
}

func (h *Handler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entity, err := h.service.GetEntity(r.Context(), entityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entity)
}

type uploadPayload struct {
	FileName     string `json:"file_name" validate:"required"`
	MimeType     string `json:"mime_type"`
	DocumentType string `json:"document_type" validate:"required"`
	UploadedBy   string `json:"uploaded_by" validate:"required"`
}

func (h *Handler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	payload, err := httputil.DecodeValid[uploadPayload](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := h.service.UploadDocument(r.Context(),
		FileUpload{Name: payload.FileName, MimeType: payload.MimeType},
		payload.DocumentType, payload.UploadedBy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"document_id": docID.String()})
}

func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	document, err := h.service.GetDocument(r.Context(), docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, document)
}
