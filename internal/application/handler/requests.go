package handler

import (
	"time"

	"regula/internal/application/models"
	"regula/internal/application/service"
	"regula/internal/registry"
	id "regula/pkg/domain"
)

type listResponse struct {
	Applications []*models.Application `json:"applications"`
}

type personPayload struct {
	FullName            string  `json:"full_name" validate:"required"`
	Email               string  `json:"email"`
	Phone               string  `json:"phone,omitempty"`
	Position            string  `json:"position,omitempty"`
	Nationality         string  `json:"nationality,omitempty"`
	IsPEP               bool    `json:"is_pep,omitempty"`
	OwnershipPercentage float64 `json:"ownership_percentage,omitempty"`
}

func (p personPayload) toPerson() registry.Person {
	return registry.Person{
		FullName:            p.FullName,
		Email:               p.Email,
		Phone:               p.Phone,
		Position:            p.Position,
		Nationality:         p.Nationality,
		IsPEP:               p.IsPEP,
		OwnershipPercentage: p.OwnershipPercentage,
	}
}

type newEntityPayload struct {
	CompanyName                 string          `json:"company_name" validate:"required"`
	LegalName                   string          `json:"legal_name" validate:"required"`
	RegistrationNumber          string          `json:"registration_number,omitempty"`
	JurisdictionOfIncorporation string          `json:"jurisdiction_of_incorporation,omitempty"`
	CompanyType                 string          `json:"company_type,omitempty"`
	PrimaryAddress              string          `json:"primary_address,omitempty"`
	Website                     string          `json:"website,omitempty"`
	PrimaryContact              personPayload   `json:"primary_contact" validate:"required"`
	Directors                   []personPayload `json:"directors,omitempty"`
	UBOs                        []personPayload `json:"ubos,omitempty"`
}

type submitRequest struct {
	EntityID          string            `json:"entity_id,omitempty"`
	NewEntity         *newEntityPayload `json:"new_entity,omitempty"`
	LicenseTypeSought string            `json:"license_type_sought" validate:"required"`
	ApplicationType   string            `json:"application_type,omitempty"`

	AssignedReviewerID    string     `json:"assigned_reviewer_id,omitempty"`
	AdditionalReviewerIDs []string   `json:"additional_reviewer_ids,omitempty"`
	ReviewTeam            string     `json:"review_team,omitempty"`
	ReviewDeadlineSLA     *time.Time `json:"review_deadline_sla,omitempty"`
	SupportingDocumentIDs []string   `json:"supporting_document_ids,omitempty"`
	GeneralNotes          []string   `json:"general_notes,omitempty"`
}

func (r submitRequest) toSubmitRequest() service.SubmitRequest {
	req := service.SubmitRequest{
		EntityID:           id.EntityID(r.EntityID),
		LicenseTypeSought:  r.LicenseTypeSought,
		ApplicationType:    r.ApplicationType,
		AssignedReviewerID: id.StaffID(r.AssignedReviewerID),
		ReviewTeam:         r.ReviewTeam,
		ReviewDeadlineSLA:  r.ReviewDeadlineSLA,
		GeneralNotes:       r.GeneralNotes,
	}
	for _, staffID := range r.AdditionalReviewerIDs {
		req.AdditionalReviewerIDs = append(req.AdditionalReviewerIDs, id.StaffID(staffID))
	}
	for _, docID := range r.SupportingDocumentIDs {
		req.SupportingDocumentIDs = append(req.SupportingDocumentIDs, id.DocumentID(docID))
	}
	if r.NewEntity != nil {
		input := registry.EntityInput{
			CompanyName:                 r.NewEntity.CompanyName,
			LegalName:                   r.NewEntity.LegalName,
			RegistrationNumber:          r.NewEntity.RegistrationNumber,
			JurisdictionOfIncorporation: r.NewEntity.JurisdictionOfIncorporation,
			CompanyType:                 r.NewEntity.CompanyType,
			PrimaryAddress:              r.NewEntity.PrimaryAddress,
			Website:                     r.NewEntity.Website,
			PrimaryContact:              r.NewEntity.PrimaryContact.toPerson(),
		}
		for _, d := range r.NewEntity.Directors {
			input.Directors = append(input.Directors, d.toPerson())
		}
		for _, u := range r.NewEntity.UBOs {
			input.UBOs = append(input.UBOs, u.toPerson())
		}
		req.NewEntity = &input
	}
	return req
}

type advanceRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}

type addNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

type logCommunicationRequest struct {
	Type    string `json:"type" validate:"required"`
	Summary string `json:"summary" validate:"required"`
}

type reviewerRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
}
