package handler

import (
	"time"

	"regula/internal/license/models"
	"regula/internal/license/service"
	id "regula/pkg/domain"
)

type listResponse struct {
	Licenses []*models.License `json:"licenses"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

type updateRenewalRequest struct {
	Status                    *string    `json:"renewal_status,omitempty"`
	ApplicationID             *string    `json:"renewal_application_id,omitempty"`
	SubmissionDate            *time.Time `json:"renewal_submission_date,omitempty"`
	Notes                     []string   `json:"renewal_notes,omitempty"`
	DocumentIDs               []string   `json:"renewal_document_ids,omitempty"`
	ComplianceHistoryReviewed *bool      `json:"compliance_history_reviewed,omitempty"`
}

func (r updateRenewalRequest) toUpdate() service.RenewalUpdate {
	update := service.RenewalUpdate{
		ApplicationID:             r.ApplicationID,
		SubmissionDate:            r.SubmissionDate,
		Notes:                     r.Notes,
		ComplianceHistoryReviewed: r.ComplianceHistoryReviewed,
	}
	if r.Status != nil {
		status := models.RenewalStatus(*r.Status)
		update.Status = &status
	}
	for _, docID := range r.DocumentIDs {
		update.DocumentIDs = append(update.DocumentIDs, id.DocumentID(docID))
	}
	return update
}

type renewalDecisionRequest struct {
	Decision      string `json:"decision" validate:"required"`
	NewExpiryDate string `json:"new_expiry_date,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
