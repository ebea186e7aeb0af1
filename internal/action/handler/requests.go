package handler

import "regula/internal/action/models"

type listResponse struct {
	Actions []*models.Action `json:"actions"`
}

type createRequest struct {
	LicenseID         string `json:"license_id" validate:"required"`
	ActionType        string `json:"action_type" validate:"required"`
	InitiatingStaffID string `json:"initiating_staff_id"`
}

type reasonRequest struct {
	ReasonCategory string `json:"reason_category" validate:"required"`
	ReasonDetails  string `json:"reason_details" validate:"required"`
}

type documentRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
}

type checklistRequest struct {
	Item    string `json:"item" validate:"required"`
	Checked bool   `json:"checked"`
}

type noteRequest struct {
	Text string `json:"text" validate:"required"`
}

type decisionRequest struct {
	Outcome       string `json:"outcome" validate:"required"`
	DecisionNotes string `json:"decision_notes"`
}
