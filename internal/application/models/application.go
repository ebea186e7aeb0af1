// Package models holds the license application aggregate and its review
// state machine.
package models

import (
	"strings"
	"time"

	"regula/internal/screening"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

// Status is the application's position in the review pipeline.
type Status string

const (
	StatusSubmitted            Status = "Submitted"
	StatusInitialReview        Status = "Initial Review"
	StatusDetailedReview       Status = "Detailed Review"
	StatusAwaitingDecision     Status = "Awaiting Decision"
	StatusRequestClarification Status = "Request Clarification"
	StatusApproved             Status = "Approved"
	StatusDenied               Status = "Denied"
)

// statusTransitions is the review pipeline adjacency. Reviews move forward
// one stage at a time; Request Clarification parks the application and
// returns it to any pre-decision stage. Approved and Denied are terminal.
var statusTransitions = map[Status][]Status{
	StatusSubmitted:            {StatusInitialReview, StatusRequestClarification},
	StatusInitialReview:        {StatusDetailedReview, StatusRequestClarification},
	StatusDetailedReview:       {StatusAwaitingDecision, StatusRequestClarification},
	StatusAwaitingDecision:     {StatusApproved, StatusDenied},
	StatusRequestClarification: {StatusSubmitted, StatusInitialReview, StatusDetailedReview},
	StatusApproved:             {},
	StatusDenied:               {},
}

// Terminal reports whether the status ends the review.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is one of the pipeline statuses.
func KnownStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CommunicationLogEntry records one outbound or inbound exchange with the
// applicant.
type CommunicationLogEntry struct {
	LogID    string     `json:"log_id"`
	Date     time.Time  `json:"date"`
	Type     string     `json:"type"`
	Summary  string     `json:"summary"`
	LoggedBy id.StaffID `json:"logged_by_staff_id"`
}

// SanctionScreening is the screening snapshot seeded at intake and
// refreshed by re-screening. OverallStatus is "Clear" unless any screened
// party came back as a potential match.
type SanctionScreening struct {
	OverallStatus     string             `json:"overall_screening_status"`
	LastScreeningDate time.Time          `json:"last_screening_date"`
	ScreenedParties   []screening.Result `json:"screened_parties"`
	AdjudicationNotes string             `json:"adjudication_notes,omitempty"`
	AdjudicatedBy     id.StaffID         `json:"adjudicated_by_staff_id,omitempty"`
}

// Application is one request for a license, reviewed through the status
// pipeline above. It references its entity, documents, and (once approved)
// license by id only.
type Application struct {
	ID                id.ApplicationID `json:"application_id"`
	EntityID          id.EntityID      `json:"entity_id"`
	LicenseTypeSought string           `json:"license_type_sought"`
	ApplicationType   string           `json:"application_type"`
	SubmissionDate    time.Time        `json:"submission_date"`
	ReceivedDate      time.Time        `json:"received_date"`
	Source            string           `json:"source"`

	Status            Status    `json:"application_status"`
	StatusLastUpdated time.Time `json:"status_last_updated"`

	AssignedReviewerID    id.StaffID   `json:"assigned_reviewer_id,omitempty"`
	AdditionalReviewerIDs []id.StaffID `json:"additional_reviewer_ids"`
	ReviewTeam            string       `json:"review_team,omitempty"`
	ReviewDeadlineSLA     *time.Time   `json:"review_deadline_sla,omitempty"`

	SupportingDocumentIDs []id.DocumentID         `json:"supporting_document_ids"`
	CommunicationLog      []CommunicationLogEntry `json:"communication_log"`
	SanctionScreening     SanctionScreening       `json:"sanction_screening"`
	GeneralNotes          []string                `json:"general_notes"`

	Decision           Status       `json:"decision,omitempty"`
	DecisionDate       *time.Time   `json:"decision_date,omitempty"`
	DecisionReason     string       `json:"decision_reason,omitempty"`
	EffectiveLicenseID id.LicenseID `json:"effective_license_id,omitempty"`
}

// CanAdvance validates a requested transition. Decision statuses require a
// non-empty reason.
func (a *Application) CanAdvance(next Status, reason string) error {
	if !KnownStatus(next) {
		return dErrors.Newf(dErrors.CodeValidation, "unknown application status %q", next)
	}
	if !a.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot move application from %q to %q", a.Status, next)
	}
	if next.Terminal() && strings.TrimSpace(reason) == "" {
		return dErrors.Newf(dErrors.CodeMissingReason,
			"decision %q requires a decision reason", next)
	}
	return nil
}

// ApplyAdvance moves the application to next at now. Terminal statuses set
// the decision fields; stepping back off a decision path clears them.
func (a *Application) ApplyAdvance(next Status, reason string, now time.Time) {
	a.Status = next
	a.StatusLastUpdated = now
	if next.Terminal() {
		a.Decision = next
		decided := now
		a.DecisionDate = &decided
		a.DecisionReason = reason
	} else {
		a.Decision = ""
		a.DecisionDate = nil
		a.DecisionReason = ""
		a.EffectiveLicenseID = ""
	}
}

// Validate enforces the intake invariants.
func (a *Application) Validate() error {
	if a.EntityID.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "application requires an entity")
	}
	if strings.TrimSpace(a.LicenseTypeSought) == "" {
		return dErrors.New(dErrors.CodeValidation, "license type sought is required")
	}
	return nil
}
