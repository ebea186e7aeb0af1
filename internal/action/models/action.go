// Package models defines the remedial license action aggregate: a proposed
// suspension, lift, or revocation reviewed through its own small workflow
// before it may touch the license.
package models

import (
	"fmt"
	"strings"
	"time"

	licmodels "regula/internal/license/models"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

// Type is the remedial change an action proposes.
type Type string

const (
	TypeSuspend Type = "Suspend License"
	TypeLift    Type = "Lift Suspension"
	TypeRevoke  Type = "Revoke License"
)

// KnownType reports whether t is one of the action types.
func KnownType(t Type) bool {
	switch t {
	case TypeSuspend, TypeLift, TypeRevoke:
		return true
	}
	return false
}

// Status is the action's review state. Draft is the only state in which
// reason, checklist, and documents may be edited.
type Status string

const (
	StatusDraft         Status = "Draft"
	StatusPendingReview Status = "Pending Review"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"
)

// OutcomesFor lists the decision outcomes offered for an action type. An
// outcome beginning with "Proceed" approves the action; every other outcome
// rejects it.
func OutcomesFor(t Type) []string {
	switch t {
	case TypeSuspend:
		return []string{"Proceed with Suspension", "Reject Suspension Request"}
	case TypeLift:
		return []string{"Proceed with Lifting Suspension", "Reject Lift Suspension Request"}
	case TypeRevoke:
		return []string{"Proceed with Revocation", "Reject Revocation Request"}
	}
	return nil
}

// StatusForOutcome maps a decision outcome string to the terminal status.
func StatusForOutcome(outcome string) Status {
	if strings.HasPrefix(outcome, "Proceed") {
		return StatusApproved
	}
	return StatusRejected
}

// Governance checklist items shared by every action type, plus the one
// type-specific closing item.
const (
	checklistJustification = "item1"
	checklistEvidence      = "item2"
	checklistImpact        = "item3"
	checklistCommunication = "item4"
	checklistLegal         = "item5"
	checklistSuspend       = "item6_suspend"
	checklistLift          = "item6_lift"
	checklistRevoke        = "item6_revoke"
)

// ChecklistLabels is the display text per checklist item key.
var ChecklistLabels = map[string]string{
	checklistJustification: "Justification & Reasonableness check complete.",
	checklistEvidence:      "Evidence Review check complete.",
	checklistImpact:        "Impact Assessment check complete.",
	checklistCommunication: "Communication Plan (if applicable) reviewed.",
	checklistLegal:         "Legal & Compliance Concurrence obtained.",
	checklistSuspend:       "Suspension Duration & Conditions defined.",
	checklistLift:          "Verification of Rectification complete.",
	checklistRevoke:        "Final Notification Procedures for Revocation Confirmed.",
}

// NewChecklist seeds the unchecked governance checklist for an action type.
func NewChecklist(t Type) map[string]bool {
	checklist := map[string]bool{
		checklistJustification: false,
		checklistEvidence:      false,
		checklistImpact:        false,
		checklistCommunication: false,
		checklistLegal:         false,
	}
	switch t {
	case TypeSuspend:
		checklist[checklistSuspend] = false
	case TypeLift:
		checklist[checklistLift] = false
	case TypeRevoke:
		checklist[checklistRevoke] = false
	}
	return checklist
}

// Note is one internal review note on an action.
type Note struct {
	NoteID  string     `json:"note_id"`
	StaffID id.StaffID `json:"staff_id"`
	Date    time.Time  `json:"date"`
	Text    string     `json:"text"`
}

// Action is a proposed remedial change to a license. It never mutates the
// license directly; an approving decision is applied through the license
// service's status transition.
type Action struct {
	ID         id.ActionID  `json:"action_id"`
	LicenseID  id.LicenseID `json:"license_id"`
	ActionType Type         `json:"action_type"`
	Status     Status       `json:"status"`

	// OriginalLicenseStatus snapshots the license status at creation for
	// the audit trail.
	OriginalLicenseStatus licmodels.Status `json:"original_license_status"`
	InitiatingStaffID     id.StaffID       `json:"initiating_staff_id"`
	CreationDate          time.Time        `json:"creation_date"`

	ReasonCategory        string          `json:"reason_category,omitempty"`
	ReasonDetails         string          `json:"reason_details,omitempty"`
	SupportingDocumentIDs []id.DocumentID `json:"supporting_document_ids"`
	InternalReviewNotes   []Note          `json:"internal_review_notes"`
	Checklist             map[string]bool `json:"internal_review_checklist"`

	DecisionOutcome   string           `json:"decision,omitempty"`
	DecisionNotes     string           `json:"decision_notes,omitempty"`
	DecisionByStaffID id.StaffID       `json:"decision_by_staff_id,omitempty"`
	DecisionDate      *time.Time       `json:"decision_date,omitempty"`
	EffectiveDate     *time.Time       `json:"effective_date,omitempty"`
}

// Terminal reports whether the action has been decided.
func (a *Action) Terminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// CanEditDetails reports whether reason and documents may change.
func (a *Action) CanEditDetails() error {
	if a.Status != StatusDraft {
		return dErrors.Newf(dErrors.CodeIneligibleState,
			"action details are read-only once submitted (status %q)", a.Status)
	}
	return nil
}

// CanEditChecklist reports whether checklist items may change.
func (a *Action) CanEditChecklist() error {
	if a.Status != StatusDraft && a.Status != StatusPendingReview {
		return dErrors.Newf(dErrors.CodeIneligibleState,
			"checklist is read-only in status %q", a.Status)
	}
	return nil
}

// CanAddNote reports whether internal review notes may be added.
func (a *Action) CanAddNote() error {
	if a.Terminal() {
		return dErrors.Newf(dErrors.CodeIneligibleState,
			"notes cannot be added to a decided action (status %q)", a.Status)
	}
	return nil
}

// CanSubmitForReview validates the Draft to Pending Review transition.
// Submission requires both reason fields.
func (a *Action) CanSubmitForReview() error {
	if a.Status != StatusDraft {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"only draft actions can be submitted for review (status %q)", a.Status)
	}
	if strings.TrimSpace(a.ReasonCategory) == "" || strings.TrimSpace(a.ReasonDetails) == "" {
		return dErrors.New(dErrors.CodeMissingField, "reason category and reason details are required")
	}
	return nil
}

// CanDecide validates that a decision may be recorded.
func (a *Action) CanDecide(decisionNotes string) error {
	if a.Status != StatusPendingReview {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"only actions pending review can be decided (status %q)", a.Status)
	}
	if strings.TrimSpace(decisionNotes) == "" {
		return dErrors.New(dErrors.CodeMissingReason, "decision notes are required")
	}
	return nil
}

// ApplyDecision records the decision at now. Approved actions also get an
// effective date.
func (a *Action) ApplyDecision(outcome, decisionNotes string, decidedBy id.StaffID, now time.Time) {
	a.Status = StatusForOutcome(outcome)
	a.DecisionOutcome = outcome
	a.DecisionNotes = decisionNotes
	a.DecisionByStaffID = decidedBy
	decided := now
	a.DecisionDate = &decided
	if a.Status == StatusApproved {
		effective := now
		a.EffectiveDate = &effective
	}
}

// TargetLicenseStatus is the license status an approved action applies.
func (a *Action) TargetLicenseStatus() licmodels.Status {
	switch a.ActionType {
	case TypeSuspend:
		return licmodels.StatusSuspended
	case TypeLift:
		return licmodels.StatusActive
	case TypeRevoke:
		return licmodels.StatusRevoked
	}
	return ""
}

// LicenseStatusReason builds the status reason an approved action stamps on
// the license, cross-referencing the action id.
func (a *Action) LicenseStatusReason() string {
	var prefix string
	switch a.ActionType {
	case TypeSuspend:
		prefix = "Suspended"
	case TypeLift:
		prefix = "Suspension Lifted"
	case TypeRevoke:
		prefix = "Revoked"
	}
	return fmt.Sprintf("%s: %s - %s. Ref: %s", prefix, a.ReasonCategory, a.ReasonDetails, a.ID)
}
