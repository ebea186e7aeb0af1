// Package models defines the license aggregate and its two state machines:
// the license status lifecycle and the renewal workflow riding on it.
package models

import (
	"strings"
	"time"

	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

// Status is the license lifecycle status.
type Status string

const (
	StatusActive         Status = "Active"
	StatusSuspended      Status = "Suspended"
	StatusPendingRenewal Status = "Pending Renewal"
	StatusRevoked        Status = "Revoked"
	StatusExpired        Status = "Expired"
)

// statusTransitions is the single source of truth for legal status changes.
// Revoked and Expired are terminal.
var statusTransitions = map[Status][]Status{
	StatusActive:         {StatusSuspended, StatusPendingRenewal, StatusRevoked, StatusExpired},
	StatusSuspended:      {StatusActive, StatusRevoked},
	StatusPendingRenewal: {StatusActive, StatusRevoked, StatusExpired},
	StatusRevoked:        {},
	StatusExpired:        {},
}

// CanTransitionTo reports whether the status change is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RenewalStatus is the state of the renewal workflow attached to a license.
type RenewalStatus string

const (
	RenewalNotStarted            RenewalStatus = "Not Started"
	RenewalPendingSubmission     RenewalStatus = "Pending Submission"
	RenewalSubmitted             RenewalStatus = "Submitted"
	RenewalUnderReview           RenewalStatus = "Under Review"
	RenewalApproved              RenewalStatus = "Renewal Approved"
	RenewalDenied                RenewalStatus = "Renewal Denied"
	RenewalRequiresClarification RenewalStatus = "Requires Clarification"
)

var renewalTransitions = map[RenewalStatus][]RenewalStatus{
	RenewalNotStarted:            {RenewalPendingSubmission},
	RenewalPendingSubmission:     {RenewalSubmitted},
	RenewalSubmitted:             {RenewalUnderReview, RenewalRequiresClarification},
	RenewalUnderReview:           {RenewalApproved, RenewalDenied, RenewalRequiresClarification},
	RenewalRequiresClarification: {RenewalSubmitted, RenewalUnderReview},
	RenewalApproved:              {},
	RenewalDenied:                {},
}

// CanTransitionTo reports whether the renewal workflow change is legal.
func (s RenewalStatus) CanTransitionTo(next RenewalStatus) bool {
	for _, allowed := range renewalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether a renewal cycle is in flight: anything past Not
// Started that has not reached a terminal renewal decision.
func (s RenewalStatus) Active() bool {
	switch s {
	case RenewalNotStarted, RenewalApproved, RenewalDenied, "":
		return false
	}
	return true
}

// Renewal is the renewal workflow sub-record.
type Renewal struct {
	Status                    RenewalStatus   `json:"renewal_status"`
	ApplicationID             string          `json:"renewal_application_id,omitempty"`
	SubmissionDate            *time.Time      `json:"renewal_submission_date,omitempty"`
	LastUpdated               *time.Time      `json:"renewal_last_updated,omitempty"`
	Notes                     []string        `json:"renewal_notes"`
	DocumentIDs               []id.DocumentID `json:"renewal_document_ids"`
	ComplianceHistoryReviewed bool            `json:"compliance_history_reviewed"`
}

// License is the aggregate root for an issued license.
//
// Invariants:
//   - Status changes flow through CanChangeStatus/ApplyStatusChange only
//   - A Suspended license rejects every renewal mutation
//   - IssueDate < ExpiryDate; NextRenewalDueDate = ExpiryDate - 60 days
type License struct {
	ID                 id.LicenseID     `json:"license_id"`
	LicenseNumber      string           `json:"license_number"`
	EntityID           id.EntityID      `json:"entity_id"`
	ApplicationGranted id.ApplicationID `json:"application_id_granted"`
	LicenseType        string           `json:"license_type"`
	IssueDate          time.Time        `json:"issue_date"`
	ExpiryDate         time.Time        `json:"expiry_date"`
	LastRenewalDate    *time.Time       `json:"last_renewal_date,omitempty"`
	NextRenewalDueDate time.Time        `json:"next_renewal_due_date"`
	Status             Status           `json:"license_status"`
	StatusReason       string           `json:"status_reason,omitempty"`
	StatusLastUpdated  time.Time        `json:"status_last_updated"`
	Renewal            Renewal          `json:"renewal"`
}

func (l *License) IsSuspended() bool {
	return l.Status == StatusSuspended
}

// CanChangeStatus checks the status change against the transition table.
// Use with ApplyStatusChange in Execute callbacks.
func (l *License) CanChangeStatus(next Status) error {
	if !l.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"license status cannot change from %q to %q", l.Status, next)
	}
	return nil
}

// ApplyStatusChange records the new status and its reason.
// Call CanChangeStatus first to validate the transition.
func (l *License) ApplyStatusChange(next Status, reason string, now time.Time) {
	l.Status = next
	l.StatusReason = reason
	l.StatusLastUpdated = now
}

// CanInitiateRenewal checks that a renewal cycle may start.
func (l *License) CanInitiateRenewal() error {
	if l.IsSuspended() {
		return dErrors.New(dErrors.CodeLicenseSuspended, "license is suspended; renewal actions are unavailable")
	}
	if l.Status != StatusActive && l.Status != StatusPendingRenewal {
		return dErrors.Newf(dErrors.CodeIneligibleState,
			"license is not Active or Pending Renewal; current status: %s", l.Status)
	}
	return nil
}

// ApplyRenewalInitiation resets the renewal sub-record and opens a new
// cycle. Prior notes and documents belong to the previous cycle and are
// cleared.
func (l *License) ApplyRenewalInitiation(now time.Time) {
	l.Renewal = Renewal{
		Status:      RenewalPendingSubmission,
		LastUpdated: &now,
		Notes:       []string{},
		DocumentIDs: []id.DocumentID{},
	}
}

// TermYears returns the license term for a license type. Term is keyed on
// case-insensitive substring match against the type name.
func TermYears(licenseType string) int {
	t := strings.ToLower(licenseType)
	switch {
	case strings.Contains(t, "credit"):
		return 2
	case strings.Contains(t, "investment"):
		return 3
	case strings.Contains(t, "banking"):
		return 5
	default:
		return 1
	}
}

// RenewalDueBefore computes the renewal due date for an expiry date.
func RenewalDueBefore(expiry time.Time) time.Time {
	return expiry.AddDate(0, 0, -60)
}
