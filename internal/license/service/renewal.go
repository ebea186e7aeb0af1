package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"regula/internal/audit"
	"regula/internal/license/models"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	pstrings "regula/pkg/platform/strings"
	"regula/pkg/requestcontext"
)

// InitiateRenewal opens a renewal cycle on a license. Only Active and
// Pending Renewal licenses qualify; a suspended license fails with
// LicenseSuspended before anything else. Initiation resets the renewal
// sub-record: notes and documents from a previous cycle are cleared.
func (s *Service) InitiateRenewal(ctx context.Context, licenseID id.LicenseID) (*models.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.renewal.initiate",
		trace.WithAttributes(attribute.String("license.id", licenseID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	license, err := s.store.Execute(ctx, licenseID,
		func(l *models.License) error {
			return l.CanInitiateRenewal()
		},
		func(l *models.License) {
			l.ApplyRenewalInitiation(now)
		},
	)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementRenewalInitiated()
	}
	s.emit(ctx, audit.Event{
		Subject:  license.ID.String(),
		Action:   string(audit.EventRenewalInitiated),
		EntityID: license.EntityID,
	})
	s.logger.InfoContext(ctx, "renewal cycle opened", "license_id", license.ID.String())
	return license, nil
}

// RenewalUpdate carries a partial update to an in-flight renewal. Notes and
// DocumentIDs are append-only unions; nil pointer fields leave the current
// value untouched.
type RenewalUpdate struct {
	Status                    *models.RenewalStatus
	ApplicationID             *string
	SubmissionDate            *time.Time
	Notes                     []string
	DocumentIDs               []id.DocumentID
	ComplianceHistoryReviewed *bool
}

// UpdateRenewalData mutates an active renewal cycle. Fails with
// RenewalNotActive when no cycle is open and LicenseSuspended when the
// license is suspended; explicit renewal status changes go through the
// renewal transition table.
func (s *Service) UpdateRenewalData(ctx context.Context, licenseID id.LicenseID, update RenewalUpdate) (*models.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.renewal.update",
		trace.WithAttributes(attribute.String("license.id", licenseID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	license, err := s.store.Execute(ctx, licenseID,
		func(l *models.License) error {
			if l.IsSuspended() {
				return dErrors.New(dErrors.CodeLicenseSuspended, "license is suspended; renewal actions are unavailable")
			}
			if l.Renewal.Status == models.RenewalNotStarted || l.Renewal.Status == "" {
				return dErrors.New(dErrors.CodeRenewalNotActive, "renewal process not active for this license")
			}
			if update.Status != nil && !l.Renewal.Status.CanTransitionTo(*update.Status) {
				return dErrors.Newf(dErrors.CodeInvalidTransition,
					"renewal status cannot change from %q to %q", l.Renewal.Status, *update.Status)
			}
			return nil
		},
		func(l *models.License) {
			if len(update.Notes) > 0 {
				l.Renewal.Notes = append(l.Renewal.Notes, update.Notes...)
			}
			if len(update.DocumentIDs) > 0 {
				l.Renewal.DocumentIDs = pstrings.AppendMissing(l.Renewal.DocumentIDs, update.DocumentIDs...)
			}
			if update.Status != nil {
				l.Renewal.Status = *update.Status
			}
			if update.ApplicationID != nil {
				l.Renewal.ApplicationID = *update.ApplicationID
			}
			if update.SubmissionDate != nil {
				l.Renewal.SubmissionDate = update.SubmissionDate
			}
			if update.ComplianceHistoryReviewed != nil {
				l.Renewal.ComplianceHistoryReviewed = *update.ComplianceHistoryReviewed
			}
			l.Renewal.LastUpdated = &now
		},
	)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}
	return license, nil
}

// ProcessRenewalDecision records the terminal outcome of a renewal cycle.
//
// Renewal Approved requires the new expiry date: the license rolls forward
// with issue = old expiry + 1 day, expiry = the new date, next renewal due
// 60 days before it, and status forced back to Active through the
// transition table. Renewal Denied touches the license status only when the
// old expiry has already passed, in which case it becomes Expired.
func (s *Service) ProcessRenewalDecision(ctx context.Context, licenseID id.LicenseID, decision models.RenewalStatus, newExpiry *time.Time, reason string) (*models.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.renewal.decide",
		trace.WithAttributes(
			attribute.String("license.id", licenseID.String()),
			attribute.String("renewal.decision", string(decision)),
		))
	defer span.End()

	if decision != models.RenewalApproved && decision != models.RenewalDenied {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown renewal decision %q", decision)
	}
	if decision == models.RenewalApproved && (newExpiry == nil || newExpiry.IsZero()) {
		return nil, dErrors.New(dErrors.CodeMissingField, "new expiry date is required for renewal approval")
	}

	now := requestcontext.Now(ctx)
	var moved models.Status
	license, err := s.store.Execute(ctx, licenseID,
		func(l *models.License) error {
			if l.IsSuspended() {
				return dErrors.New(dErrors.CodeLicenseSuspended, "license is suspended; renewal actions are unavailable")
			}
			if !l.Renewal.Status.CanTransitionTo(decision) {
				return dErrors.Newf(dErrors.CodeInvalidTransition,
					"renewal status cannot change from %q to %q", l.Renewal.Status, decision)
			}
			if decision == models.RenewalApproved && l.Status != models.StatusActive {
				if err := l.CanChangeStatus(models.StatusActive); err != nil {
					return err
				}
			}
			if decision == models.RenewalDenied && l.ExpiryDate.Before(now) && l.Status != models.StatusExpired {
				if err := l.CanChangeStatus(models.StatusExpired); err != nil {
					return err
				}
			}
			return nil
		},
		func(l *models.License) {
			l.Renewal.Status = decision
			l.Renewal.LastUpdated = &now

			if decision == models.RenewalApproved {
				statusReason := reason
				if statusReason == "" {
					statusReason = "License successfully renewed."
				}
				oldExpiry := l.ExpiryDate
				l.IssueDate = oldExpiry.AddDate(0, 0, 1)
				l.ExpiryDate = *newExpiry
				renewed := now
				l.LastRenewalDate = &renewed
				l.NextRenewalDueDate = models.RenewalDueBefore(*newExpiry)
				if l.Status != models.StatusActive {
					moved = models.StatusActive
					l.ApplyStatusChange(models.StatusActive, statusReason, now)
				} else {
					l.StatusReason = statusReason
					l.StatusLastUpdated = now
				}
				return
			}

			statusReason := reason
			if statusReason == "" {
				statusReason = "License renewal denied."
			}
			if l.ExpiryDate.Before(now) && l.Status != models.StatusExpired {
				moved = models.StatusExpired
				l.ApplyStatusChange(models.StatusExpired, statusReason, now)
			} else {
				l.StatusReason = statusReason
				l.StatusLastUpdated = now
			}
		},
	)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementRenewalDecision(string(decision))
	}
	if moved != "" {
		s.incrementTransition(moved)
	}
	s.emit(ctx, audit.Event{
		Subject:  license.ID.String(),
		Action:   string(audit.EventRenewalDecided),
		EntityID: license.EntityID,
		Decision: string(decision),
		Reason:   reason,
	})
	s.logger.InfoContext(ctx, "renewal decision processed",
		"license_id", license.ID.String(),
		"decision", string(decision),
		"license_status", string(license.Status),
	)
	return license, nil
}
