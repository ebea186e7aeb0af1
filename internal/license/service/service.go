// Package service orchestrates the license record lifecycle: issuance upon
// application approval, validated status transitions, the renewal workflow,
// and expiry projections.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"regula/internal/audit"
	licensemetrics "regula/internal/license/metrics"
	"regula/internal/license/models"
	"regula/internal/platform/idgen"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/sentinel"
	"regula/pkg/requestcontext"
)

const tracerName = "regula.license"

// Store is the persistence port for licenses.
type Store interface {
	Create(ctx context.Context, license *models.License) error
	FindByID(ctx context.Context, licenseID id.LicenseID) (*models.License, error)
	FindByApplication(ctx context.Context, applicationID id.ApplicationID) (*models.License, error)
	List(ctx context.Context) ([]*models.License, error)
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.License, error)
	Execute(ctx context.Context, licenseID id.LicenseID,
		validate func(*models.License) error,
		mutate func(*models.License)) (*models.License, error)
}

// AuditPublisher records license mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns all license record mutations.
type Service struct {
	store  Store
	ids    *idgen.Allocator
	tracer trace.Tracer

	logger   *slog.Logger
	metrics  *licensemetrics.Metrics
	auditing AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *licensemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditing = publisher }
}

// New constructs a license Service.
func New(store Store, ids *idgen.Allocator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ids:    ids,
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueRequest carries the approval context a license is minted from.
type IssueRequest struct {
	ApplicationID id.ApplicationID
	EntityID      id.EntityID
	LicenseType   string
	DecisionDate  time.Time
}

// IssueResult is the outcome of an issuance request. Reason is the decision
// reason recorded on the application.
type IssueResult struct {
	License *models.License
	Reason  string
}

// Issue mints a license for an approved application, or returns the one
// already granted. Re-approval of an application whose license has drifted
// off Active reactivates it through the status transition table instead of
// minting a second license.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	ctx, span := s.tracer.Start(ctx, "license.issue",
		trace.WithAttributes(attribute.String("application.id", req.ApplicationID.String())))
	defer span.End()

	if req.ApplicationID.IsZero() || req.EntityID.IsZero() || req.LicenseType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "application id, entity id, and license type are required")
	}

	existing, err := s.store.FindByApplication(ctx, req.ApplicationID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up granted license")
	}
	if existing != nil {
		return s.relinkExisting(ctx, existing)
	}

	now := requestcontext.Now(ctx)
	issueDate := req.DecisionDate
	if issueDate.IsZero() {
		issueDate = now
	}
	expiry := issueDate.AddDate(models.TermYears(req.LicenseType), 0, 0)

	licenseID, seq := s.ids.LicenseID(issueDate)
	license := &models.License{
		ID:                 licenseID,
		LicenseNumber:      idgen.LicenseNumber(req.LicenseType, issueDate, seq),
		EntityID:           req.EntityID,
		ApplicationGranted: req.ApplicationID,
		LicenseType:        req.LicenseType,
		IssueDate:          issueDate,
		ExpiryDate:         expiry,
		NextRenewalDueDate: models.RenewalDueBefore(expiry),
		Status:             models.StatusActive,
		StatusReason:       "License issued upon application approval.",
		StatusLastUpdated:  now,
		Renewal: models.Renewal{
			Status:      models.RenewalNotStarted,
			Notes:       []string{},
			DocumentIDs: []id.DocumentID{},
		},
	}

	if err := s.store.Create(ctx, license); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create license")
	}

	s.incrementIssued()
	s.emit(ctx, audit.Event{
		Subject:  license.ID.String(),
		Action:   string(audit.EventLicenseIssued),
		EntityID: license.EntityID,
		Reason:   license.StatusReason,
	})
	s.logger.InfoContext(ctx, "license issued",
		"license_id", license.ID.String(),
		"license_number", license.LicenseNumber,
		"license_type", license.LicenseType,
		"expiry_date", license.ExpiryDate.Format(time.DateOnly),
	)

	return &IssueResult{
		License: license,
		Reason:  fmt.Sprintf("Application approved and license %s issued.", license.LicenseNumber),
	}, nil
}

func (s *Service) relinkExisting(ctx context.Context, existing *models.License) (*IssueResult, error) {
	reason := fmt.Sprintf("Application approved. Linked to existing license %s.", existing.ID)
	if existing.Status == models.StatusActive {
		return &IssueResult{License: existing, Reason: reason}, nil
	}

	now := requestcontext.Now(ctx)
	license, err := s.store.Execute(ctx, existing.ID,
		func(l *models.License) error {
			return l.CanChangeStatus(models.StatusActive)
		},
		func(l *models.License) {
			l.ApplyStatusChange(models.StatusActive,
				"License re-activated upon application re-approval.", now)
		},
	)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}
	s.incrementTransition(models.StatusActive)
	s.emit(ctx, audit.Event{
		Subject:  license.ID.String(),
		Action:   string(audit.EventLicenseStatusChanged),
		EntityID: license.EntityID,
		Decision: string(models.StatusActive),
		Reason:   license.StatusReason,
	})
	return &IssueResult{License: license, Reason: reason}, nil
}

// ChangeStatus applies a status transition. Every status change in the
// system, action decisions included, lands here so the transition table is
// enforced in exactly one place.
func (s *Service) ChangeStatus(ctx context.Context, licenseID id.LicenseID, next models.Status, reason string) (*models.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.change_status",
		trace.WithAttributes(
			attribute.String("license.id", licenseID.String()),
			attribute.String("license.next_status", string(next)),
		))
	defer span.End()

	now := requestcontext.Now(ctx)
	license, err := s.store.Execute(ctx, licenseID,
		func(l *models.License) error {
			return l.CanChangeStatus(next)
		},
		func(l *models.License) {
			l.ApplyStatusChange(next, reason, now)
		},
	)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}

	s.incrementTransition(next)
	s.emit(ctx, audit.Event{
		Subject:  license.ID.String(),
		Action:   string(audit.EventLicenseStatusChanged),
		EntityID: license.EntityID,
		Decision: string(next),
		Reason:   reason,
	})
	s.logger.InfoContext(ctx, "license status changed",
		"license_id", license.ID.String(),
		"status", string(next),
		"reason", reason,
	)
	return license, nil
}

// Get retrieves a license by id.
func (s *Service) Get(ctx context.Context, licenseID id.LicenseID) (*models.License, error) {
	if licenseID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "license id is required")
	}
	license, err := s.store.FindByID(ctx, licenseID)
	if err != nil {
		return nil, wrapLicenseErr(err)
	}
	return license, nil
}

// List returns all licenses in issuance order.
func (s *Service) List(ctx context.Context) ([]*models.License, error) {
	licenses, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list licenses")
	}
	return licenses, nil
}

// ListByEntity returns an entity's licenses in issuance order.
func (s *Service) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.License, error) {
	licenses, err := s.store.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list licenses")
	}
	return licenses, nil
}

// NearingExpiry returns licenses needing renewal attention within daysOut of
// asOf: those with an in-flight renewal cycle, Active licenses whose renewal
// window opens inside (or already passed) the horizon while still unexpired,
// and licenses parked at Pending Renewal. Expired, Revoked, and Suspended
// licenses are excluded. Sorted by next renewal due date, falling back to
// expiry date.
func (s *Service) NearingExpiry(ctx context.Context, daysOut int, asOf time.Time) ([]*models.License, error) {
	if daysOut <= 0 {
		daysOut = 90
	}
	licenses, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list licenses")
	}

	threshold := asOf.AddDate(0, 0, daysOut)
	out := make([]*models.License, 0)
	for _, l := range licenses {
		switch l.Status {
		case models.StatusExpired, models.StatusRevoked, models.StatusSuspended:
			continue
		}
		cycleInFlight := l.Renewal.Status.Active()
		nearingOrDue := l.Status == models.StatusActive &&
			!l.NextRenewalDueDate.After(threshold) && l.ExpiryDate.After(asOf)
		pastDueActive := l.Status == models.StatusActive &&
			l.NextRenewalDueDate.Before(asOf) && l.ExpiryDate.After(asOf)
		markedPending := l.Status == models.StatusPendingRenewal

		if cycleInFlight || nearingOrDue || pastDueActive || markedPending {
			out = append(out, l)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]).Before(sortKey(out[j]))
	})
	return out, nil
}

func sortKey(l *models.License) time.Time {
	if !l.NextRenewalDueDate.IsZero() {
		return l.NextRenewalDueDate
	}
	return l.ExpiryDate
}

func wrapLicenseErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "license not found")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition),
		dErrors.HasCode(err, dErrors.CodeIneligibleState),
		dErrors.HasCode(err, dErrors.CodeLicenseSuspended),
		dErrors.HasCode(err, dErrors.CodeRenewalNotActive),
		dErrors.HasCode(err, dErrors.CodeMissingField),
		dErrors.HasCode(err, dErrors.CodeMissingReason),
		dErrors.HasCode(err, dErrors.CodeValidation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "license operation failed")
	}
}

func (s *Service) incrementIssued() {
	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
}

func (s *Service) incrementTransition(to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(to))
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditing == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.ActorID = requestcontext.StaffID(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditing.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"subject", event.Subject,
			"error", err.Error(),
		)
	}
}
