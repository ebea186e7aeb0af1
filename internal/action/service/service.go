// Package service orchestrates the remedial action workflow: drafting,
// review submission, and the decision path that is the only way an action
// may change a license's status.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	actionmetrics "regula/internal/action/metrics"
	"regula/internal/action/models"
	"regula/internal/audit"
	licmodels "regula/internal/license/models"
	"regula/internal/platform/idgen"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/sentinel"
	pstrings "regula/pkg/platform/strings"
	"regula/pkg/requestcontext"
)

const tracerName = "regula.action"

// Store is the persistence port for actions.
type Store interface {
	Create(ctx context.Context, action *models.Action) error
	FindByID(ctx context.Context, actionID id.ActionID) (*models.Action, error)
	List(ctx context.Context) ([]*models.Action, error)
	ListByLicense(ctx context.Context, licenseID id.LicenseID) ([]*models.Action, error)
	Execute(ctx context.Context, actionID id.ActionID,
		validate func(*models.Action) error,
		mutate func(*models.Action)) (*models.Action, error)
}

// LicenseGateway is the slice of the license service an approved action
// needs: reading the license and applying the validated status transition.
type LicenseGateway interface {
	Get(ctx context.Context, licenseID id.LicenseID) (*licmodels.License, error)
	ChangeStatus(ctx context.Context, licenseID id.LicenseID, next licmodels.Status, reason string) (*licmodels.License, error)
}

// AuditPublisher records action mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns all license action mutations.
type Service struct {
	store    Store
	ids      *idgen.Allocator
	licenses LicenseGateway
	tracer   trace.Tracer

	logger   *slog.Logger
	metrics  *actionmetrics.Metrics
	auditing AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *actionmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditing = publisher }
}

// New constructs an action Service.
func New(store Store, ids *idgen.Allocator, licenses LicenseGateway, opts ...Option) *Service {
	s := &Service{
		store:    store,
		ids:      ids,
		licenses: licenses,
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create drafts a remedial action against an existing license, snapshotting
// the license status for the audit trail.
func (s *Service) Create(ctx context.Context, licenseID id.LicenseID, actionType models.Type, initiatedBy id.StaffID) (*models.Action, error) {
	ctx, span := s.tracer.Start(ctx, "action.create",
		trace.WithAttributes(
			attribute.String("license.id", licenseID.String()),
			attribute.String("action.type", string(actionType)),
		))
	defer span.End()

	if !models.KnownType(actionType) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown action type %q", actionType)
	}
	if initiatedBy.IsZero() {
		initiatedBy = requestcontext.StaffID(ctx)
	}
	if initiatedBy.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "initiating staff id is required")
	}

	license, err := s.licenses.Get(ctx, licenseID)
	if err != nil {
		return nil, err
	}

	action := &models.Action{
		ID:                    s.ids.ActionID(),
		LicenseID:             license.ID,
		ActionType:            actionType,
		Status:                models.StatusDraft,
		OriginalLicenseStatus: license.Status,
		InitiatingStaffID:     initiatedBy,
		CreationDate:          requestcontext.Now(ctx),
		SupportingDocumentIDs: []id.DocumentID{},
		InternalReviewNotes:   []models.Note{},
		Checklist:             models.NewChecklist(actionType),
	}

	if err := s.store.Create(ctx, action); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create action")
	}

	s.incrementCreated(actionType)
	s.emit(ctx, audit.Event{
		Subject:  action.ID.String(),
		Action:   string(audit.EventActionCreated),
		EntityID: license.EntityID,
		Reason:   string(actionType),
	})
	s.logger.InfoContext(ctx, "license action drafted",
		"action_id", action.ID.String(),
		"license_id", license.ID.String(),
		"action_type", string(actionType),
	)
	return action, nil
}

// UpdateReason sets the reason fields. Allowed only while Draft.
func (s *Service) UpdateReason(ctx context.Context, actionID id.ActionID, category, details string) (*models.Action, error) {
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanEditDetails() },
		func(a *models.Action) {
			a.ReasonCategory = category
			a.ReasonDetails = details
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// AddDocument attaches a supporting document. Adding one already attached is
// a no-op. Allowed only while Draft.
func (s *Service) AddDocument(ctx context.Context, actionID id.ActionID, docID id.DocumentID) (*models.Action, error) {
	if docID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "document id is required")
	}
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanEditDetails() },
		func(a *models.Action) {
			a.SupportingDocumentIDs = pstrings.AppendMissing(a.SupportingDocumentIDs, docID)
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// RemoveDocument detaches a supporting document. Allowed only while Draft.
func (s *Service) RemoveDocument(ctx context.Context, actionID id.ActionID, docID id.DocumentID) (*models.Action, error) {
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanEditDetails() },
		func(a *models.Action) {
			kept := a.SupportingDocumentIDs[:0]
			for _, existing := range a.SupportingDocumentIDs {
				if existing != docID {
					kept = append(kept, existing)
				}
			}
			a.SupportingDocumentIDs = kept
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// SetChecklistItem ticks or unticks a governance checklist item. Allowed
// while Draft or Pending Review.
func (s *Service) SetChecklistItem(ctx context.Context, actionID id.ActionID, item string, checked bool) (*models.Action, error) {
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error {
			if err := a.CanEditChecklist(); err != nil {
				return err
			}
			if _, ok := a.Checklist[item]; !ok {
				return dErrors.Newf(dErrors.CodeValidation, "unknown checklist item %q", item)
			}
			return nil
		},
		func(a *models.Action) {
			a.Checklist[item] = checked
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// AddNote appends an internal review note stamped with the calling staff
// member. Allowed until the action is decided.
func (s *Service) AddNote(ctx context.Context, actionID id.ActionID, text string) (*models.Action, error) {
	if strings.TrimSpace(text) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "note text is required")
	}
	note := models.Note{
		NoteID:  "lcan_" + uuid.NewString(),
		StaffID: requestcontext.StaffID(ctx),
		Date:    requestcontext.Now(ctx),
		Text:    strings.TrimSpace(text),
	}
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanAddNote() },
		func(a *models.Action) {
			a.InternalReviewNotes = append(a.InternalReviewNotes, note)
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// SubmitForReview moves a draft with complete reason fields to Pending
// Review.
func (s *Service) SubmitForReview(ctx context.Context, actionID id.ActionID) (*models.Action, error) {
	ctx, span := s.tracer.Start(ctx, "action.submit_for_review",
		trace.WithAttributes(attribute.String("action.id", actionID.String())))
	defer span.End()

	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanSubmitForReview() },
		func(a *models.Action) {
			a.Status = models.StatusPendingReview
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}

	s.emit(ctx, audit.Event{
		Subject: action.ID.String(),
		Action:  string(audit.EventActionSubmitted),
		Reason:  action.ReasonCategory,
	})
	s.logger.InfoContext(ctx, "license action submitted for review",
		"action_id", action.ID.String(),
		"license_id", action.LicenseID.String(),
	)
	return action, nil
}

// Decide records the decision and, for approving outcomes, applies the
// corresponding license status change. The license transition is validated
// up front so a decision is never recorded against a license that cannot
// accept it.
func (s *Service) Decide(ctx context.Context, actionID id.ActionID, outcome, decisionNotes string) (*models.Action, error) {
	ctx, span := s.tracer.Start(ctx, "action.decide",
		trace.WithAttributes(
			attribute.String("action.id", actionID.String()),
			attribute.String("action.outcome", outcome),
		))
	defer span.End()

	if strings.TrimSpace(outcome) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a decision outcome is required")
	}

	current, err := s.store.FindByID(ctx, actionID)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	if err := current.CanDecide(decisionNotes); err != nil {
		return nil, err
	}

	approved := models.StatusForOutcome(outcome) == models.StatusApproved
	if approved {
		license, err := s.licenses.Get(ctx, current.LicenseID)
		if err != nil {
			return nil, err
		}
		if license.Status != current.TargetLicenseStatus() {
			if err := license.CanChangeStatus(current.TargetLicenseStatus()); err != nil {
				return nil, err
			}
		}
	}

	now := requestcontext.Now(ctx)
	decidedBy := requestcontext.StaffID(ctx)
	action, err := s.store.Execute(ctx, actionID,
		func(a *models.Action) error { return a.CanDecide(decisionNotes) },
		func(a *models.Action) {
			a.ApplyDecision(outcome, decisionNotes, decidedBy, now)
		},
	)
	if err != nil {
		return nil, wrapActionErr(err)
	}

	if action.Status == models.StatusApproved {
		if err := s.applyToLicense(ctx, action); err != nil {
			return nil, err
		}
	}

	s.incrementDecision(action)
	s.emit(ctx, audit.Event{
		Subject:  action.ID.String(),
		Action:   string(audit.EventActionDecided),
		Decision: outcome,
		Reason:   decisionNotes,
	})
	s.logger.InfoContext(ctx, "license action decided",
		"action_id", action.ID.String(),
		"license_id", action.LicenseID.String(),
		"outcome", outcome,
		"status", string(action.Status),
	)
	return action, nil
}

// applyToLicense performs the single license mutation an approved action is
// allowed: the status transition with a reason referencing the action.
func (s *Service) applyToLicense(ctx context.Context, action *models.Action) error {
	target := action.TargetLicenseStatus()
	license, err := s.licenses.Get(ctx, action.LicenseID)
	if err != nil {
		return err
	}
	if license.Status == target {
		return nil
	}
	if _, err := s.licenses.ChangeStatus(ctx, action.LicenseID, target, action.LicenseStatusReason()); err != nil {
		return err
	}
	return nil
}

// Get retrieves an action by id.
func (s *Service) Get(ctx context.Context, actionID id.ActionID) (*models.Action, error) {
	if actionID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "action id is required")
	}
	action, err := s.store.FindByID(ctx, actionID)
	if err != nil {
		return nil, wrapActionErr(err)
	}
	return action, nil
}

// List returns all actions in creation order.
func (s *Service) List(ctx context.Context) ([]*models.Action, error) {
	actions, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list actions")
	}
	return actions, nil
}

// ListByLicense returns a license's actions in creation order.
func (s *Service) ListByLicense(ctx context.Context, licenseID id.LicenseID) ([]*models.Action, error) {
	actions, err := s.store.ListByLicense(ctx, licenseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list actions")
	}
	return actions, nil
}

func wrapActionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "action not found")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition),
		dErrors.HasCode(err, dErrors.CodeIneligibleState),
		dErrors.HasCode(err, dErrors.CodeMissingField),
		dErrors.HasCode(err, dErrors.CodeMissingReason),
		dErrors.HasCode(err, dErrors.CodeValidation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "action operation failed")
	}
}

func (s *Service) incrementCreated(actionType models.Type) {
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(actionType))
	}
}

func (s *Service) incrementDecision(action *models.Action) {
	if s.metrics != nil {
		s.metrics.IncrementDecision(string(action.ActionType), string(action.Status))
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
