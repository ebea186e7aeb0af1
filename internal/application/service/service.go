// Package service orchestrates the application review workflow: intake with
// entity registration and sanction screening, staged review transitions, and
// the approval hook that mints the license.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appmetrics "regula/internal/application/metrics"
	"regula/internal/application/models"
	"regula/internal/audit"
	licservice "regula/internal/license/service"
	"regula/internal/platform/idgen"
	"regula/internal/regfeed"
	"regula/internal/registry"
	"regula/internal/screening"
	"regula/internal/staffdir"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/sentinel"
	"regula/pkg/requestcontext"
)

const tracerName = "regula.application"

// Store is the persistence port for applications.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context) ([]*models.Application, error)
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.Application, error)
	Execute(ctx context.Context, applicationID id.ApplicationID,
		validate func(*models.Application) error,
		mutate func(*models.Application)) (*models.Application, error)
}

// EntityRegistry resolves and registers applicant entities.
type EntityRegistry interface {
	RegisterEntity(ctx context.Context, input registry.EntityInput) (*registry.Entity, error)
	GetEntity(ctx context.Context, entityID id.EntityID) (*registry.Entity, error)
	MarkEntityLicensed(ctx context.Context, entityID id.EntityID)
}

// Screener runs sanction checks over an entity's people.
type Screener interface {
	ScreenAll(ctx context.Context, parties []screening.Party) ([]screening.Result, error)
}

// LicenseIssuer mints (or relinks) the license for an approved application.
type LicenseIssuer interface {
	Issue(ctx context.Context, req licservice.IssueRequest) (*licservice.IssueResult, error)
}

// AuditPublisher records application mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns all application workflow mutations.
type Service struct {
	store    Store
	ids      *idgen.Allocator
	entities EntityRegistry
	screener Screener
	issuer   LicenseIssuer
	tracer   trace.Tracer

	logger   *slog.Logger
	metrics  *appmetrics.Metrics
	auditing AuditPublisher
	staff    staffdir.Directory
	feed     regfeed.Feed
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditing = publisher }
}

// WithStaffDirectory enables reviewer display-name enrichment on detail
// reads.
func WithStaffDirectory(dir staffdir.Directory) Option {
	return func(s *Service) { s.staff = dir }
}

// WithRegulatoryFeed enables applicable-update annotation on detail reads.
func WithRegulatoryFeed(feed regfeed.Feed) Option {
	return func(s *Service) { s.feed = feed }
}

// New constructs an application Service.
func New(store Store, ids *idgen.Allocator, entities EntityRegistry, screener Screener, issuer LicenseIssuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		ids:      ids,
		entities: entities,
		screener: screener,
		issuer:   issuer,
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest is an application intake. Either EntityID names a registered
// entity or NewEntity carries the registration data for a fresh one.
type SubmitRequest struct {
	EntityID  id.EntityID
	NewEntity *registry.EntityInput

	LicenseTypeSought     string
	ApplicationType       string
	AssignedReviewerID    id.StaffID
	AdditionalReviewerIDs []id.StaffID
	ReviewTeam            string
	ReviewDeadlineSLA     *time.Time
	SupportingDocumentIDs []id.DocumentID
	GeneralNotes          []string
}

// Submit registers the entity if needed, screens its people, and creates the
// application at Submitted.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit",
		trace.WithAttributes(attribute.String("application.license_type", req.LicenseTypeSought)))
	defer span.End()

	if strings.TrimSpace(req.LicenseTypeSought) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "license type sought is required")
	}

	entity, err := s.resolveEntity(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.screenEntity(ctx, entity, req.AssignedReviewerID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	applicationType := req.ApplicationType
	if applicationType == "" {
		applicationType = "New License"
	}
	app := &models.Application{
		ID:                    s.ids.ApplicationID(now),
		EntityID:              entity.ID,
		LicenseTypeSought:     req.LicenseTypeSought,
		ApplicationType:       applicationType,
		SubmissionDate:        now,
		ReceivedDate:          now,
		Source:                "Manual Entry",
		Status:                models.StatusSubmitted,
		StatusLastUpdated:     now,
		AssignedReviewerID:    req.AssignedReviewerID,
		AdditionalReviewerIDs: append([]id.StaffID{}, req.AdditionalReviewerIDs...),
		ReviewTeam:            req.ReviewTeam,
		ReviewDeadlineSLA:     req.ReviewDeadlineSLA,
		SupportingDocumentIDs: append([]id.DocumentID{}, req.SupportingDocumentIDs...),
		CommunicationLog:      []models.CommunicationLogEntry{},
		SanctionScreening:     snapshot,
		GeneralNotes:          append([]string{}, req.GeneralNotes...),
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	s.incrementSubmitted()
	s.emit(ctx, audit.Event{
		Subject:  app.ID.String(),
		Action:   string(audit.EventApplicationSubmitted),
		EntityID: app.EntityID,
		Reason:   app.LicenseTypeSought,
	})
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID.String(),
		"entity_id", app.EntityID.String(),
		"license_type", app.LicenseTypeSought,
		"screening_status", app.SanctionScreening.OverallStatus,
	)
	return app, nil
}

func (s *Service) resolveEntity(ctx context.Context, req SubmitRequest) (*registry.Entity, error) {
	if req.NewEntity != nil {
		entity, err := s.entities.RegisterEntity(ctx, *req.NewEntity)
		if err != nil {
			return nil, err
		}
		return entity, nil
	}
	if req.EntityID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "an existing entity id or new entity data is required")
	}
	entity, err := s.entities.GetEntity(ctx, req.EntityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "entity %s could not be resolved", req.EntityID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve entity")
	}
	return entity, nil
}

// screenEntity checks the primary contact against the full list set and
// directors and beneficial owners against the core lists.
func (s *Service) screenEntity(ctx context.Context, entity *registry.Entity, reviewer id.StaffID) (models.SanctionScreening, error) {
	parties := make([]screening.Party, 0, 1+len(entity.Directors)+len(entity.UBOs))
	parties = append(parties, screening.Party{
		ID:       entity.PrimaryContact.ID,
		FullName: entity.PrimaryContact.FullName,
		Lists:    []string{"OFAC", "UN", "EU"},
	})
	for _, p := range append(append([]registry.Person{}, entity.Directors...), entity.UBOs...) {
		parties = append(parties, screening.Party{
			ID:       p.ID,
			FullName: p.FullName,
			Lists:    []string{"OFAC", "UN"},
		})
	}

	results, err := s.screener.ScreenAll(ctx, parties)
	if err != nil {
		return models.SanctionScreening{}, dErrors.Wrap(err, dErrors.CodeInternal, "sanction screening failed")
	}

	overall := "Clear"
	notes := "Initial screening clear for primary contact, directors, and beneficial owners."
	for _, r := range results {
		s.incrementScreening(string(r.Outcome))
		if r.Outcome != screening.OutcomeClear {
			overall = "Potential Match Found"
			notes = "Potential watchlist matches require manual adjudication."
		}
	}

	adjudicator := reviewer
	if adjudicator.IsZero() {
		adjudicator = requestcontext.StaffID(ctx)
	}
	return models.SanctionScreening{
		OverallStatus:     overall,
		LastScreeningDate: requestcontext.Now(ctx),
		ScreenedParties:   results,
		AdjudicationNotes: notes,
		AdjudicatedBy:     adjudicator,
	}, nil
}

// Advance moves an application one stage through the review pipeline.
// Approved additionally mints (or relinks) the license and stores its id on
// the application.
func (s *Service) Advance(ctx context.Context, applicationID id.ApplicationID, next models.Status, notes string) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.advance",
		trace.WithAttributes(
			attribute.String("application.id", applicationID.String()),
			attribute.String("application.next_status", string(next)),
		))
	defer span.End()

	if next == models.StatusApproved {
		return s.approve(ctx, applicationID, notes)
	}

	now := requestcontext.Now(ctx)
	app, err := s.store.Execute(ctx, applicationID,
		func(a *models.Application) error {
			return a.CanAdvance(next, notes)
		},
		func(a *models.Application) {
			a.ApplyAdvance(next, notes, now)
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.incrementTransition(next)
	action := audit.EventApplicationAdvanced
	if next == models.StatusDenied {
		action = audit.EventApplicationDenied
		s.incrementDecision(next)
	}
	s.emit(ctx, audit.Event{
		Subject:  app.ID.String(),
		Action:   string(action),
		EntityID: app.EntityID,
		Decision: string(next),
		Reason:   notes,
	})
	s.logger.InfoContext(ctx, "application advanced",
		"application_id", app.ID.String(),
		"status", string(next),
	)
	return app, nil
}

// approve issues the license before committing the terminal transition. The
// issuer is idempotent per application, so a retry after a mid-flight
// failure converges on the same license.
func (s *Service) approve(ctx context.Context, applicationID id.ApplicationID, notes string) (*models.Application, error) {
	current, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	if err := current.CanAdvance(models.StatusApproved, notes); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	issued, err := s.issuer.Issue(ctx, licservice.IssueRequest{
		ApplicationID: current.ID,
		EntityID:      current.EntityID,
		LicenseType:   current.LicenseTypeSought,
		DecisionDate:  now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "license issuance failed")
	}

	app, err := s.store.Execute(ctx, applicationID,
		func(a *models.Application) error {
			return a.CanAdvance(models.StatusApproved, notes)
		},
		func(a *models.Application) {
			a.ApplyAdvance(models.StatusApproved, notes, now)
			a.EffectiveLicenseID = issued.License.ID
			a.GeneralNotes = append(a.GeneralNotes, issued.Reason)
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.entities.MarkEntityLicensed(ctx, app.EntityID)
	s.incrementTransition(models.StatusApproved)
	s.incrementDecision(models.StatusApproved)
	s.emit(ctx, audit.Event{
		Subject:  app.ID.String(),
		Action:   string(audit.EventApplicationApproved),
		EntityID: app.EntityID,
		Decision: string(models.StatusApproved),
		Reason:   issued.Reason,
	})
	s.logger.InfoContext(ctx, "application approved",
		"application_id", app.ID.String(),
		"license_id", issued.License.ID.String(),
	)
	return app, nil
}

// AddNote appends a general note. The only precondition is that the
// application exists.
func (s *Service) AddNote(ctx context.Context, applicationID id.ApplicationID, note string) (*models.Application, error) {
	if strings.TrimSpace(note) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "note text is required")
	}
	now := requestcontext.Now(ctx)
	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			a.GeneralNotes = append(a.GeneralNotes, note)
			a.StatusLastUpdated = now
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// LogCommunication appends a communication-log entry stamped with the
// calling reviewer.
func (s *Service) LogCommunication(ctx context.Context, applicationID id.ApplicationID, commType, summary string) (*models.Application, error) {
	if strings.TrimSpace(commType) == "" || strings.TrimSpace(summary) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "communication type and summary are required")
	}
	entry := models.CommunicationLogEntry{
		LogID:    "log_" + uuid.NewString(),
		Date:     requestcontext.Now(ctx),
		Type:     commType,
		Summary:  summary,
		LoggedBy: requestcontext.StaffID(ctx),
	}
	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			a.CommunicationLog = append(a.CommunicationLog, entry)
			a.StatusLastUpdated = entry.Date
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// AssignReviewer replaces the lead reviewer.
func (s *Service) AssignReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error) {
	if reviewerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer id is required")
	}
	now := requestcontext.Now(ctx)
	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			a.AssignedReviewerID = reviewerID
			a.StatusLastUpdated = now
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// AddAdditionalReviewer adds a supporting reviewer. Adding an already
// assigned reviewer is a no-op.
func (s *Service) AddAdditionalReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error) {
	if reviewerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer id is required")
	}
	now := requestcontext.Now(ctx)
	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			for _, existing := range a.AdditionalReviewerIDs {
				if existing == reviewerID {
					return
				}
			}
			a.AdditionalReviewerIDs = append(a.AdditionalReviewerIDs, reviewerID)
			a.StatusLastUpdated = now
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// RemoveAdditionalReviewer removes a supporting reviewer. Removing one who
// was never assigned is a no-op.
func (s *Service) RemoveAdditionalReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.StaffID) (*models.Application, error) {
	now := requestcontext.Now(ctx)
	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			kept := a.AdditionalReviewerIDs[:0]
			removed := false
			for _, existing := range a.AdditionalReviewerIDs {
				if existing == reviewerID {
					removed = true
					continue
				}
				kept = append(kept, existing)
			}
			a.AdditionalReviewerIDs = kept
			if removed {
				a.StatusLastUpdated = now
			}
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// Rescreen re-runs sanction checks for the application's entity and
// replaces the screening snapshot.
func (s *Service) Rescreen(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	current, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	entity, err := s.entities.GetEntity(ctx, current.EntityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve entity for re-screening")
	}
	snapshot, err := s.screenEntity(ctx, entity, current.AssignedReviewerID)
	if err != nil {
		return nil, err
	}

	app, err := s.store.Execute(ctx, applicationID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			a.SanctionScreening = snapshot
			a.StatusLastUpdated = snapshot.LastScreeningDate
		},
	)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	s.logger.InfoContext(ctx, "application re-screened",
		"application_id", app.ID.String(),
		"screening_status", snapshot.OverallStatus,
	)
	return app, nil
}

// Get retrieves an application by id.
func (s *Service) Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	if applicationID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application id is required")
	}
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// List returns all applications in submission order.
func (s *Service) List(ctx context.Context) ([]*models.Application, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListByEntity returns an entity's applications in submission order.
func (s *Service) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*models.Application, error) {
	apps, err := s.store.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func wrapApplicationErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition),
		dErrors.HasCode(err, dErrors.CodeMissingReason),
		dErrors.HasCode(err, dErrors.CodeValidation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "application operation failed")
	}
}

func (s *Service) incrementSubmitted() {
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
}

func (s *Service) incrementTransition(to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(to))
	}
}

func (s *Service) incrementDecision(decision models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementDecision(string(decision))
	}
}

func (s *Service) incrementScreening(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementScreening(outcome)
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
