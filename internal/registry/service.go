package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"regula/internal/audit"
	"regula/internal/platform/idgen"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/sentinel"
	"regula/pkg/requestcontext"
)

// Store is the persistence port for entities and document metadata.
type Store interface {
	CreateEntity(ctx context.Context, entity *Entity) error
	FindEntity(ctx context.Context, entityID id.EntityID) (*Entity, error)
	ListEntities(ctx context.Context) ([]*Entity, error)
	UpdateEntityStatus(ctx context.Context, entityID id.EntityID, status EntityStatus) error
	CreateDocument(ctx context.Context, doc *Document) error
	FindDocument(ctx context.Context, docID id.DocumentID) (*Document, error)
}

// AuditPublisher records registry mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates entity intake and document registration.
type Service struct {
	store Store
	blobs BlobStore
	ids   *idgen.Allocator

	logger   *slog.Logger
	auditing AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditing = publisher }
}

// New constructs a registry Service.
func New(store Store, blobs BlobStore, ids *idgen.Allocator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		blobs:  blobs,
		ids:    ids,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EntityInput is the intake payload for a new applicant organization.
// Directors and UBOs omit ids; the service allocates person ids for every
// listed individual.
type EntityInput struct {
	CompanyName                 string
	LegalName                   string
	RegistrationNumber          string
	DateOfIncorporation         string
	JurisdictionOfIncorporation string
	CompanyType                 string
	PrimaryAddress              string
	Website                     string
	PrimaryContact              Person
	Directors                   []Person
	UBOs                        []Person
}

// RegisterEntity creates an entity during application intake. New entities
// start as applicants with a medium risk rating until assessed.
func (s *Service) RegisterEntity(ctx context.Context, input EntityInput) (*Entity, error) {
	now := requestcontext.Now(ctx)

	entity := &Entity{
		ID:                          s.ids.EntityID(),
		CompanyName:                 input.CompanyName,
		LegalName:                   input.LegalName,
		RegistrationNumber:          input.RegistrationNumber,
		DateOfIncorporation:         input.DateOfIncorporation,
		JurisdictionOfIncorporation: input.JurisdictionOfIncorporation,
		CompanyType:                 input.CompanyType,
		PrimaryAddress:              input.PrimaryAddress,
		Website:                     input.Website,
		PrimaryContact:              input.PrimaryContact,
		Directors:                   input.Directors,
		UBOs:                        input.UBOs,
		RiskRating:                  RiskMedium,
		Status:                      EntityStatusApplicant,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	entity.PrimaryContact.ID = s.ids.PersonID()
	if entity.PrimaryContact.Position == "" {
		entity.PrimaryContact.Position = "Primary Contact"
	}
	for i := range entity.Directors {
		entity.Directors[i].ID = s.ids.PersonID()
		entity.Directors[i].Position = "Director"
	}
	for i := range entity.UBOs {
		entity.UBOs[i].ID = s.ids.PersonID()
	}

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateEntity(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register entity")
	}

	s.emit(ctx, audit.Event{
		Timestamp: now,
		Subject:   entity.ID.String(),
		Action:    string(audit.EventEntityRegistered),
		EntityID:  entity.ID,
		ActorID:   requestcontext.StaffID(ctx),
	})
	return entity, nil
}

// GetEntity retrieves an entity by id.
func (s *Service) GetEntity(ctx context.Context, entityID id.EntityID) (*Entity, error) {
	if entityID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "entity id is required")
	}
	entity, err := s.store.FindEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "entity %s not found", entityID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity")
	}
	return entity, nil
}

// ListEntities returns all registered entities in registration order.
func (s *Service) ListEntities(ctx context.Context) ([]*Entity, error) {
	entities, err := s.store.ListEntities(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entities")
	}
	return entities, nil
}

// MarkEntityLicensed updates the entity's compliance-readiness status once
// its first license is issued. A missing entity is not an error here: the
// license is already granted and entity status is display metadata.
func (s *Service) MarkEntityLicensed(ctx context.Context, entityID id.EntityID) {
	if err := s.store.UpdateEntityStatus(ctx, entityID, EntityStatusLicensed); err != nil {
		s.logger.WarnContext(ctx, "could not mark entity licensed",
			"entity_id", entityID.String(),
			"error", err.Error(),
		)
	}
}

// UploadDocument stores file content in the blob store and records the
// document metadata. Returns the new document id.
func (s *Service) UploadDocument(ctx context.Context, upload FileUpload, documentType, uploadedBy string) (id.DocumentID, error) {
	if upload.Name == "" || documentType == "" {
		return "", dErrors.New(dErrors.CodeValidation, "file name and document type are required")
	}
	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
		upload.MimeType = mimeType
	}

	locator, err := s.blobs.Put(ctx, upload)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document content")
	}

	doc := &Document{
		ID:             s.ids.DocumentID(),
		FileName:       upload.Name,
		DocumentType:   documentType,
		Version:        "1.0",
		UploadDate:     requestcontext.Now(ctx),
		UploadedBy:     uploadedBy,
		MimeType:       mimeType,
		ContentLocator: locator,
		Description:    fmt.Sprintf("Document uploaded for %s. Original filename: %s.", documentType, upload.Name),
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document metadata")
	}

	s.emit(ctx, audit.Event{
		Timestamp: doc.UploadDate,
		Subject:   doc.ID.String(),
		Action:    string(audit.EventDocumentRegistered),
		ActorID:   requestcontext.StaffID(ctx),
	})
	return doc.ID, nil
}

// GetDocument retrieves document metadata by id.
func (s *Service) GetDocument(ctx context.Context, docID id.DocumentID) (*Document, error) {
	doc, err := s.store.FindDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "document %s not found", docID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditing == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditing.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"subject", event.Subject,
			"error", err.Error(),
		)
	}
}
