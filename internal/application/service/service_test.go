package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regula/internal/application/models"
	"regula/internal/application/store"
	"regula/internal/audit"
	licmodels "regula/internal/license/models"
	licservice "regula/internal/license/service"
	licstore "regula/internal/license/store"
	"regula/internal/platform/idgen"
	"regula/internal/regfeed"
	"regula/internal/registry"
	"regula/internal/screening"
	"regula/internal/staffdir"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
	"regula/pkg/requestcontext"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	service  *Service
	store    *store.InMemory
	licenses *licstore.InMemory
	registry *registry.Service
	log      *audit.InMemoryStore
	ctx      context.Context
}

func (s *ServiceSuite) SetupTest() {
	ids := idgen.New(idgen.Seeds{})
	s.store = store.NewInMemory()
	s.licenses = licstore.NewInMemory()
	s.registry = registry.New(registry.NewInMemoryStore(), registry.StubBlobStore{}, ids)
	s.log = audit.NewInMemoryStore()

	screener := screening.New(screening.MockProvider{}, screening.NewInMemoryCache(time.Hour))
	issuer := licservice.New(s.licenses, ids)
	staff := staffdir.NewInMemoryDirectory(
		staffdir.Member{ID: "reg_001", Name: "Priya Nair", Role: "Senior Licensing Officer"},
		staffdir.Member{ID: "reg_002", Name: "Tomas Eder", Role: "Review Analyst"},
	)
	feed := regfeed.NewInMemoryFeed(
		regfeed.Update{
			ID:                   "update_001",
			ContentType:          regfeed.ContentUpdate,
			Status:               regfeed.StatusPublished,
			Title:                "Capital requirements revision",
			ApplicableCategories: []string{"Banking"},
		},
	)

	s.service = New(s.store, ids, s.registry, screener, issuer,
		WithAuditPublisher(audit.NewPublisher(s.log)),
		WithStaffDirectory(staff),
		WithRegulatoryFeed(feed),
	)
	s.ctx = requestcontext.WithTime(context.Background(), testNow)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func acmeIntake() SubmitRequest {
	return SubmitRequest{
		NewEntity: &registry.EntityInput{
			CompanyName: "Acme Corp",
			LegalName:   "Acme Corporation Ltd",
			PrimaryContact: registry.Person{
				FullName: "Dana Voss",
				Email:    "dana.voss@acme.example",
			},
			Directors: []registry.Person{
				{FullName: "Miles Archer", Email: "miles.archer@acme.example"},
			},
			UBOs: []registry.Person{
				{FullName: "Vera Lindh", Email: "vera.lindh@acme.example", OwnershipPercentage: 40},
			},
		},
		LicenseTypeSought:  "Banking License",
		AssignedReviewerID: "reg_001",
		ReviewTeam:         "Alpha Review Team",
	}
}

func (s *ServiceSuite) submitAcme() *models.Application {
	app, err := s.service.Submit(s.ctx, acmeIntake())
	s.Require().NoError(err)
	return app
}

// advanceTo walks the application forward through the pipeline stages in
// order, stopping at target.
func (s *ServiceSuite) advanceTo(applicationID id.ApplicationID, target models.Status) *models.Application {
	stages := []models.Status{models.StatusInitialReview, models.StatusDetailedReview, models.StatusAwaitingDecision}
	var app *models.Application
	var err error
	for _, stage := range stages {
		app, err = s.service.Advance(s.ctx, applicationID, stage, "")
		s.Require().NoError(err)
		if stage == target {
			return app
		}
	}
	return app
}

func (s *ServiceSuite) TestSubmitCreatesEntityAndScreening() {
	app := s.submitAcme()

	s.Regexp(`^APP-2603-\d{4}$`, app.ID.String())
	s.Equal(models.StatusSubmitted, app.Status)
	s.Equal("New License", app.ApplicationType)
	s.Equal("Manual Entry", app.Source)
	s.Equal(testNow, app.SubmissionDate)
	s.Equal(testNow, app.ReceivedDate)
	s.Regexp(`^ent_\d{3}$`, app.EntityID.String())

	screeningSnapshot := app.SanctionScreening
	s.Equal("Clear", screeningSnapshot.OverallStatus)
	s.Equal(testNow, screeningSnapshot.LastScreeningDate)
	s.Require().Len(screeningSnapshot.ScreenedParties, 3)
	s.Equal("Dana Voss", screeningSnapshot.ScreenedParties[0].PartyName)
	s.Equal([]string{"OFAC", "UN", "EU"}, screeningSnapshot.ScreenedParties[0].ListsChecked)
	s.Equal([]string{"OFAC", "UN"}, screeningSnapshot.ScreenedParties[1].ListsChecked)
	s.Equal(id.StaffID("reg_001"), screeningSnapshot.AdjudicatedBy)

	entity, err := s.registry.GetEntity(s.ctx, app.EntityID)
	s.Require().NoError(err)
	s.Equal("Acme Corp", entity.CompanyName)
}

func (s *ServiceSuite) TestSubmitExistingEntity() {
	first := s.submitAcme()

	app, err := s.service.Submit(s.ctx, SubmitRequest{
		EntityID:          first.EntityID,
		LicenseTypeSought: "Payment Institution License",
	})
	s.Require().NoError(err)
	s.Equal(first.EntityID, app.EntityID)
}

func (s *ServiceSuite) TestSubmitRequiresEntityAndLicenseType() {
	_, err := s.service.Submit(s.ctx, SubmitRequest{LicenseTypeSought: "Banking License"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Submit(s.ctx, SubmitRequest{EntityID: "ent_001"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Submit(s.ctx, SubmitRequest{EntityID: "ent_404", LicenseTypeSought: "Banking License"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitFlagsWatchlistedDirector() {
	screener := screening.New(screening.MockProvider{
		Watchlist: map[string]bool{"miles archer": true},
	}, screening.NewInMemoryCache(time.Hour))
	flagged := New(s.store, idgen.New(idgen.Seeds{}), s.registry, screener, licservice.New(s.licenses, idgen.New(idgen.Seeds{})))

	app, err := flagged.Submit(s.ctx, acmeIntake())
	s.Require().NoError(err)
	s.Equal("Potential Match Found", app.SanctionScreening.OverallStatus)
	s.Equal(screening.OutcomePotentialMatch, app.SanctionScreening.ScreenedParties[1].Outcome)
}

func (s *ServiceSuite) TestAdvanceEnforcesPipelineOrder() {
	app := s.submitAcme()

	_, err := s.service.Advance(s.ctx, app.ID, models.StatusAwaitingDecision, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	advanced, err := s.service.Advance(s.ctx, app.ID, models.StatusInitialReview, "")
	s.Require().NoError(err)
	s.Equal(models.StatusInitialReview, advanced.Status)
}

func (s *ServiceSuite) TestRequestClarificationRoundTrip() {
	app := s.submitAcme()
	s.advanceTo(app.ID, models.StatusInitialReview)

	parked, err := s.service.Advance(s.ctx, app.ID, models.StatusRequestClarification, "")
	s.Require().NoError(err)
	s.Equal(models.StatusRequestClarification, parked.Status)

	resumed, err := s.service.Advance(s.ctx, app.ID, models.StatusDetailedReview, "")
	s.Require().NoError(err)
	s.Equal(models.StatusDetailedReview, resumed.Status)
}

func (s *ServiceSuite) TestDenyRequiresReason() {
	app := s.submitAcme()
	s.advanceTo(app.ID, models.StatusAwaitingDecision)

	_, err := s.service.Advance(s.ctx, app.ID, models.StatusDenied, " ")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingReason))

	denied, err := s.service.Advance(s.ctx, app.ID, models.StatusDenied, "Unresolved fitness and propriety concerns.")
	s.Require().NoError(err)
	s.Equal(models.StatusDenied, denied.Status)
	s.Equal(models.StatusDenied, denied.Decision)
	s.Equal("Unresolved fitness and propriety concerns.", denied.DecisionReason)
	s.Empty(denied.EffectiveLicenseID)
}

func (s *ServiceSuite) TestApproveIssuesLicense() {
	app := s.submitAcme()
	s.advanceTo(app.ID, models.StatusAwaitingDecision)

	approved, err := s.service.Advance(s.ctx, app.ID, models.StatusApproved, "All review stages passed.")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)
	s.Equal(models.StatusApproved, approved.Decision)
	s.Require().False(approved.EffectiveLicenseID.IsZero())

	license, err := s.licenses.FindByID(s.ctx, approved.EffectiveLicenseID)
	s.Require().NoError(err)
	s.Equal(licmodels.StatusActive, license.Status)
	s.Equal(app.ID, license.ApplicationGranted)
	s.Equal(app.EntityID, license.EntityID)
	// Banking licenses carry a five year term.
	s.Equal(testNow.AddDate(5, 0, 0), license.ExpiryDate)

	s.Require().NotEmpty(approved.GeneralNotes)
	s.Regexp(`^Application approved and license BAN-2026-\d{5} issued\.$`, approved.GeneralNotes[len(approved.GeneralNotes)-1])

	entity, err := s.registry.GetEntity(s.ctx, app.EntityID)
	s.Require().NoError(err)
	s.Equal(registry.EntityStatusLicensed, entity.Status)
}

func (s *ServiceSuite) TestApproveTerminal() {
	app := s.submitAcme()
	s.advanceTo(app.ID, models.StatusAwaitingDecision)
	_, err := s.service.Advance(s.ctx, app.ID, models.StatusApproved, "All review stages passed.")
	s.Require().NoError(err)

	_, err = s.service.Advance(s.ctx, app.ID, models.StatusInitialReview, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *ServiceSuite) TestReviewerAssignments() {
	app := s.submitAcme()

	updated, err := s.service.AssignReviewer(s.ctx, app.ID, "reg_002")
	s.Require().NoError(err)
	s.Equal(id.StaffID("reg_002"), updated.AssignedReviewerID)

	updated, err = s.service.AddAdditionalReviewer(s.ctx, app.ID, "reg_002")
	s.Require().NoError(err)
	s.Equal([]id.StaffID{"reg_002"}, updated.AdditionalReviewerIDs)

	// Adding the same reviewer twice is a no-op.
	updated, err = s.service.AddAdditionalReviewer(s.ctx, app.ID, "reg_002")
	s.Require().NoError(err)
	s.Len(updated.AdditionalReviewerIDs, 1)

	// Removing a reviewer who was never assigned is a no-op.
	updated, err = s.service.RemoveAdditionalReviewer(s.ctx, app.ID, "reg_404")
	s.Require().NoError(err)
	s.Len(updated.AdditionalReviewerIDs, 1)

	updated, err = s.service.RemoveAdditionalReviewer(s.ctx, app.ID, "reg_002")
	s.Require().NoError(err)
	s.Empty(updated.AdditionalReviewerIDs)
}

func (s *ServiceSuite) TestNotesAndCommunicationLog() {
	app := s.submitAcme()

	updated, err := s.service.AddNote(s.ctx, app.ID, "Requested audited financials.")
	s.Require().NoError(err)
	s.Equal([]string{"Requested audited financials."}, updated.GeneralNotes)

	_, err = s.service.AddNote(s.ctx, app.ID, "  ")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	staffCtx := requestcontext.WithStaffID(s.ctx, "reg_001")
	updated, err = s.service.LogCommunication(staffCtx, app.ID, "Email", "Sent document checklist to applicant.")
	s.Require().NoError(err)
	s.Require().Len(updated.CommunicationLog, 1)
	entry := updated.CommunicationLog[0]
	s.NotEmpty(entry.LogID)
	s.Equal("Email", entry.Type)
	s.Equal(id.StaffID("reg_001"), entry.LoggedBy)
	s.Equal(testNow, entry.Date)
}

func (s *ServiceSuite) TestRescreenRefreshesSnapshot() {
	app := s.submitAcme()

	later := requestcontext.WithTime(context.Background(), testNow.Add(48*time.Hour))
	updated, err := s.service.Rescreen(later, app.ID)
	s.Require().NoError(err)
	s.Equal(testNow.Add(48*time.Hour), updated.SanctionScreening.LastScreeningDate)
	s.Len(updated.SanctionScreening.ScreenedParties, 3)
}

func (s *ServiceSuite) TestDetailEnrichment() {
	app := s.submitAcme()
	_, err := s.service.AddAdditionalReviewer(s.ctx, app.ID, "reg_002")
	s.Require().NoError(err)

	detail, err := s.service.Detail(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("Priya Nair (Senior Licensing Officer)", detail.AssignedReviewerName)
	s.Equal([]string{"Tomas Eder (Review Analyst)"}, detail.AdditionalReviewerNames)
	s.Require().Len(detail.ApplicableUpdates, 1)
	s.Equal("Capital requirements revision", detail.ApplicableUpdates[0].Title)
}

func (s *ServiceSuite) TestAuditTrail() {
	app := s.submitAcme()
	s.advanceTo(app.ID, models.StatusAwaitingDecision)
	_, err := s.service.Advance(s.ctx, app.ID, models.StatusApproved, "All review stages passed.")
	s.Require().NoError(err)

	events, err := s.log.ListBySubject(s.ctx, app.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 5)
	s.Equal(string(audit.EventApplicationSubmitted), events[0].Action)
	s.Equal(string(audit.EventApplicationAdvanced), events[1].Action)
	s.Equal(string(audit.EventApplicationApproved), events[4].Action)
}

func (s *ServiceSuite) TestGetMissing() {
	_, err := s.service.Get(s.ctx, "APP-2603-9999")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
