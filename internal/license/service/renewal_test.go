package service

import (
	"time"

	"regula/internal/audit"
	"regula/internal/license/models"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

func (s *ServiceSuite) TestInitiateRenewal() {
	license := s.issue("APP-2603-0001", "Payment Institution")

	renewed, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)
	s.Equal(models.RenewalPendingSubmission, renewed.Renewal.Status)
	s.Empty(renewed.Renewal.Notes)
	s.Empty(renewed.Renewal.DocumentIDs)
	s.False(renewed.Renewal.ComplianceHistoryReviewed)
}

func (s *ServiceSuite) TestInitiateRenewalResetsPriorCycle() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	_, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)
	_, err = s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{
		Notes:       []string{"first cycle"},
		DocumentIDs: []id.DocumentID{"doc_001"},
	})
	s.Require().NoError(err)

	renewed, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)
	s.Empty(renewed.Renewal.Notes)
	s.Empty(renewed.Renewal.DocumentIDs)
}

func (s *ServiceSuite) TestInitiateRenewalIneligibleStates() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	_, err := s.service.ChangeStatus(s.ctx, license.ID, models.StatusRevoked, "misconduct")
	s.Require().NoError(err)

	_, err = s.service.InitiateRenewal(s.ctx, license.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeIneligibleState))
}

func (s *ServiceSuite) TestRenewalMutationsBlockedWhileSuspended() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	_, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)
	_, err = s.service.ChangeStatus(s.ctx, license.ID, models.StatusSuspended, "aml findings")
	s.Require().NoError(err)

	_, err = s.service.InitiateRenewal(s.ctx, license.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeLicenseSuspended))

	_, err = s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{Notes: []string{"note"}})
	s.True(dErrors.HasCode(err, dErrors.CodeLicenseSuspended))

	newExpiry := testNow.AddDate(1, 0, 0)
	_, err = s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalApproved, &newExpiry, "")
	s.True(dErrors.HasCode(err, dErrors.CodeLicenseSuspended))

	// Renewal state untouched by the failed mutations.
	found, err := s.service.Get(s.ctx, license.ID)
	s.Require().NoError(err)
	s.Equal(models.RenewalPendingSubmission, found.Renewal.Status)
	s.Empty(found.Renewal.Notes)
}

func (s *ServiceSuite) TestUpdateRenewalDataRequiresOpenCycle() {
	license := s.issue("APP-2603-0001", "Payment Institution")

	_, err := s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{Notes: []string{"too early"}})
	s.True(dErrors.HasCode(err, dErrors.CodeRenewalNotActive))
}

func (s *ServiceSuite) TestUpdateRenewalDataAppendOnlyUnions() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	_, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)

	_, err = s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{
		Notes:       []string{"financials received"},
		DocumentIDs: []id.DocumentID{"doc_001", "doc_002"},
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{
		Notes:       []string{"compliance review done"},
		DocumentIDs: []id.DocumentID{"doc_002", "doc_003"},
	})
	s.Require().NoError(err)

	s.Equal([]string{"financials received", "compliance review done"}, updated.Renewal.Notes)
	s.Equal([]id.DocumentID{"doc_001", "doc_002", "doc_003"}, updated.Renewal.DocumentIDs)
}

func (s *ServiceSuite) TestUpdateRenewalDataStatusTransitions() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	_, err := s.service.InitiateRenewal(s.ctx, license.ID)
	s.Require().NoError(err)

	submitted := models.RenewalSubmitted
	submission := testNow
	updated, err := s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{
		Status:         &submitted,
		SubmissionDate: &submission,
	})
	s.Require().NoError(err)
	s.Equal(models.RenewalSubmitted, updated.Renewal.Status)
	s.Equal(submission, *updated.Renewal.SubmissionDate)

	// Jumping straight to a decision is illegal from Submitted.
	approved := models.RenewalApproved
	_, err = s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{Status: &approved})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	underReview := models.RenewalUnderReview
	reviewed := true
	updated, err = s.service.UpdateRenewalData(s.ctx, license.ID, RenewalUpdate{
		Status:                    &underReview,
		ComplianceHistoryReviewed: &reviewed,
	})
	s.Require().NoError(err)
	s.Equal(models.RenewalUnderReview, updated.Renewal.Status)
	s.True(updated.Renewal.ComplianceHistoryReviewed)
}

func (s *ServiceSuite) openRenewalUnderReview(licenseID id.LicenseID) {
	_, err := s.service.InitiateRenewal(s.ctx, licenseID)
	s.Require().NoError(err)
	submitted := models.RenewalSubmitted
	_, err = s.service.UpdateRenewalData(s.ctx, licenseID, RenewalUpdate{Status: &submitted})
	s.Require().NoError(err)
	underReview := models.RenewalUnderReview
	_, err = s.service.UpdateRenewalData(s.ctx, licenseID, RenewalUpdate{Status: &underReview})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRenewalApprovalRollsLicenseForward() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	oldExpiry := license.ExpiryDate
	s.openRenewalUnderReview(license.ID)

	newExpiry := oldExpiry.AddDate(1, 0, 0)
	renewed, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalApproved, &newExpiry, "")
	s.Require().NoError(err)

	s.Equal(models.RenewalApproved, renewed.Renewal.Status)
	s.Equal(newExpiry, renewed.ExpiryDate)
	s.Equal(oldExpiry.AddDate(0, 0, 1), renewed.IssueDate)
	s.Equal(newExpiry.AddDate(0, 0, -60), renewed.NextRenewalDueDate)
	s.Equal(models.StatusActive, renewed.Status)
	s.Equal("License successfully renewed.", renewed.StatusReason)
	s.Require().NotNil(renewed.LastRenewalDate)
}

func (s *ServiceSuite) TestRenewalApprovalRequiresNewExpiry() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	s.openRenewalUnderReview(license.ID)

	_, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalApproved, nil, "")
	s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
}

func (s *ServiceSuite) TestRenewalApprovalReactivatesPendingRenewal() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	s.openRenewalUnderReview(license.ID)
	_, err := s.service.ChangeStatus(s.ctx, license.ID, models.StatusPendingRenewal, "renewal window")
	s.Require().NoError(err)

	newExpiry := testNow.AddDate(2, 0, 0)
	renewed, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalApproved, &newExpiry, "all checks passed")
	s.Require().NoError(err)
	s.Equal(models.StatusActive, renewed.Status)
	s.Equal("all checks passed", renewed.StatusReason)
}

func (s *ServiceSuite) TestRenewalDenialExpiresOnlyPastExpiry() {
	s.Run("unexpired license keeps its status", func() {
		license := s.issue("APP-2603-0001", "Payment Institution")
		s.openRenewalUnderReview(license.ID)

		denied, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalDenied, nil, "")
		s.Require().NoError(err)
		s.Equal(models.RenewalDenied, denied.Renewal.Status)
		s.Equal(models.StatusActive, denied.Status)
		s.Equal("License renewal denied.", denied.StatusReason)
	})

	s.Run("past-expiry license becomes Expired", func() {
		license := s.issue("APP-2603-0002", "Payment Institution")
		s.openRenewalUnderReview(license.ID)
		_, err := s.store.Execute(s.ctx, license.ID,
			func(l *models.License) error { return nil },
			func(l *models.License) { l.ExpiryDate = testNow.AddDate(0, 0, -5) })
		s.Require().NoError(err)

		denied, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalDenied, nil, "incomplete filings")
		s.Require().NoError(err)
		s.Equal(models.StatusExpired, denied.Status)
		s.Equal("incomplete filings", denied.StatusReason)
	})
}

func (s *ServiceSuite) TestRenewalDecisionEmitsAudit() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	s.openRenewalUnderReview(license.ID)

	newExpiry := testNow.AddDate(1, 0, 0)
	_, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, models.RenewalApproved, &newExpiry, "ok")
	s.Require().NoError(err)

	events, err := s.log.ListBySubject(s.ctx, license.ID.String())
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventRenewalInitiated))
	s.Contains(actions, string(audit.EventRenewalDecided))
}

func (s *ServiceSuite) TestRenewalDecisionRejectsUnknownOutcome() {
	license := s.issue("APP-2603-0001", "Payment Institution")
	s.openRenewalUnderReview(license.ID)

	var never *time.Time
	_, err := s.service.ProcessRenewalDecision(s.ctx, license.ID, "Maybe Later", never, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
