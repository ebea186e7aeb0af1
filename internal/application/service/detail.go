package service

import (
	"context"

	"regula/internal/application/models"
	"regula/internal/regfeed"
	"regula/internal/staffdir"
	id "regula/pkg/domain"
)

// Detail is an application enriched for display: reviewer names resolved
// through the staff directory and published regulatory updates applicable to
// the license type sought. Enrichment is best-effort; a missing directory
// entry falls back to the raw staff id and an unavailable feed leaves the
// updates empty.
type Detail struct {
	Application             *models.Application `json:"application"`
	AssignedReviewerName    string              `json:"assigned_reviewer_name,omitempty"`
	AdditionalReviewerNames []string            `json:"additional_reviewer_names,omitempty"`
	ApplicableUpdates       []*regfeed.Update   `json:"applicable_regulatory_updates,omitempty"`
}

// Detail loads an application and enriches it for display.
func (s *Service) Detail(ctx context.Context, applicationID id.ApplicationID) (*Detail, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		Application:          app,
		AssignedReviewerName: staffdir.DisplayName(ctx, s.staff, app.AssignedReviewerID),
	}
	for _, reviewerID := range app.AdditionalReviewerIDs {
		detail.AdditionalReviewerNames = append(detail.AdditionalReviewerNames, staffdir.DisplayName(ctx, s.staff, reviewerID))
	}

	if s.feed != nil {
		updates, err := s.feed.ApplicableTo(ctx, app.LicenseTypeSought)
		if err != nil {
			s.logger.WarnContext(ctx, "regulatory feed lookup failed",
				"application_id", app.ID.String(),
				"error", err.Error(),
			)
		} else {
			detail.ApplicableUpdates = updates
		}
	}
	return detail, nil
}
