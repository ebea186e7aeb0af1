// Package reporting builds read-only projections over the workflow stores
// for dashboards and renewal alerting. Nothing here mutates state.
package reporting

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appmodels "regula/internal/application/models"
	licmodels "regula/internal/license/models"
	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

const tracerName = "regula.reporting"

// ApplicationSource lists applications for aggregation.
type ApplicationSource interface {
	List(ctx context.Context) ([]*appmodels.Application, error)
}

// LicenseSource provides the license projections the reports lean on.
type LicenseSource interface {
	List(ctx context.Context) ([]*licmodels.License, error)
	NearingExpiry(ctx context.Context, daysOut int, asOf time.Time) ([]*licmodels.License, error)
}

// Service answers dashboard and alerting queries.
type Service struct {
	applications ApplicationSource
	licenses     LicenseSource
	tracer       trace.Tracer
}

// New constructs the reporting service.
func New(applications ApplicationSource, licenses LicenseSource) *Service {
	return &Service{
		applications: applications,
		licenses:     licenses,
		tracer:       otel.Tracer(tracerName),
	}
}

// ApplicationCounts summarises the application pipeline.
type ApplicationCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Denied   int `json:"denied"`
	InReview int `json:"in_review"`

	ByStatus map[string]int `json:"by_status"`
	// Statuses and Sources enumerate the distinct values present, in
	// first-seen order, for dashboard filter population.
	Statuses []string `json:"statuses"`
	Sources  []string `json:"sources"`
}

// LicenseCounts summarises the license register.
type LicenseCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Dashboard is the combined supervision overview.
type Dashboard struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Applications ApplicationCounts `json:"applications"`
	Licenses     LicenseCounts     `json:"licenses"`
}

// Dashboard aggregates current store state. The projection is a pure
// function of the stores; repeated calls without intervening writes return
// identical counts.
func (s *Service) Dashboard(ctx context.Context, asOf time.Time) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "reporting.dashboard")
	defer span.End()

	apps, err := s.applications.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	licenses, err := s.licenses.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list licenses")
	}

	dashboard := &Dashboard{
		GeneratedAt:  asOf,
		Applications: countApplications(apps),
		Licenses:     countLicenses(licenses),
	}
	span.SetAttributes(
		attribute.Int("applications.total", dashboard.Applications.Total),
		attribute.Int("licenses.total", dashboard.Licenses.Total),
	)
	return dashboard, nil
}

// RenewalAlert pairs a license with the renewal date driving the alert.
type RenewalAlert struct {
	LicenseID     id.LicenseID     `json:"license_id"`
	LicenseNumber string           `json:"license_number"`
	EntityID      id.EntityID      `json:"entity_id"`
	LicenseType   string           `json:"license_type"`
	Status        licmodels.Status `json:"status"`
	DueDate       time.Time        `json:"due_date"`
	ExpiryDate    time.Time        `json:"expiry_date"`
}

// RenewalsDue lists licenses needing renewal attention within daysOut of
// asOf, ordered soonest first.
func (s *Service) RenewalsDue(ctx context.Context, daysOut int, asOf time.Time) ([]RenewalAlert, error) {
	ctx, span := s.tracer.Start(ctx, "reporting.renewals_due",
		trace.WithAttributes(attribute.Int("days_out", daysOut)))
	defer span.End()

	if daysOut <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "days_out must be positive")
	}
	licenses, err := s.licenses.NearingExpiry(ctx, daysOut, asOf)
	if err != nil {
		return nil, err
	}

	alerts := make([]RenewalAlert, 0, len(licenses))
	for _, license := range licenses {
		alerts = append(alerts, RenewalAlert{
			LicenseID:     license.ID,
			LicenseNumber: license.LicenseNumber,
			EntityID:      license.EntityID,
			LicenseType:   license.LicenseType,
			Status:        license.Status,
			DueDate:       license.NextRenewalDueDate,
			ExpiryDate:    license.ExpiryDate,
		})
	}
	return alerts, nil
}

func countApplications(apps []*appmodels.Application) ApplicationCounts {
	counts := ApplicationCounts{
		ByStatus: make(map[string]int),
		Statuses: []string{},
		Sources:  []string{},
	}
	seenSources := make(map[string]bool)
	for _, app := range apps {
		counts.Total++
		status := string(app.Status)
		if counts.ByStatus[status] == 0 {
			counts.Statuses = append(counts.Statuses, status)
		}
		counts.ByStatus[status]++

		switch app.Status {
		case appmodels.StatusApproved:
			counts.Approved++
		case appmodels.StatusDenied:
			counts.Denied++
		default:
			counts.InReview++
		}

		if app.Source != "" && !seenSources[app.Source] {
			seenSources[app.Source] = true
			counts.Sources = append(counts.Sources, app.Source)
		}
	}
	return counts
}

func countLicenses(licenses []*licmodels.License) LicenseCounts {
	counts := LicenseCounts{ByStatus: make(map[string]int)}
	for _, license := range licenses {
		counts.Total++
		counts.ByStatus[string(license.Status)]++
	}
	return counts
}
