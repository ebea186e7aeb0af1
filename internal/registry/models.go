// Package registry owns the passive lookup store for applicant organizations
// and uploaded document metadata. Entities are mutated only during
// application intake; documents are append-only.
package registry

import (
	"strings"
	"time"

	id "regula/pkg/domain"
	dErrors "regula/pkg/domain-errors"
)

// RiskRating is the supervisor's internal rating of an entity.
type RiskRating string

const (
	RiskLow    RiskRating = "Low"
	RiskMedium RiskRating = "Medium"
	RiskHigh   RiskRating = "High"
)

// EntityStatus is the entity's compliance-readiness status.
type EntityStatus string

const (
	EntityStatusApplicant EntityStatus = "Applicant"
	EntityStatusLicensed  EntityStatus = "Licensed"
	EntityStatusInactive  EntityStatus = "Inactive"
)

// Person is a natural person attached to an entity: the primary contact, a
// director, or an ultimate beneficial owner.
type Person struct {
	ID                 id.PersonID `json:"contact_id"`
	FullName           string      `json:"full_name"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone,omitempty"`
	Position           string      `json:"position,omitempty"`
	DateOfBirth        string      `json:"date_of_birth,omitempty"`
	Nationality        string      `json:"nationality,omitempty"`
	ResidentialAddress string      `json:"residential_address,omitempty"`
	IsPEP              bool        `json:"is_pep"`
	// OwnershipPercentage is set only for beneficial owners.
	OwnershipPercentage float64 `json:"ownership_percentage,omitempty"`
}

// Entity is an applicant organization.
//
// Invariants:
//   - CompanyName and LegalName are non-empty
//   - Directors each carry a contact email
//   - UBOs each carry a contact email and an ownership percentage
//   - Directors and UBOs keep insertion order
//
// Applications and licenses reference entities by id only; deleting an
// entity never cascades.
type Entity struct {
	ID                          id.EntityID  `json:"entity_id"`
	CompanyName                 string       `json:"company_name"`
	LegalName                   string       `json:"legal_name"`
	RegistrationNumber          string       `json:"registration_number,omitempty"`
	DateOfIncorporation         string       `json:"date_of_incorporation,omitempty"`
	JurisdictionOfIncorporation string       `json:"jurisdiction_of_incorporation,omitempty"`
	CompanyType                 string       `json:"company_type,omitempty"`
	PrimaryAddress              string       `json:"primary_address,omitempty"`
	Website                     string       `json:"website,omitempty"`
	PrimaryContact              Person       `json:"primary_contact"`
	Directors                   []Person     `json:"directors"`
	UBOs                        []Person     `json:"ubos"`
	AssignedOfficerID           id.StaffID   `json:"assigned_officer_id,omitempty"`
	RiskRating                  RiskRating   `json:"internal_risk_rating"`
	Status                      EntityStatus `json:"entity_status"`
	CreatedAt                   time.Time    `json:"created_at"`
	UpdatedAt                   time.Time    `json:"updated_at"`
}

// Validate enforces the entity invariants above.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.CompanyName) == "" {
		return dErrors.New(dErrors.CodeValidation, "company name is required")
	}
	if strings.TrimSpace(e.LegalName) == "" {
		return dErrors.New(dErrors.CodeValidation, "legal name is required")
	}
	for _, d := range e.Directors {
		if strings.TrimSpace(d.Email) == "" {
			return dErrors.Newf(dErrors.CodeValidation, "director %s requires a contact email", d.FullName)
		}
	}
	for _, u := range e.UBOs {
		if strings.TrimSpace(u.Email) == "" {
			return dErrors.Newf(dErrors.CodeValidation, "beneficial owner %s requires a contact email", u.FullName)
		}
		if u.OwnershipPercentage <= 0 {
			return dErrors.Newf(dErrors.CodeValidation, "beneficial owner %s requires an ownership percentage", u.FullName)
		}
	}
	return nil
}

// AllPersons returns the primary contact, directors, and UBOs in screening
// order.
func (e *Entity) AllPersons() []Person {
	out := make([]Person, 0, 1+len(e.Directors)+len(e.UBOs))
	out = append(out, e.PrimaryContact)
	out = append(out, e.Directors...)
	out = append(out, e.UBOs...)
	return out
}

// Document is uploaded document metadata. Content lives in the blob store
// behind the ContentLocator; the engine never inspects it.
type Document struct {
	ID             id.DocumentID `json:"document_id"`
	FileName       string        `json:"file_name"`
	DocumentType   string        `json:"document_type"`
	Version        string        `json:"version"`
	UploadDate     time.Time     `json:"upload_date"`
	UploadedBy     string        `json:"uploaded_by"`
	MimeType       string        `json:"mime_type"`
	ContentLocator string        `json:"content_locator"`
	Description    string        `json:"description,omitempty"`
}
