// Package domain defines typed identifiers shared across the engine.
//
// Every record family carries its own ID type so the compiler rejects
// cross-family mixups (passing a LicenseID where an ApplicationID is
// expected). IDs are formatted strings allocated by internal/platform/idgen;
// this package only defines the types and their format invariants.
package domain

import (
	"regexp"
	"strings"

	dErrors "regula/pkg/domain-errors"
)

type (
	// EntityID identifies an applicant organization (format "ent_NNN").
	EntityID string
	// PersonID identifies a contact, director, or UBO (format "person_NNN").
	PersonID string
	// DocumentID identifies uploaded document metadata (format "doc_NNN").
	DocumentID string
	// ApplicationID identifies a license application (format "APP-YYMM-NNNN").
	ApplicationID string
	// LicenseID identifies a granted license (format "LIC-YYYY-NNNN").
	LicenseID string
	// ActionID identifies a remedial license action (format "LCA-NNN").
	ActionID string
	// StaffID identifies a regulator staff member. Staff records live in an
	// external directory; the engine treats the ID as opaque.
	StaffID string
)

func (id EntityID) String() string      { return string(id) }
func (id PersonID) String() string      { return string(id) }
func (id DocumentID) String() string    { return string(id) }
func (id ApplicationID) String() string { return string(id) }
func (id LicenseID) String() string     { return string(id) }
func (id ActionID) String() string      { return string(id) }
func (id StaffID) String() string       { return string(id) }

func (id EntityID) IsZero() bool      { return id == "" }
func (id PersonID) IsZero() bool      { return id == "" }
func (id DocumentID) IsZero() bool    { return id == "" }
func (id ApplicationID) IsZero() bool { return id == "" }
func (id LicenseID) IsZero() bool     { return id == "" }
func (id ActionID) IsZero() bool      { return id == "" }
func (id StaffID) IsZero() bool       { return id == "" }

var (
	applicationIDPattern = regexp.MustCompile(`^APP-\d{4}-\d{4}$`)
	licenseIDPattern     = regexp.MustCompile(`^LIC-\d{4}-\d{4,}$`)
	actionIDPattern      = regexp.MustCompile(`^LCA-\d{3,}$`)
	entityIDPattern      = regexp.MustCompile(`^ent_\d{3,}$`)
	documentIDPattern    = regexp.MustCompile(`^doc_\d{3,}$`)
)

// ParseApplicationID validates an externally supplied application ID.
// IDs arrive from URL paths and request payloads; parsing at the trust
// boundary keeps malformed input out of the stores.
func ParseApplicationID(raw string) (ApplicationID, error) {
	raw = strings.TrimSpace(raw)
	if !applicationIDPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid application id")
	}
	return ApplicationID(raw), nil
}

// ParseLicenseID validates an externally supplied license ID.
func ParseLicenseID(raw string) (LicenseID, error) {
	raw = strings.TrimSpace(raw)
	if !licenseIDPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid license id")
	}
	return LicenseID(raw), nil
}

// ParseActionID validates an externally supplied license action ID.
func ParseActionID(raw string) (ActionID, error) {
	raw = strings.TrimSpace(raw)
	if !actionIDPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid action id")
	}
	return ActionID(raw), nil
}

// ParseEntityID validates an externally supplied entity ID.
func ParseEntityID(raw string) (EntityID, error) {
	raw = strings.TrimSpace(raw)
	if !entityIDPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid entity id")
	}
	return EntityID(raw), nil
}

// ParseDocumentID validates an externally supplied document ID.
func ParseDocumentID(raw string) (DocumentID, error) {
	raw = strings.TrimSpace(raw)
	if !documentIDPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid document id")
	}
	return DocumentID(raw), nil
}
