// Package idgen issues collision-free, monotonically increasing identifiers
// for every record family the engine owns.
//
// Allocators are injected into stores and services rather than held as
// package state, and each namespace increments atomically, so concurrent
// workflow operations can never mint the same identifier twice.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	id "regula/pkg/domain"
)

// Sequence is an atomically incrementing counter for one id namespace.
// Seed it with the number of pre-existing records so new ids continue the
// dataset's numbering.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates a sequence whose first Next call returns seed+1.
func NewSequence(seed int64) *Sequence {
	s := &Sequence{}
	s.n.Store(seed)
	return s
}

// Next returns the next value in the sequence.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Allocator owns one sequence per id namespace.
type Allocator struct {
	applications *Sequence
	licenses     *Sequence
	actions      *Sequence
	entities     *Sequence
	persons      *Sequence
	documents    *Sequence
}

// Seeds carries the initial counter values, typically the record counts of a
// pre-loaded dataset. The zero value starts every namespace from 1.
type Seeds struct {
	Applications int64
	Licenses     int64
	Actions      int64
	Entities     int64
	Persons      int64
	Documents    int64
}

// New constructs an allocator with the given seeds.
func New(seeds Seeds) *Allocator {
	return &Allocator{
		applications: NewSequence(seeds.Applications),
		licenses:     NewSequence(seeds.Licenses),
		actions:      NewSequence(seeds.Actions),
		entities:     NewSequence(seeds.Entities),
		persons:      NewSequence(seeds.Persons),
		documents:    NewSequence(seeds.Documents),
	}
}

// ApplicationID allocates an id of the form APP-YYMM-NNNN, where YYMM encodes
// the submission date.
func (a *Allocator) ApplicationID(submitted time.Time) id.ApplicationID {
	year := submitted.Year() % 100
	month := int(submitted.Month())
	return id.ApplicationID(fmt.Sprintf("APP-%02d%02d-%04d", year, month, a.applications.Next()))
}

// LicenseID allocates an id of the form LIC-YYYY-NNNN and returns the numeric
// suffix so the caller can derive the human-facing license number from the
// same sequence value.
func (a *Allocator) LicenseID(issued time.Time) (id.LicenseID, int64) {
	seq := a.licenses.Next()
	return id.LicenseID(fmt.Sprintf("LIC-%04d-%04d", issued.Year(), seq)), seq
}

// ActionID allocates an id of the form LCA-NNN.
func (a *Allocator) ActionID() id.ActionID {
	return id.ActionID(fmt.Sprintf("LCA-%03d", a.actions.Next()))
}

// EntityID allocates an id of the form ent_NNN.
func (a *Allocator) EntityID() id.EntityID {
	return id.EntityID(fmt.Sprintf("ent_%03d", a.entities.Next()))
}

// PersonID allocates an id of the form person_NNN.
func (a *Allocator) PersonID() id.PersonID {
	return id.PersonID(fmt.Sprintf("person_%03d", a.persons.Next()))
}

// DocumentID allocates an id of the form doc_NNN.
func (a *Allocator) DocumentID() id.DocumentID {
	return id.DocumentID(fmt.Sprintf("doc_%03d", a.documents.Next()))
}

// LicenseNumber derives the human-facing license number from the license
// type prefix, issue year, and the license id's numeric suffix:
// PFX-YYYY-NNNNN.
func LicenseNumber(licenseType string, issued time.Time, seq int64) string {
	prefix := strings.ToUpper(licenseType)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%04d-%05d", prefix, issued.Year(), seq)
}
