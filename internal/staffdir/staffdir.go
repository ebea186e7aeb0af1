// Package staffdir is the read-only directory of regulator staff. Workflow
// records reference staff by id; the directory only resolves ids to display
// details and never participates in workflow decisions.
package staffdir

import (
	"context"
	"fmt"
	"sync"

	id "regula/pkg/domain"
	"regula/pkg/platform/sentinel"
)

// Member is one regulator staff member.
type Member struct {
	ID    id.StaffID `json:"staff_id"`
	Name  string     `json:"name"`
	Role  string     `json:"role"`
	Team  string     `json:"team"`
	Email string     `json:"email"`
}

// Directory resolves staff ids.
type Directory interface {
	Find(ctx context.Context, staffID id.StaffID) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
}

// InMemoryDirectory is a Directory backed by a seeded slice.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	members []Member
}

// NewInMemoryDirectory constructs a directory with the given members.
func NewInMemoryDirectory(members ...Member) *InMemoryDirectory {
	return &InMemoryDirectory{members: members}
}

func (d *InMemoryDirectory) Find(_ context.Context, staffID id.StaffID) (*Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, m := range d.members {
		if m.ID == staffID {
			member := m
			return &member, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (d *InMemoryDirectory) List(_ context.Context) ([]*Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Member, 0, len(d.members))
	for _, m := range d.members {
		member := m
		out = append(out, &member)
	}
	return out, nil
}

// DisplayName resolves a staff id to "Name (Role)" for presentation. An
// unresolvable id renders as an Unknown placeholder with the raw id kept in
// parentheses so records never lose the reference.
func DisplayName(ctx context.Context, dir Directory, staffID id.StaffID) string {
	if staffID.IsZero() {
		return ""
	}
	if dir != nil {
		if member, err := dir.Find(ctx, staffID); err == nil {
			role := member.Role
			if role == "" {
				role = "N/A"
			}
			return fmt.Sprintf("%s (%s)", member.Name, role)
		}
	}
	return fmt.Sprintf("Unknown (%s)", staffID)
}
