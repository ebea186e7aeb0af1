// Package regfeed is the regulatory content feed: published updates,
// publications, and events. The workflow engine annotates applications with
// applicable published updates; the feed never affects workflow state.
package regfeed

import (
	"context"
	"strings"
	"sync"
	"time"

	id "regula/pkg/domain"
)

// ContentType distinguishes the kinds of feed content.
type ContentType string

const (
	ContentUpdate      ContentType = "Update"
	ContentPublication ContentType = "Publication"
	ContentEvent       ContentType = "Event"
)

// Status is the lifecycle status of a feed item.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusPublished  Status = "Published"
	StatusSuperseded Status = "Superseded"
	StatusArchived   Status = "Archived"
)

// Update is one regulatory content item. ApplicableCategories carries
// license-type tags for Update items; publications and events leave it empty.
type Update struct {
	ID                   string      `json:"id"`
	ContentType          ContentType `json:"content_type"`
	Title                string      `json:"title"`
	Type                 string      `json:"type"`
	Status               Status      `json:"status"`
	IssueDate            time.Time   `json:"issue_date,omitempty"`
	EffectiveDate        time.Time   `json:"effective_date,omitempty"`
	ApplicableCategories []string    `json:"applicable_categories,omitempty"`
	Summary              string      `json:"summary"`
	CreatedByStaffID     id.StaffID  `json:"created_by_staff_id,omitempty"`
}

// Feed serves regulatory content.
type Feed interface {
	ListPublished(ctx context.Context) ([]*Update, error)
	ApplicableTo(ctx context.Context, licenseTypeTag string) ([]*Update, error)
}

// InMemoryFeed is a Feed backed by a seeded slice.
type InMemoryFeed struct {
	mu    sync.RWMutex
	items []Update
}

// NewInMemoryFeed constructs a feed with the given items.
func NewInMemoryFeed(items ...Update) *InMemoryFeed {
	return &InMemoryFeed{items: items}
}

// Add appends a new item to the feed.
func (f *InMemoryFeed) Add(item Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
}

// ListPublished returns published items in feed order.
func (f *InMemoryFeed) ListPublished(_ context.Context) ([]*Update, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Update, 0, len(f.items))
	for _, item := range f.items {
		if item.Status != StatusPublished {
			continue
		}
		copied := item
		out = append(out, &copied)
	}
	return out, nil
}

// ApplicableTo returns published Update items tagged with the given
// license-type tag. Matching is case-insensitive; untagged items never
// match.
func (f *InMemoryFeed) ApplicableTo(_ context.Context, licenseTypeTag string) ([]*Update, error) {
	tag := strings.ToLower(strings.TrimSpace(licenseTypeTag))
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Update, 0)
	for _, item := range f.items {
		if item.Status != StatusPublished || item.ContentType != ContentUpdate {
			continue
		}
		for _, category := range item.ApplicableCategories {
			if strings.ToLower(category) == tag {
				copied := item
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}
