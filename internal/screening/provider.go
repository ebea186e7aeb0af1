// Package screening checks natural persons against sanctions watchlists.
// Results are cached per party so repeat submissions for the same people do
// not re-query the list provider inside the cache TTL.
package screening

import (
	"context"
	"strings"
	"time"

	id "regula/pkg/domain"
	"regula/pkg/requestcontext"
)

// Outcome is the per-party screening result.
type Outcome string

const (
	OutcomeClear          Outcome = "Clear"
	OutcomePotentialMatch Outcome = "Potential Match"
)

// Party is a person to screen. Lists names the watchlists to check; an
// empty slice means the provider's default set.
type Party struct {
	ID       id.PersonID
	FullName string
	Lists    []string
}

// Result is the outcome of screening one party.
type Result struct {
	PartyID      id.PersonID `json:"party_id"`
	PartyName    string      `json:"party_name"`
	Outcome      Outcome     `json:"screening_result"`
	ListsChecked []string    `json:"lists_checked"`
	Source       string      `json:"source"`
	CheckedAt    time.Time   `json:"checked_at"`
}

// Provider queries a sanctions list. The interface is kept small so tests
// can stub quickly.
type Provider interface {
	Check(ctx context.Context, party Party) (Result, error)
}

// MockProvider satisfies Provider without a real list connection. Parties
// whose normalized full name appears in Watchlist come back as potential
// matches; everyone else is clear.
type MockProvider struct {
	Latency   time.Duration
	Watchlist map[string]bool
}

func (p MockProvider) Check(ctx context.Context, party Party) (Result, error) {
	time.Sleep(p.Latency)
	outcome := OutcomeClear
	if p.Watchlist[cacheKey(party.FullName)] {
		outcome = OutcomePotentialMatch
	}
	lists := party.Lists
	if len(lists) == 0 {
		lists = []string{"OFAC", "UN"}
	}
	return Result{
		PartyID:      party.ID,
		PartyName:    party.FullName,
		Outcome:      outcome,
		ListsChecked: lists,
		Source:       "mock_sanctions",
		CheckedAt:    requestcontext.Now(ctx),
	}, nil
}

// cacheKey normalizes a party name for cache lookups. Screening is keyed by
// name because watchlists are.
func cacheKey(fullName string) string {
	return strings.ToLower(strings.Join(strings.Fields(fullName), " "))
}
