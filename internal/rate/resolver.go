package rate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/haulops-billing/internal/model"
)

// LookupKey identifies the price being asked for: whose catalog, for what
// material and route, in which unit, as of which date.
type LookupKey struct {
	PartyType  model.PartyType
	PartyID    uuid.UUID
	MaterialID uuid.UUID
	FromSiteID *uuid.UUID
	ToSiteID   *uuid.UUID
	Unit       model.BillingUnit
	AsOf       time.Time
}

// Resolve selects the single applicable rate-card entry from candidates.
// Qualifying entries are ranked most-specific-first and the head is returned;
// ok is false when nothing qualifies, which callers treat as "no price
// available" rather than a failure.
//
// Ranking: a material-specific entry beats a material-general one, then a
// route-specific entry beats a route-general one. Remaining ties go to the
// latest valid_from, then the most recently created entry, then the lowest
// id, so the result never depends on input ordering.
func Resolve(candidates []model.RateCardEntry, key LookupKey) (*model.RateCardEntry, bool) {
	qualified := make([]model.RateCardEntry, 0, len(candidates))
	for _, entry := range candidates {
		if Qualifies(&entry, key) {
			qualified = append(qualified, entry)
		}
	}
	if len(qualified) == 0 {
		return nil, false
	}

	sort.Slice(qualified, func(i, j int) bool {
		return moreSpecific(&qualified[i], &qualified[j])
	})
	head := qualified[0]
	return &head, true
}

// Qualifies reports whether a single entry matches the lookup key.
func Qualifies(entry *model.RateCardEntry, key LookupKey) bool {
	if !entry.IsActive || entry.PartyType != key.PartyType || entry.PartyID != key.PartyID {
		return false
	}
	if entry.PriceFor(key.Unit) == nil {
		return false
	}
	if entry.MaterialID != nil && *entry.MaterialID != key.MaterialID {
		return false
	}
	if !siteMatches(entry.FromSiteID, key.FromSiteID) || !siteMatches(entry.ToSiteID, key.ToSiteID) {
		return false
	}
	return entry.CoversDate(key.AsOf)
}

// siteMatches: a nil entry site is a wildcard; a pinned site requires the
// job to name the same site.
func siteMatches(entrySite, jobSite *uuid.UUID) bool {
	if entrySite == nil {
		return true
	}
	return jobSite != nil && *jobSite == *entrySite
}

func moreSpecific(a, b *model.RateCardEntry) bool {
	aMaterial, bMaterial := a.MaterialID != nil, b.MaterialID != nil
	if aMaterial != bMaterial {
		return aMaterial
	}
	aRoute, bRoute := a.IsRouteSpecific(), b.IsRouteSpecific()
	if aRoute != bRoute {
		return aRoute
	}
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.After(b.ValidFrom)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
