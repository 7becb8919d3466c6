package app

import (
	"sort"
	"strings"
	"time"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

/********** generic keyed accumulator **********/

// groupStats accumulates the counters every rollup shares: review
// count, moderation-status counts, a mean over non-nil average
// ratings, and a first-seen-ordered set of associated names.
type groupStats struct {
	count       int
	approved    int
	pending     int
	rejected    int
	ratingSum   float64
	ratingCount int
	names       []string
	nameSet     map[string]struct{}
}

func (g *groupStats) add(r domain.NormalizedReview) {
	g.count++
	switch r.ApprovalStatus {
	case domain.Approved:
		g.approved++
	case domain.Pending:
		g.pending++
	case domain.Rejected:
		g.rejected++
	}
	if r.AverageRating != nil {
		g.ratingSum += *r.AverageRating
		g.ratingCount++
	}
}

func (g *groupStats) addName(name string) {
	if name == "" {
		return
	}
	if g.nameSet == nil {
		g.nameSet = make(map[string]struct{})
	}
	if _, ok := g.nameSet[name]; ok {
		return
	}
	g.nameSet[name] = struct{}{}
	g.names = append(g.names, name)
}

// avgRating is the mean of non-nil average ratings; 0 for an empty
// group, never NaN.
func (g *groupStats) avgRating() float64 {
	if g.ratingCount == 0 {
		return 0
	}
	return g.ratingSum / float64(g.ratingCount)
}

// accumulator groups reviews by an arbitrary key, preserving
// first-seen key order. Weekly buckets and the channel/property
// rollups all run on this one helper.
type accumulator[K comparable] struct {
	order  []K
	groups map[K]*groupStats
}

func newAccumulator[K comparable]() *accumulator[K] {
	return &accumulator[K]{groups: make(map[K]*groupStats)}
}

func (a *accumulator[K]) group(key K) *groupStats {
	g, ok := a.groups[key]
	if !ok {
		g = &groupStats{}
		a.groups[key] = g
		a.order = append(a.order, key)
	}
	return g
}

/********** submittedAt parsing & week bucketing **********/

// The feed timestamp format is ISO-ish but not pinned; try the shapes
// seen in the wild.
var submittedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseSubmittedAt(s string) (time.Time, bool) {
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfWeekUTC returns the UTC midnight of the Monday starting the
// week containing t. Week starts Monday, not Sunday.
func startOfWeekUTC(t time.Time) time.Time {
	t = t.UTC()
	diff := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-diff, 0, 0, 0, 0, time.UTC)
}

// WeeklyBuckets groups reviews into UTC Monday-keyed weeks. Reviews
// without a usable averageRating or timestamp are skipped. Buckets
// come back ascending by week key; fixed-width ISO dates make string
// order chronological.
func WeeklyBuckets(reviews []domain.NormalizedReview) []domain.WeeklyBucket {
	acc := newAccumulator[string]()
	for _, r := range reviews {
		if r.AverageRating == nil {
			continue
		}
		t, ok := parseSubmittedAt(r.SubmittedAt)
		if !ok {
			continue
		}
		key := startOfWeekUTC(t).Format("2006-01-02")
		acc.group(key).add(r)
	}

	out := make([]domain.WeeklyBucket, 0, len(acc.order))
	for _, week := range acc.order {
		g := acc.groups[week]
		out = append(out, domain.WeeklyBucket{
			Week:      week,
			AvgRating: g.avgRating(),
			Count:     g.count,
			Approved:  g.approved,
			Pending:   g.pending,
			Rejected:  g.rejected,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

/********** channel / property rollups **********/

// shortListingName drops the building prefix ("2B N1 A - 29 Shoreditch
// Heights" -> "29 Shoreditch Heights") for compact rollup lists.
func shortListingName(name string) string {
	if i := strings.Index(name, " - "); i >= 0 {
		return name[i+len(" - "):]
	}
	return name
}

// ChannelRollups groups reviews by channel. Group membership requires
// the raw record to carry a channel name; projection's "Direct"
// default is not a rollup bucket. raws and reviews are the same
// collection pre/post projection, index-aligned.
func ChannelRollups(raws []domain.RawReview, reviews []domain.NormalizedReview) []domain.ChannelRollup {
	acc := newAccumulator[string]()
	for i, r := range reviews {
		if raws[i].ChannelName == nil || *raws[i].ChannelName == "" {
			continue
		}
		g := acc.group(r.Channel)
		g.add(r)
		g.addName(shortListingName(r.ListingName))
	}

	out := make([]domain.ChannelRollup, 0, len(acc.order))
	for _, ch := range acc.order {
		g := acc.groups[ch]
		out = append(out, domain.ChannelRollup{
			Channel:       ch,
			ReviewCount:   g.count,
			AvgRating:     g.avgRating(),
			PendingCount:  g.pending,
			ApprovedCount: g.approved,
			Properties:    g.names,
		})
	}
	// busiest channels first; stable so equal counts keep feed order
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewCount > out[j].ReviewCount })
	return out
}

// PropertyRollups groups reviews by listing. Records without a raw
// listingId (projected as "unknown") are skipped, not bucketed under a
// sentinel.
func PropertyRollups(raws []domain.RawReview, reviews []domain.NormalizedReview) []domain.PropertyRollup {
	acc := newAccumulator[string]()
	listingNames := make(map[string]string)
	for i, r := range reviews {
		if raws[i].ListingID == nil {
			continue
		}
		g := acc.group(r.ListingID)
		g.add(r)
		g.addName(r.Channel)
		if _, ok := listingNames[r.ListingID]; !ok {
			listingNames[r.ListingID] = r.ListingName
		}
	}

	out := make([]domain.PropertyRollup, 0, len(acc.order))
	for _, id := range acc.order {
		g := acc.groups[id]
		out = append(out, domain.PropertyRollup{
			ListingID:     id,
			ListingName:   listingNames[id],
			ReviewCount:   g.count,
			AvgRating:     g.avgRating(),
			PendingCount:  g.pending,
			ApprovedCount: g.approved,
			Channels:      g.names,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ListingName < out[j].ListingName })
	return out
}
