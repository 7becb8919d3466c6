package app

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

const feedCacheKey = "feed:hostaway"

// QueryService serves every read-side consumer: the dashboard listing,
// the public pages, analytics buckets, and the channel/property
// rollups. The upstream feed is cached whole; projection and
// filtering are recomputed on every read so moderation decisions are
// visible immediately.
type QueryService struct {
	source   domain.ReviewSource
	store    domain.ModerationStore
	cache    domain.Cache
	cacheTTL time.Duration
	norm     *Normalizer
	sf       singleflight.Group
}

func NewQueryService(source domain.ReviewSource, store domain.ModerationStore, cache domain.Cache, ttl time.Duration, norm *Normalizer) *QueryService {
	return &QueryService{source: source, store: store, cache: cache, cacheTTL: ttl, norm: norm}
}

// feed returns the raw upstream collection, cache-aside with a
// singleflight guard so concurrent misses trigger one upstream fetch.
func (s *QueryService) feed(ctx context.Context) ([]domain.RawReview, error) {
	if s.cache != nil {
		var cached []domain.RawReview
		if ok, _ := s.cache.Get(ctx, feedCacheKey, &cached); ok {
			return cached, nil
		}
	}
	v, err, _ := s.sf.Do(feedCacheKey, func() (any, error) {
		raws, err := s.source.FetchReviews(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, feedCacheKey, raws, int(s.cacheTTL.Seconds()))
		}
		return raws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.RawReview), nil
}

// ListReviews is the dashboard listing: filter, sort, and a meta block
// of distinct listings/channels over the full unfiltered set.
func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	raws, err := s.feed(ctx)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	all, err := s.norm.Project(ctx, raws, s.store)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	items := filterReviews(raws, all, q)
	sortReviews(items, q.SortBy, q.SortOrder)

	return domain.ReviewsPage{Items: items, Meta: buildMeta(all)}, nil
}

// PublicReviews is the public-page subset: approved, guest-to-host,
// upstream-published, optionally one listing, newest first.
func (s *QueryService) PublicReviews(ctx context.Context, listingID string) ([]domain.NormalizedReview, error) {
	approved, err := s.store.ApprovedIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(approved) == 0 {
		return []domain.NormalizedReview{}, nil
	}
	approvedSet := make(map[int64]struct{}, len(approved))
	for _, id := range approved {
		approvedSet[id] = struct{}{}
	}

	raws, err := s.feed(ctx)
	if err != nil {
		return nil, err
	}
	picked := make([]domain.RawReview, 0, len(approved))
	for _, r := range raws {
		if _, ok := approvedSet[r.ID]; !ok {
			continue
		}
		if r.Type != domain.TypeGuestToHost || r.Status != domain.StatusPublished {
			continue
		}
		if listingID != "" && !rawListingIs(r, listingID) {
			continue
		}
		picked = append(picked, r)
	}

	out, err := s.norm.Project(ctx, picked, s.store)
	if err != nil {
		return nil, err
	}
	sortReviews(out, domain.SortSubmittedAt, domain.SortDesc)
	return out, nil
}

// Weekly buckets guest-facing reviews into UTC weeks for analytics.
func (s *QueryService) Weekly(ctx context.Context, reviewType string) ([]domain.WeeklyBucket, error) {
	reviews, _, err := s.projectByType(ctx, reviewType)
	if err != nil {
		return nil, err
	}
	return WeeklyBuckets(reviews), nil
}

// Channels is the per-channel rollup over guest-to-host reviews.
func (s *QueryService) Channels(ctx context.Context) ([]domain.ChannelRollup, error) {
	reviews, raws, err := s.projectByType(ctx, domain.TypeGuestToHost)
	if err != nil {
		return nil, err
	}
	return ChannelRollups(raws, reviews), nil
}

// Properties is the per-property rollup over guest-to-host reviews.
func (s *QueryService) Properties(ctx context.Context) ([]domain.PropertyRollup, error) {
	reviews, raws, err := s.projectByType(ctx, domain.TypeGuestToHost)
	if err != nil {
		return nil, err
	}
	return PropertyRollups(raws, reviews), nil
}

func (s *QueryService) projectByType(ctx context.Context, reviewType string) ([]domain.NormalizedReview, []domain.RawReview, error) {
	raws, err := s.feed(ctx)
	if err != nil {
		return nil, nil, err
	}
	if reviewType != "" {
		kept := make([]domain.RawReview, 0, len(raws))
		for _, r := range raws {
			if r.Type == reviewType {
				kept = append(kept, r)
			}
		}
		raws = kept
	}
	reviews, err := s.norm.Project(ctx, raws, s.store)
	if err != nil {
		return nil, nil, err
	}
	return reviews, raws, nil
}

/********** filtering **********/

func rawListingIs(r domain.RawReview, listingID string) bool {
	if r.ListingID == nil {
		return false
	}
	return strconv.FormatInt(*r.ListingID, 10) == listingID
}

// filterReviews applies the conjunctive criteria of q. Omitted
// criteria are no-ops. Rating bounds compare the raw (not normalized)
// rating; a null raw rating always passes. raws and reviews are
// index-aligned.
func filterReviews(raws []domain.RawReview, reviews []domain.NormalizedReview, q domain.ReviewsQuery) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(reviews))
	for i, r := range reviews {
		raw := raws[i]
		if q.Type != "" && raw.Type != q.Type {
			continue
		}
		if q.ListingID != "" && !rawListingIs(raw, q.ListingID) {
			continue
		}
		if q.Channel != "" && (raw.ChannelName == nil || *raw.ChannelName != q.Channel) {
			continue
		}
		if raw.Rating != nil {
			if q.MinRating != nil && *raw.Rating < *q.MinRating {
				continue
			}
			if q.MaxRating != nil && *raw.Rating > *q.MaxRating {
				continue
			}
		}
		if q.ApprovalStatus != "" && r.ApprovalStatus != q.ApprovalStatus {
			continue
		}
		if q.DateFrom != nil || q.DateTo != nil {
			t, ok := parseSubmittedAt(raw.SubmittedAt)
			if !ok {
				continue
			}
			if q.DateFrom != nil {
				if from, ok := parseSubmittedAt(*q.DateFrom); ok && t.Before(from) {
					continue
				}
			}
			if q.DateTo != nil {
				if to, ok := parseSubmittedAt(*q.DateTo); ok && t.After(endOfDay(to, *q.DateTo)) {
					continue
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// endOfDay widens a date-only upper bound to the end of that day so
// "dateTo=2024-03-01" includes reviews submitted during March 1st.
func endOfDay(t time.Time, raw string) time.Time {
	if len(raw) == len("2006-01-02") {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

/********** sorting **********/

// sortReviews orders in place. Unknown sort keys leave the input
// order; the sort is stable so equal keys keep feed order.
func sortReviews(reviews []domain.NormalizedReview, by domain.SortField, order domain.SortOrder) {
	var cmp func(a, b domain.NormalizedReview) int
	switch by {
	case domain.SortSubmittedAt:
		cmp = func(a, b domain.NormalizedReview) int {
			ta, _ := parseSubmittedAt(a.SubmittedAt)
			tb, _ := parseSubmittedAt(b.SubmittedAt)
			return ta.Compare(tb)
		}
	case domain.SortRating:
		cmp = func(a, b domain.NormalizedReview) int {
			ra, rb := ratingOrZero(a), ratingOrZero(b)
			switch {
			case ra < rb:
				return -1
			case ra > rb:
				return 1
			}
			return 0
		}
	case domain.SortGuestName:
		coll := collate.New(language.English)
		cmp = func(a, b domain.NormalizedReview) int {
			return coll.CompareString(a.GuestName, b.GuestName)
		}
	case domain.SortListingName:
		coll := collate.New(language.English)
		cmp = func(a, b domain.NormalizedReview) int {
			return coll.CompareString(a.ListingName, b.ListingName)
		}
	default:
		return
	}

	desc := order == domain.SortDesc
	sort.SliceStable(reviews, func(i, j int) bool {
		c := cmp(reviews[i], reviews[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// null ratings sort as 0 so they land last in a descending sort
func ratingOrZero(r domain.NormalizedReview) float64 {
	if r.AverageRating == nil {
		return 0
	}
	return *r.AverageRating
}

/********** meta **********/

// buildMeta lists the distinct listings and channels observed across
// the full set, so filter dropdowns stay stable under active filters.
func buildMeta(all []domain.NormalizedReview) domain.ReviewsMeta {
	seenListing := make(map[string]struct{})
	seenChannel := make(map[string]struct{})
	var listings []domain.ListingRef
	var channels []string
	for _, r := range all {
		if r.ListingID != "unknown" {
			if _, ok := seenListing[r.ListingID]; !ok {
				seenListing[r.ListingID] = struct{}{}
				listings = append(listings, domain.ListingRef{ListingID: r.ListingID, ListingName: r.ListingName})
			}
		}
		if _, ok := seenChannel[r.Channel]; !ok {
			seenChannel[r.Channel] = struct{}{}
			channels = append(channels, r.Channel)
		}
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ListingName < listings[j].ListingName })
	sort.Strings(channels)
	return domain.ReviewsMeta{Total: len(all), Listings: listings, Channels: channels}
}
