package domain

import "context"

// ReviewSource delivers the whole upstream review collection at once;
// the feed has no pagination or streaming.
type ReviewSource interface {
	FetchReviews(ctx context.Context) ([]RawReview, error)
}

// ModerationStore is the single source of truth for moderation state.
// Absence of a record reads as Pending; SetStatus with Pending removes
// the record so the store only holds deviations from the default.
// The in-memory implementation never returns errors; the signatures
// carry them so a database-backed implementation fits the same port.
type ModerationStore interface {
	GetStatus(ctx context.Context, id int64) (ApprovalStatus, error)
	SetStatus(ctx context.Context, id int64, status ApprovalStatus) error
	// BulkSetStatus applies SetStatus per id; not atomic across ids,
	// a mid-sequence failure leaves a prefix applied.
	BulkSetStatus(ctx context.Context, ids []int64, status ApprovalStatus) error
	ApprovedIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Queries & read models

type SortField string

const (
	SortSubmittedAt SortField = "submittedAt"
	SortRating      SortField = "rating"
	SortGuestName   SortField = "guestName"
	SortListingName SortField = "listingName"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ReviewsQuery carries filter and sort criteria for a listing request.
// Every criterion is independently optional; zero values are no-ops.
type ReviewsQuery struct {
	Type           string
	ListingID      string
	Channel        string
	MinRating      *float64
	MaxRating      *float64
	ApprovalStatus ApprovalStatus
	DateFrom       *string // inclusive, compared against parsed submittedAt
	DateTo         *string
	SortBy         SortField
	SortOrder      SortOrder
}

type ListingRef struct {
	ListingID   string `json:"listingId"`
	ListingName string `json:"listingName"`
}

// ReviewsMeta reflects the full unfiltered set so filter option lists
// stay stable while filters are applied.
type ReviewsMeta struct {
	Total    int          `json:"total"`
	Listings []ListingRef `json:"listings"`
	Channels []string     `json:"channels"`
}

type ReviewsPage struct {
	Items []NormalizedReview `json:"items"`
	Meta  ReviewsMeta        `json:"meta"`
}

// WeeklyBucket aggregates one UTC week of reviews; Week is the ISO date
// of the Monday that starts it.
type WeeklyBucket struct {
	Week      string  `json:"week"`
	AvgRating float64 `json:"avgRating"`
	Count     int     `json:"count"`
	Approved  int     `json:"approved"`
	Pending   int     `json:"pending"`
	Rejected  int     `json:"rejected"`
}

type ChannelRollup struct {
	Channel       string   `json:"channel"`
	ReviewCount   int      `json:"reviewCount"`
	AvgRating     float64  `json:"avgRating"`
	PendingCount  int      `json:"pendingCount"`
	ApprovedCount int      `json:"approvedCount"`
	Properties    []string `json:"properties"`
}

type PropertyRollup struct {
	ListingID     string   `json:"listingId"`
	ListingName   string   `json:"listingName"`
	ReviewCount   int      `json:"reviewCount"`
	AvgRating     float64  `json:"avgRating"`
	PendingCount  int      `json:"pendingCount"`
	ApprovedCount int      `json:"approvedCount"`
	Channels      []string `json:"channels"`
}
