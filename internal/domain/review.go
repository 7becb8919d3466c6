package domain

// Review direction on the booking platform.
const (
	TypeGuestToHost = "guest-to-host"
	TypeHostToGuest = "host-to-guest"
)

// Upstream publication states. Distinct from moderation status.
const (
	StatusPublished = "published"
	StatusPending   = "pending"
	StatusExpired   = "expired"
)

// ApprovalStatus is the moderation decision for a review.
// Absence of a record means Pending.
type ApprovalStatus string

const (
	Approved ApprovalStatus = "approved"
	Pending  ApprovalStatus = "pending"
	Rejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case Approved, Pending, Rejected:
		return true
	}
	return false
}

// RawCategory is one category score as delivered by the feed.
// Ratings arrive on a 0-10 scale and may be null.
type RawCategory struct {
	Category string   `json:"category"`
	Rating   *float64 `json:"rating"`
}

// RawReview is a review record as delivered by the upstream feed.
// Optional fields are pointers; the feed omits them freely.
type RawReview struct {
	ID            int64         `json:"id"`
	Type          string        `json:"type"`
	Status        string        `json:"status"`
	Rating        *float64      `json:"rating"`
	PublicReview  string        `json:"publicReview"`
	PrivateReview string        `json:"privateReview,omitempty"`
	Categories    []RawCategory `json:"reviewCategory"`
	SubmittedAt   string        `json:"submittedAt"`
	GuestName     string        `json:"guestName"`
	ListingName   string        `json:"listingName"`
	ListingID     *int64        `json:"listingId,omitempty"`
	ChannelID     *int64        `json:"channelId,omitempty"`
	ChannelName   *string       `json:"channelName,omitempty"`
}

// Canonical category keys produced by the normalizer. Unrecognized
// category names pass through under their lower-cased original.
const (
	CatCleanliness       = "cleanliness"
	CatCommunication     = "communication"
	CatCheckIn           = "checkIn"
	CatAccuracy          = "accuracy"
	CatLocation          = "location"
	CatValue             = "value"
	CatOverall           = "overall"
	CatRespectHouseRules = "respectHouseRules"
)

// NormalizedReview is the canonical view model handed to consumers.
// It is recomputed on every read and never persisted; ApprovalStatus
// is joined from the moderation store at projection time.
type NormalizedReview struct {
	ID             int64              `json:"id"`
	Type           string             `json:"type"`
	Status         string             `json:"status"`
	Rating         *float64           `json:"rating"`
	AverageRating  *float64           `json:"averageRating"`
	PublicReview   string             `json:"publicReview"`
	Categories     map[string]float64 `json:"categories"`
	SubmittedAt    string             `json:"submittedAt"`
	GuestName      string             `json:"guestName"`
	ListingID      string             `json:"listingId"`
	ListingName    string             `json:"listingName"`
	Channel        string             `json:"channel"`
	ApprovalStatus ApprovalStatus     `json:"approvalStatus"`
}
