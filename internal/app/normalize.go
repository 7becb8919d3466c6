package app

import (
	"math"
	"strings"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

/********** category alias registry (single source of truth) **********/

var categoryAliases = map[string]string{
	"cleanliness":         domain.CatCleanliness,
	"communication":       domain.CatCommunication,
	"check_in":            domain.CatCheckIn,
	"checkin":             domain.CatCheckIn,
	"accuracy":            domain.CatAccuracy,
	"location":            domain.CatLocation,
	"value":               domain.CatValue,
	"overall":             domain.CatOverall,
	"respect_house_rules": domain.CatRespectHouseRules,
}

// canonicalCategoryKey is a total mapping: recognized names map to
// their canonical camelCase key, anything else passes through
// lower-cased.
func canonicalCategoryKey(name string) string {
	low := strings.ToLower(strings.TrimSpace(name))
	if key, ok := categoryAliases[low]; ok {
		return key
	}
	return low
}

// AveragePolicy controls which categories join the computed average
// when the feed carries no top-level rating.
type AveragePolicy string

const (
	ExcludeNone                 AveragePolicy = "excludeNone"
	ExcludeOverallAndHouseRules AveragePolicy = "excludeOverallAndHouseRules"
)

func ParseAveragePolicy(s string) AveragePolicy {
	if AveragePolicy(s) == ExcludeOverallAndHouseRules {
		return ExcludeOverallAndHouseRules
	}
	return ExcludeNone
}

// Normalizer converts raw feed records into the canonical shape.
// All ratings are canonicalized to a 0-5 scale: raw/10*5, rounded to
// 2 decimals, applied uniformly to category values and the average.
type Normalizer struct {
	policy AveragePolicy
}

func NewNormalizer(policy AveragePolicy) *Normalizer {
	return &Normalizer{policy: policy}
}

// convertScale maps a 0-10 feed rating onto the canonical 0-5 scale.
func convertScale(raw float64) float64 {
	return round2(raw / 10 * 5)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Categories builds the canonical category map. Entries with a null
// rating are dropped, never defaulted to zero.
func (n *Normalizer) Categories(raw domain.RawReview) map[string]float64 {
	out := make(map[string]float64, len(raw.Categories))
	for _, c := range raw.Categories {
		if c.Rating == nil {
			continue
		}
		out[canonicalCategoryKey(c.Category)] = convertScale(*c.Rating)
	}
	return out
}

// AverageRating returns the canonical average: the top-level rating
// converted when present, otherwise the mean of the original (pre-
// conversion) non-null category ratings, converted. Nil when there is
// nothing usable. Never fails; malformed input degrades to nil.
func (n *Normalizer) AverageRating(raw domain.RawReview) *float64 {
	if raw.Rating != nil {
		v := convertScale(*raw.Rating)
		return &v
	}
	var sum float64
	var count int
	for _, c := range raw.Categories {
		if c.Rating == nil {
			continue
		}
		if n.policy == ExcludeOverallAndHouseRules {
			switch canonicalCategoryKey(c.Category) {
			case domain.CatOverall, domain.CatRespectHouseRules:
				continue
			}
		}
		sum += *c.Rating
		count++
	}
	if count == 0 {
		return nil
	}
	v := convertScale(sum / float64(count))
	return &v
}
