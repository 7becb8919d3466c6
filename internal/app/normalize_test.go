package app_test

import (
	"testing"

	"github.com/dl5214/reviews-management-system/internal/app"
	"github.com/dl5214/reviews-management-system/internal/domain"
)

func pfloat(f float64) *float64 { return &f }
func pint64(i int64) *int64     { return &i }
func pstr(s string) *string     { return &s }

func TestCategories_AliasesAndNullDrop(t *testing.T) {
	n := app.NewNormalizer(app.ExcludeNone)
	raw := domain.RawReview{
		Categories: []domain.RawCategory{
			{Category: "cleanliness", Rating: pfloat(8)},
			{Category: "CHECK_IN", Rating: pfloat(9)},
			{Category: "checkin", Rating: pfloat(7)},
			{Category: "respect_house_rules", Rating: pfloat(10)},
			{Category: "communication", Rating: nil},
			{Category: "Amenities", Rating: pfloat(6)},
		},
	}
	cats := n.Categories(raw)

	if _, ok := cats["communication"]; ok {
		t.Fatalf("null category rating must be dropped, got %v", cats)
	}
	if got := cats["cleanliness"]; got != 4.0 {
		t.Fatalf("cleanliness: want 4.0, got %v", got)
	}
	// both spellings land on the canonical key; last one wins
	if got := cats["checkIn"]; got != 3.5 {
		t.Fatalf("checkIn: want 3.5, got %v", got)
	}
	if got := cats["respectHouseRules"]; got != 5.0 {
		t.Fatalf("respectHouseRules: want 5.0, got %v", got)
	}
	// unrecognized names pass through lower-cased
	if got := cats["amenities"]; got != 3.0 {
		t.Fatalf("amenities: want 3.0, got %v", got)
	}
}

func TestAverageRating_FromCategories(t *testing.T) {
	n := app.NewNormalizer(app.ExcludeNone)
	raw := domain.RawReview{
		ID:     1,
		Rating: nil,
		Categories: []domain.RawCategory{
			{Category: "cleanliness", Rating: pfloat(8)},
			{Category: "communication", Rating: pfloat(10)},
		},
	}
	avg := n.AverageRating(raw)
	if avg == nil || *avg != 4.5 {
		t.Fatalf("want 4.5, got %v", avg)
	}
	cats := n.Categories(raw)
	if cats["cleanliness"] != 4.0 || cats["communication"] != 5.0 {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestAverageRating_TopLevelWins(t *testing.T) {
	n := app.NewNormalizer(app.ExcludeNone)
	raw := domain.RawReview{
		Rating: pfloat(9),
		Categories: []domain.RawCategory{
			{Category: "cleanliness", Rating: pfloat(2)},
		},
	}
	avg := n.AverageRating(raw)
	if avg == nil || *avg != 4.5 {
		t.Fatalf("top-level rating should pass through converted: want 4.5, got %v", avg)
	}
}

func TestAverageRating_NilWhenNothingUsable(t *testing.T) {
	n := app.NewNormalizer(app.ExcludeNone)

	if avg := n.AverageRating(domain.RawReview{}); avg != nil {
		t.Fatalf("no rating, no categories: want nil, got %v", *avg)
	}
	allNull := domain.RawReview{
		Categories: []domain.RawCategory{
			{Category: "cleanliness", Rating: nil},
			{Category: "value", Rating: nil},
		},
	}
	if avg := n.AverageRating(allNull); avg != nil {
		t.Fatalf("all-null categories: want nil, got %v", *avg)
	}
}

func TestAverageRating_ExcludePolicy(t *testing.T) {
	raw := domain.RawReview{
		Categories: []domain.RawCategory{
			{Category: "cleanliness", Rating: pfloat(6)},
			{Category: "overall", Rating: pfloat(10)},
			{Category: "respect_house_rules", Rating: pfloat(10)},
		},
	}

	inclusive := app.NewNormalizer(app.ExcludeNone).AverageRating(raw)
	if inclusive == nil || *inclusive != 4.33 {
		t.Fatalf("excludeNone: want 4.33, got %v", inclusive)
	}

	strict := app.NewNormalizer(app.ExcludeOverallAndHouseRules).AverageRating(raw)
	if strict == nil || *strict != 3.0 {
		t.Fatalf("excludeOverallAndHouseRules: want 3.0, got %v", strict)
	}
}

func TestParseAveragePolicy_Fallback(t *testing.T) {
	if got := app.ParseAveragePolicy("excludeOverallAndHouseRules"); got != app.ExcludeOverallAndHouseRules {
		t.Fatalf("got %v", got)
	}
	if got := app.ParseAveragePolicy("bogus"); got != app.ExcludeNone {
		t.Fatalf("unknown policy should fall back to excludeNone, got %v", got)
	}
}
