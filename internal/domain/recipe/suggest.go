package recipe

import (
	"sort"
	"strings"
	"time"

	"github.com/zerowastechef/server/internal/domain/pantry"
)

// ExpiryWindow is how far ahead an ingredient counts as expiring soon
const ExpiryWindow = 7 * 24 * time.Hour

// Suggest filters candidates down to the recipes relevant to a pantry and
// orders them.
//
// A recipe is kept when one of its ingredient tokens equals a pantry item
// name (case-insensitive, exact) or, for a non-empty search term, contains
// the term. Kept recipes are ranked by whether the pantry holds anything
// expiring within ExpiryWindow of now, then newest first. The expiring flag
// belongs to the pantry rather than to a recipe, so every recipe shares the
// same rank and creation time decides the order.
func Suggest(candidates []Recipe, items []pantry.Ingredient, search string, now time.Time) []Recipe {
	names := pantry.Names(items)
	search = strings.ToLower(search)

	kept := make([]Recipe, 0, len(candidates))
	for _, r := range candidates {
		if matches(r, names, search) {
			kept = append(kept, r)
		}
	}

	expiring := pantry.AnyExpiresBefore(items, now.Add(ExpiryWindow))
	urgent := func(Recipe) bool { return expiring }

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := urgent(kept[i]), urgent(kept[j])
		if a == b {
			return createdAtMillis(kept[i]) > createdAtMillis(kept[j])
		}
		return a
	})

	return kept
}

func matches(r Recipe, names map[string]struct{}, search string) bool {
	for _, token := range r.IngredientTokens() {
		if _, ok := names[token]; ok {
			return true
		}
		if search != "" && strings.Contains(token, search) {
			return true
		}
	}
	return false
}

// createdAtMillis treats a missing creation time as the epoch
func createdAtMillis(r Recipe) int64 {
	if r.CreatedAt.IsZero() {
		return 0
	}
	return r.CreatedAt.UnixMilli()
}
