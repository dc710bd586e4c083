// Package recipe contains the recipe aggregate together with its comments,
// votes and the pantry-based suggestion ranking.
package recipe

import (
	"strings"
	"time"
)

// IngredientSeparator separates entries of a recipe's ingredient list
const IngredientSeparator = ", "

// Recipe is a shared recipe and its images
type Recipe struct {
	ID           int64
	UserID       int64
	Name         string
	Category     string
	Ingredients  string
	Instructions string
	DietaryInfo  string
	PrepTime     *int
	CookTime     *int
	CreatedAt    time.Time
	Images       []Image
}

// Image is an uploaded picture of a recipe, addressed by its storage key
type Image struct {
	ID       int64
	RecipeID int64
	Key      string
}

// Details are the author-editable fields of a recipe
type Details struct {
	Name         string
	Category     string
	Ingredients  string
	Instructions string
	DietaryInfo  string
	PrepTime     *int
	CookTime     *int
}

// NewRecipe creates a recipe owned by userID
func NewRecipe(userID int64, details Details) (*Recipe, error) {
	r := &Recipe{UserID: userID, CreatedAt: time.Now().UTC()}
	if err := r.Update(details); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the editable fields after validating them
func (r *Recipe) Update(details Details) error {
	if strings.TrimSpace(details.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(details.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(details.Ingredients) == "" {
		return ErrNoIngredients
	}
	if strings.TrimSpace(details.Instructions) == "" {
		return ErrNoInstructions
	}
	if negative(details.PrepTime) || negative(details.CookTime) {
		return ErrInvalidDuration
	}

	r.Name = details.Name
	r.Category = details.Category
	r.Ingredients = details.Ingredients
	r.Instructions = details.Instructions
	r.DietaryInfo = details.DietaryInfo
	r.PrepTime = details.PrepTime
	r.CookTime = details.CookTime
	return nil
}

// IngredientTokens returns the lowercased entries of the ingredient list.
// Entries are not trimmed: "eggs,butter" is a single token.
func (r *Recipe) IngredientTokens() []string {
	return strings.Split(strings.ToLower(r.Ingredients), IngredientSeparator)
}

// ImageKeys returns the storage keys of the recipe's images
func (r *Recipe) ImageKeys() []string {
	keys := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		keys = append(keys, img.Key)
	}
	return keys
}

func negative(v *int) bool {
	return v != nil && *v < 0
}

// Comment is a remark left on a recipe
type Comment struct {
	ID        int64
	UserID    int64
	RecipeID  int64
	Text      string
	CreatedAt time.Time
}

// NewComment creates a comment by userID on recipeID
func NewComment(userID, recipeID int64, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	return &Comment{
		UserID:    userID,
		RecipeID:  recipeID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Vote is a user's like (true) or dislike (false) of a recipe. There is at
// most one vote per user and recipe.
type Vote struct {
	UserID   int64
	RecipeID int64
	IsLike   bool
}

// VoteCounts aggregates the votes of one recipe
type VoteCounts struct {
	Likes    int64
	Dislikes int64
}
