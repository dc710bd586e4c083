package recipe

import "errors"

// Domain errors for recipe operations
var (
	ErrEmptyName       = errors.New("name is required")
	ErrEmptyCategory   = errors.New("category is required")
	ErrNoIngredients   = errors.New("ingredients are required")
	ErrNoInstructions  = errors.New("instructions are required")
	ErrInvalidDuration = errors.New("preparation and cooking times must not be negative")
	ErrEmptyComment    = errors.New("comment text is required")

	ErrRecipeNotFound = errors.New("recipe not found")
)
