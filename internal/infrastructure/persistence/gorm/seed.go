package gorm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type seedRecipe struct {
	name         string
	category     string
	ingredients  string
	instructions string
	dietaryInfo  string
	prepTime     int
	cookTime     int
	month        time.Month
}

var defaultRecipes = []seedRecipe{
	{
		name:         "Fried Eggs",
		category:     "Breakfast",
		ingredients:  "1-2 eggs, butter or oil, salt, pepper",
		instructions: "Heat butter or oil in a pan over medium heat. Crack the eggs into the pan, season with salt and pepper, and cook until the whites are set but the yolks are still runny (or to your preference).",
		dietaryInfo:  "Vegetarian",
		prepTime:     2,
		cookTime:     5,
		month:        time.January,
	},
	{
		name:         "Omelette",
		category:     "Breakfast",
		ingredients:  "2-3 eggs, fillings (cheese, ham, vegetables), salt, pepper, butter",
		instructions: "Whisk the eggs with salt and pepper. Melt butter in a pan over medium heat, pour in the egg mixture, and let it set slightly. Add fillings to one half, then fold the other half over and cook until set.",
		dietaryInfo:  "Vegetarian (if no meat)",
		prepTime:     5,
		cookTime:     10,
		month:        time.February,
	},
	{
		name:         "Vegan Soup",
		category:     "Lunch",
		ingredients:  "Vegetable broth, carrots, celery, onions, potatoes, spices",
		instructions: "Sauté vegetables, add broth and spices, simmer until tender.",
		dietaryInfo:  "Vegan, Gluten-free",
		prepTime:     15,
		cookTime:     30,
		month:        time.March,
	},
	{
		name:         "Vegetable Soup",
		category:     "Lunch, Dinner",
		ingredients:  "Vegetable broth, mixed vegetables (carrots, peas, corn), tomatoes, herbs",
		instructions: "Cook vegetables in broth, add tomatoes and herbs, simmer until tender.",
		dietaryInfo:  "Vegetarian, Gluten-free",
		prepTime:     15,
		cookTime:     25,
		month:        time.April,
	},
	{
		name:         "Spaghetti",
		category:     "Dinner",
		ingredients:  "Spaghetti, tomato sauce, ground meat (optional), garlic, onions, herbs",
		instructions: "Cook spaghetti, prepare sauce with meat and herbs, combine and serve.",
		dietaryInfo:  "Can be vegetarian if meat is omitted",
		prepTime:     10,
		cookTime:     20,
		month:        time.May,
	},
	{
		name:         "Burger",
		category:     "Dinner",
		ingredients:  "Ground beef, buns, lettuce, tomatoes, onions, condiments",
		instructions: "Form patties, grill, assemble with toppings on buns.",
		dietaryInfo:  "Can be gluten-free with appropriate buns",
		prepTime:     15,
		cookTime:     15,
		month:        time.June,
	},
	{
		name:         "Banana Cake",
		category:     "Dessert",
		ingredients:  "Bananas, flour, sugar, eggs, baking powder, vanilla extract",
		instructions: "Mix ingredients, bake until golden, let cool.",
		dietaryInfo:  "Vegetarian",
		prepTime:     20,
		cookTime:     40,
		month:        time.July,
	},
	{
		name:         "Tiramisu",
		category:     "Dessert",
		ingredients:  "Mascarpone cheese, ladyfingers, coffee, rum, sugar, cocoa powder",
		instructions: "Dip ladyfingers in coffee and rum, layer with mascarpone mixture, dust with cocoa.",
		dietaryInfo:  "Contains dairy and alcohol",
		prepTime:     30,
		cookTime:     0,
		month:        time.August,
	},
	{
		name:         "Fruit Salad",
		category:     "Snack",
		ingredients:  "Mixed fruits (apples, oranges, grapes, berries)",
		instructions: "Chop fruits, mix, serve chilled.",
		dietaryInfo:  "Vegan, Gluten-free, Lactose-free",
		prepTime:     10,
		cookTime:     0,
		month:        time.September,
	},
}

// SeedRecipes inserts the default recipes, owned by ownerID, when the
// recipe table is empty. It returns the number of inserted recipes.
func SeedRecipes(ctx context.Context, db *gorm.DB, ownerID int64) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&RecipeModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	models := make([]RecipeModel, 0, len(defaultRecipes))
	for _, seed := range defaultRecipes {
		prep, cook := seed.prepTime, seed.cookTime
		dietary := seed.dietaryInfo
		models = append(models, RecipeModel{
			UserID:       ownerID,
			Name:         seed.name,
			Category:     seed.category,
			Ingredients:  seed.ingredients,
			Instructions: seed.instructions,
			DietaryInfo:  &dietary,
			PrepTime:     &prep,
			CookTime:     &cook,
			CreatedAt:    time.Date(2023, seed.month, 1, 10, 0, 0, 0, time.UTC),
		})
	}

	if err := db.WithContext(ctx).Create(&models).Error; err != nil {
		return 0, fmt.Errorf("failed to seed recipes: %w", err)
	}
	return len(models), nil
}
