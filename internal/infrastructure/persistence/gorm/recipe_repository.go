package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create stores a recipe and its images in one insert
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	rec.ID = model.ID
	for i := range model.Images {
		rec.Images[i].ID = model.Images[i].ID
		rec.Images[i].RecipeID = model.ID
	}
	return nil
}

// Update stores the editable fields of a recipe. A non-nil images slice
// replaces the stored images in the same transaction and the removed keys
// are returned.
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe, images []recipe.Image) ([]string, error) {
	model := RecipeToModel(rec)
	var old []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RecipeModel{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"name":         model.Name,
			"category":     model.Category,
			"ingredients":  model.Ingredients,
			"instructions": model.Instructions,
			"dietary_info": model.DietaryInfo,
			"prep_time":    model.PrepTime,
			"cook_time":    model.CookTime,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}

		if images == nil {
			return nil
		}
		removed, err := replaceImages(tx, rec.ID, images)
		if err != nil {
			return err
		}
		old = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if images != nil {
		rec.Images = images
	}
	return old, nil
}

func replaceImages(tx *gorm.DB, recipeID int64, images []recipe.Image) ([]string, error) {
	var old []string
	if err := tx.Model(&RecipeImageModel{}).Where("recipe_id = ?", recipeID).Pluck("path", &old).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeImageModel{}).Error; err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return old, nil
	}

	models := make([]RecipeImageModel, 0, len(images))
	for _, img := range images {
		models = append(models, RecipeImageModel{RecipeID: recipeID, Path: img.Key})
	}
	if err := tx.Create(&models).Error; err != nil {
		return nil, err
	}
	for i := range images {
		images[i].ID = models[i].ID
		images[i].RecipeID = recipeID
	}
	return old, nil
}

// Delete removes a recipe with its images, comments and votes
func (r *RecipeRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RecipeModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return recipe.ErrRecipeNotFound
		}

		if err := tx.Model(&RecipeImageModel{}).Where("recipe_id = ?", id).Pluck("path", &paths).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{&RecipeImageModel{}, &CommentModel{}, &LikeModel{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&RecipeModel{}).Error
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// FindByID finds a recipe with its images
func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.withImages(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	rec := ModelToRecipe(&model)
	return &rec, nil
}

// Exists reports whether a recipe with the ID is stored
func (r *RecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns recipes newest first, optionally filtered by exact category
func (r *RecipeRepository) List(ctx context.Context, category string) ([]recipe.Recipe, error) {
	var models []RecipeModel

	query := r.withImages(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, ModelToRecipe(&models[i]))
	}
	return recipes, nil
}

// Count returns the number of stored recipes
func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RecipeModel{}).Count(&count).Error
	return count, err
}

func (r *RecipeRepository) withImages(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}
