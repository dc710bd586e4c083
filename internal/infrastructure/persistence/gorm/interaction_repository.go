package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zerowastechef/server/internal/domain/activity"
	"github.com/zerowastechef/server/internal/domain/pantry"
	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

// IngredientRepository implements pantry persistence using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create stores a pantry entry and assigns its ID
func (r *IngredientRepository) Create(ctx context.Context, ing *pantry.Ingredient) error {
	model := &IngredientModel{
		UserID:         ing.UserID,
		Name:           ing.Name,
		ExpirationDate: ing.ExpirationDate,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	ing.ID = model.ID
	return nil
}

// ListByUser returns the user's pantry in insertion order
func (r *IngredientRepository) ListByUser(ctx context.Context, userID int64) ([]pantry.Ingredient, error) {
	var models []IngredientModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]pantry.Ingredient, 0, len(models))
	for i := range models {
		items = append(items, ModelToIngredient(&models[i]))
	}
	return items, nil
}

// CommentRepository implements comment persistence using GORM
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) outbound.CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores a comment and assigns its ID
func (r *CommentRepository) Create(ctx context.Context, c *recipe.Comment) error {
	model := &CommentModel{
		UserID:    c.UserID,
		RecipeID:  c.RecipeID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	c.ID = model.ID
	return nil
}

// ListByRecipe returns the comments of a recipe oldest first
func (r *CommentRepository) ListByRecipe(ctx context.Context, recipeID int64) ([]recipe.Comment, error) {
	var models []CommentModel
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]recipe.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, ModelToComment(&models[i]))
	}
	return comments, nil
}

// VoteRepository implements like/dislike persistence using GORM
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) outbound.VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert inserts the vote or overwrites the user's earlier vote on the
// recipe
func (r *VoteRepository) Upsert(ctx context.Context, v recipe.Vote) error {
	model := &LikeModel{UserID: v.UserID, RecipeID: v.RecipeID, IsLike: v.IsLike}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_like"}),
	}).Create(model).Error
}

// Find returns the user's vote on the recipe, or nil
func (r *VoteRepository) Find(ctx context.Context, userID, recipeID int64) (*recipe.Vote, error) {
	var model LikeModel

	result := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &recipe.Vote{UserID: model.UserID, RecipeID: model.RecipeID, IsLike: model.IsLike}, nil
}

// Count aggregates likes and dislikes of a recipe
func (r *VoteRepository) Count(ctx context.Context, recipeID int64) (recipe.VoteCounts, error) {
	var counts recipe.VoteCounts

	err := r.db.WithContext(ctx).Model(&LikeModel{}).
		Select("COALESCE(SUM(CASE WHEN is_like THEN 1 ELSE 0 END), 0) AS likes, "+
			"COALESCE(SUM(CASE WHEN is_like THEN 0 ELSE 1 END), 0) AS dislikes").
		Where("recipe_id = ?", recipeID).
		Scan(&counts).Error

	return counts, err
}

// ActivityRepository reads activity logs using GORM
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) outbound.ActivityRepository {
	return &ActivityRepository{db: db}
}

// ForUser returns the votes, comments and recipes of one user
func (r *ActivityRepository) ForUser(ctx context.Context, userID int64) (*activity.Log, error) {
	return r.load(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

// All returns the votes, comments and recipes of every user
func (r *ActivityRepository) All(ctx context.Context) (*activity.Log, error) {
	return r.load(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *ActivityRepository) load(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*activity.Log, error) {
	db := r.db.WithContext(ctx)
	log := &activity.Log{
		Likes:    []activity.Like{},
		Comments: []activity.Comment{},
		Recipes:  []activity.Recipe{},
	}

	var likes []LikeModel
	if err := db.Scopes(scope).Order("id ASC").Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		log.Likes = append(log.Likes, activity.Like{UserID: l.UserID, RecipeID: l.RecipeID, IsLike: l.IsLike})
	}

	var comments []CommentModel
	if err := db.Scopes(scope).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		log.Comments = append(log.Comments, activity.Comment{
			UserID:    c.UserID,
			RecipeID:  c.RecipeID,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}

	var recipes []RecipeModel
	if err := db.Scopes(scope).Select("id", "user_id", "name").Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		log.Recipes = append(log.Recipes, activity.Recipe{UserID: rec.UserID, ID: rec.ID, Name: rec.Name})
	}

	return log, nil
}
