// Package recipe provides the application layer for recipes, comments and
// votes. It implements the use cases defined in the inbound ports.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
	apperrors "github.com/zerowastechef/server/pkg/errors"
	"github.com/zerowastechef/server/pkg/validation"
)

// DefaultMaxImages limits the images uploaded with one recipe
const DefaultMaxImages = 5

// Repositories groups the storage ports used by RecipeService
type Repositories struct {
	Recipes     outbound.RecipeRepository
	Comments    outbound.CommentRepository
	Votes       outbound.VoteRepository
	Ingredients outbound.IngredientRepository
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipes     outbound.RecipeRepository
	comments    outbound.CommentRepository
	votes       outbound.VoteRepository
	ingredients outbound.IngredientRepository
	images      outbound.ImageStore
	cache       *ListCache
	metrics     outbound.MetricsRecorder
	maxImages   int
	now         func() time.Time
	logger      *zap.Logger
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new recipe service
func NewRecipeService(
	repos Repositories,
	images outbound.ImageStore,
	cache *ListCache,
	metrics outbound.MetricsRecorder,
	maxImages int,
	logger *zap.Logger,
) *RecipeService {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &RecipeService{
		recipes:     repos.Recipes,
		comments:    repos.Comments,
		votes:       repos.Votes,
		ingredients: repos.Ingredients,
		images:      images,
		cache:       cache,
		metrics:     metrics,
		maxImages:   maxImages,
		now:         time.Now,
		logger:      logger.Named("recipe-service"),
	}
}

// WithClock replaces the clock used to rank suggestions
func (s *RecipeService) WithClock(now func() time.Time) *RecipeService {
	s.now = now
	return s
}

// ListRecipes returns recipes newest first, optionally limited to one
// category
func (s *RecipeService) ListRecipes(ctx context.Context, category string) ([]inbound.RecipeDTO, error) {
	if cached, ok := s.cache.Get(ctx, category); ok {
		return cached, nil
	}

	recipes, err := s.recipes.List(ctx, category)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}

	dtos := s.toDTOs(recipes)
	s.cache.Store(ctx, category, dtos)
	return dtos, nil
}

// CreateRecipe stores a recipe with its uploaded images
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd inbound.RecipeCommand) (int64, error) {
	if err := s.validate(cmd); err != nil {
		return 0, err
	}

	rec, err := recipe.NewRecipe(cmd.UserID, details(cmd))
	if err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}

	keys, err := s.saveImages(ctx, cmd.Images)
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		rec.Images = append(rec.Images, recipe.Image{Key: key})
	}

	if err := s.recipes.Create(ctx, rec); err != nil {
		s.deleteImages(ctx, keys)
		return 0, apperrors.NewDatabaseError("create recipe", err)
	}

	s.cache.Invalidate(ctx)
	s.metrics.RecordRecipeCreated(ctx)

	s.logger.Info("Recipe created",
		zap.Int64("recipe_id", rec.ID),
		zap.Int64("user_id", rec.UserID),
		zap.Int("images", len(keys)),
	)
	return rec.ID, nil
}

// UpdateRecipe replaces the fields of a recipe. Uploaded images replace
// the stored ones; without uploads the images are kept.
func (s *RecipeService) UpdateRecipe(ctx context.Context, cmd inbound.RecipeCommand) error {
	if err := s.validate(cmd); err != nil {
		return err
	}

	rec, err := s.recipes.FindByID(ctx, cmd.RecipeID)
	if err != nil {
		return s.mapError("find recipe", err)
	}
	if err := rec.Update(details(cmd)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	var images []recipe.Image
	var keys []string
	if len(cmd.Images) > 0 {
		keys, err = s.saveImages(ctx, cmd.Images)
		if err != nil {
			return err
		}
		images = make([]recipe.Image, 0, len(keys))
		for _, key := range keys {
			images = append(images, recipe.Image{Key: key})
		}
	}

	old, err := s.recipes.Update(ctx, rec, images)
	if err != nil {
		s.deleteImages(ctx, keys)
		return s.mapError("update recipe", err)
	}
	s.deleteImages(ctx, old)

	s.cache.Invalidate(ctx)
	s.logger.Info("Recipe updated", zap.Int64("recipe_id", rec.ID))
	return nil
}

// DeleteRecipe removes a recipe with its images, comments and votes
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID int64) error {
	keys, err := s.recipes.Delete(ctx, recipeID)
	if err != nil {
		return s.mapError("delete recipe", err)
	}

	s.deleteImages(ctx, keys)
	s.cache.Invalidate(ctx)

	s.logger.Info("Recipe deleted", zap.Int64("recipe_id", recipeID))
	return nil
}

// SuggestRecipes returns the recipes that use an ingredient of the user's
// pantry or match the search term
func (s *RecipeService) SuggestRecipes(ctx context.Context, userID int64, search string) ([]inbound.RecipeDTO, error) {
	items, err := s.ingredients.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list ingredients", err)
	}

	candidates, err := s.recipes.List(ctx, "")
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}

	return s.toDTOs(recipe.Suggest(candidates, items, search, s.now())), nil
}

// AddComment stores a comment on an existing recipe
func (s *RecipeService) AddComment(ctx context.Context, cmd inbound.CommentCommand) (int64, error) {
	if err := validation.Struct(cmd); err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	if err := s.requireRecipe(ctx, cmd.RecipeID); err != nil {
		return 0, err
	}

	comment, err := recipe.NewComment(cmd.UserID, cmd.RecipeID, cmd.Text)
	if err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return 0, apperrors.NewDatabaseError("create comment", err)
	}
	return comment.ID, nil
}

// ListComments returns the comments of a recipe oldest first
func (s *RecipeService) ListComments(ctx context.Context, recipeID int64) ([]inbound.CommentDTO, error) {
	comments, err := s.comments.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list comments", err)
	}

	dtos := make([]inbound.CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, inbound.CommentDTO{
			ID:        c.ID,
			UserID:    c.UserID,
			RecipeID:  c.RecipeID,
			Text:      c.Text,
			CreatedAt: formatTime(c.CreatedAt),
		})
	}
	return dtos, nil
}

// Vote records the caller's like or dislike, replacing an earlier vote
func (s *RecipeService) Vote(ctx context.Context, cmd inbound.VoteCommand) error {
	if err := validation.Struct(cmd); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.requireRecipe(ctx, cmd.RecipeID); err != nil {
		return err
	}

	vote := recipe.Vote{UserID: cmd.UserID, RecipeID: cmd.RecipeID, IsLike: *cmd.IsLike}
	if err := s.votes.Upsert(ctx, vote); err != nil {
		return apperrors.NewDatabaseError("record vote", err)
	}

	s.metrics.RecordVote(ctx, vote.IsLike)
	return nil
}

// GetVote returns the caller's vote on a recipe
func (s *RecipeService) GetVote(ctx context.Context, userID, recipeID int64) (*inbound.VoteStatusDTO, error) {
	vote, err := s.votes.Find(ctx, userID, recipeID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find vote", err)
	}

	status := &inbound.VoteStatusDTO{}
	if vote != nil {
		liked := vote.IsLike
		status.Liked = &liked
	}
	return status, nil
}

// CountVotes aggregates the votes of a recipe
func (s *RecipeService) CountVotes(ctx context.Context, recipeID int64) (*inbound.VoteCountsDTO, error) {
	counts, err := s.votes.Count(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count votes", err)
	}
	return &inbound.VoteCountsDTO{Likes: counts.Likes, Dislikes: counts.Dislikes}, nil
}

func (s *RecipeService) validate(cmd inbound.RecipeCommand) error {
	if err := validation.Struct(cmd); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if len(cmd.Images) > s.maxImages {
		return apperrors.NewValidationError(fmt.Sprintf("at most %d images are allowed", s.maxImages))
	}
	return nil
}

func (s *RecipeService) requireRecipe(ctx context.Context, recipeID int64) error {
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return apperrors.NewDatabaseError("find recipe", err)
	}
	if !exists {
		return apperrors.NewNotFoundError("recipe")
	}
	return nil
}

// saveImages stores every upload; on failure the already stored ones are
// removed again
func (s *RecipeService) saveImages(ctx context.Context, uploads []inbound.ImageUpload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		key, err := s.images.Save(ctx, upload.Filename, upload.ContentType, upload.Content)
		if err != nil {
			s.deleteImages(ctx, keys)
			if errors.Is(err, outbound.ErrUnsupportedImageType) {
				return nil, apperrors.NewValidationError("Only image files are allowed")
			}
			return nil, apperrors.NewStorageError("store image", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// deleteImages removes stored files; failures only leave orphans behind
func (s *RecipeService) deleteImages(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete image", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *RecipeService) mapError(operation string, err error) error {
	if errors.Is(err, recipe.ErrRecipeNotFound) {
		return apperrors.NewNotFoundError("recipe")
	}
	return apperrors.NewDatabaseError(operation, err)
}

func (s *RecipeService) toDTOs(recipes []recipe.Recipe) []inbound.RecipeDTO {
	dtos := make([]inbound.RecipeDTO, 0, len(recipes))
	for i := range recipes {
		dtos = append(dtos, s.toDTO(&recipes[i]))
	}
	return dtos
}

func (s *RecipeService) toDTO(r *recipe.Recipe) inbound.RecipeDTO {
	images := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, s.images.URL(img.Key))
	}

	return inbound.RecipeDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Category:     r.Category,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		DietaryInfo:  r.DietaryInfo,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		CreatedAt:    formatTime(r.CreatedAt),
		Images:       images,
	}
}

func details(cmd inbound.RecipeCommand) recipe.Details {
	return recipe.Details{
		Name:         cmd.Name,
		Category:     cmd.Category,
		Ingredients:  cmd.Ingredients,
		Instructions: cmd.Instructions,
		DietaryInfo:  cmd.DietaryInfo,
		PrepTime:     cmd.PrepTime,
		CookTime:     cmd.CookTime,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(inbound.TimestampLayout)
}
