package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	"github.com/zerowastechef/server/internal/ports/inbound"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

// Response messages of the recipe endpoints
const (
	RecipeUpdatedMessage = "Recipe updated successfully"
	VoteRecordedMessage  = "Vote recorded"
)

// RecipeAPIHandlers handles recipe, comment and vote requests
type RecipeAPIHandlers struct {
	recipes        inbound.RecipeService
	maxFileSize    int64
	maxMemoryBytes int64
	logger         *zap.Logger
}

// NewRecipeAPIHandlers creates a new recipe API handlers instance
func NewRecipeAPIHandlers(recipes inbound.RecipeService, cfg *config.Config, logger *zap.Logger) *RecipeAPIHandlers {
	return &RecipeAPIHandlers{
		recipes:        recipes,
		maxFileSize:    cfg.Storage.MaxFileSize,
		maxMemoryBytes: 8 << 20,
		logger:         logger.Named("recipe-api"),
	}
}

// ListRecipes handles GET /api/recipes
func (h *RecipeAPIHandlers) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// CreateRecipe handles POST /api/recipes
func (h *RecipeAPIHandlers) CreateRecipe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	cmd, cleanup, err := h.recipeCommand(c)
	defer cleanup()
	if err != nil {
		fail(c, err)
		return
	}
	cmd.UserID = userID

	id, err := h.recipes.CreateRecipe(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateRecipe handles PUT /api/recipes/:id
func (h *RecipeAPIHandlers) UpdateRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "id", "recipe id")
	if !ok {
		return
	}

	cmd, cleanup, err := h.recipeCommand(c)
	defer cleanup()
	if err != nil {
		fail(c, err)
		return
	}
	cmd.RecipeID = recipeID

	if err := h.recipes.UpdateRecipe(c.Request.Context(), cmd); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: RecipeUpdatedMessage})
}

// DeleteRecipe handles DELETE /api/recipes/:id
func (h *RecipeAPIHandlers) DeleteRecipe(c *gin.Context) {
	recipeID, ok := pathID(c, "id", "recipe id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), recipeID); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SuggestRecipes handles GET /api/suggested-recipes
func (h *RecipeAPIHandlers) SuggestRecipes(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	recipes, err := h.recipes.SuggestRecipes(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// AddComment handles POST /api/comments
func (h *RecipeAPIHandlers) AddComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var cmd inbound.CommentCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.UserID = userID

	id, err := h.recipes.AddComment(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// ListComments handles GET /api/comments/:recipeId
func (h *RecipeAPIHandlers) ListComments(c *gin.Context) {
	recipeID, ok := pathID(c, "recipeId", "recipe id")
	if !ok {
		return
	}

	comments, err := h.recipes.ListComments(c.Request.Context(), recipeID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// Vote handles POST /api/likes
func (h *RecipeAPIHandlers) Vote(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var cmd inbound.VoteCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.UserID = userID

	if err := h.recipes.Vote(c.Request.Context(), cmd); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: VoteRecordedMessage})
}

// GetVote handles GET /api/likes/:recipeId
func (h *RecipeAPIHandlers) GetVote(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipeId", "recipe id")
	if !ok {
		return
	}

	status, err := h.recipes.GetVote(c.Request.Context(), userID, recipeID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// CountVotes handles GET /api/likes/count/:recipeId
func (h *RecipeAPIHandlers) CountVotes(c *gin.Context) {
	recipeID, ok := pathID(c, "recipeId", "recipe id")
	if !ok {
		return
	}

	counts, err := h.recipes.CountVotes(c.Request.Context(), recipeID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// recipeCommand reads a recipe from a multipart form or a JSON body. The
// returned cleanup closes the opened uploads and must always be called.
func (h *RecipeAPIHandlers) recipeCommand(c *gin.Context) (inbound.RecipeCommand, func(), error) {
	var cmd inbound.RecipeCommand
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&cmd); err != nil {
			return cmd, noop, apperrors.NewBadRequestError("Invalid request body").WithCause(err)
		}
		return cmd, noop, nil
	}

	if err := c.Request.ParseMultipartForm(h.maxMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return cmd, noop, apperrors.NewBadRequestError("Request body too large")
		}
		h.logger.Debug("Multipart form rejected", zap.Error(err))
		return cmd, noop, apperrors.NewBadRequestError("Invalid multipart form").WithCause(err)
	}
	form := c.Request.MultipartForm

	cmd.Name = c.PostForm("name")
	cmd.Category = c.PostForm("category")
	cmd.Ingredients = c.PostForm("ingredients")
	cmd.Instructions = c.PostForm("instructions")
	cmd.DietaryInfo = c.PostForm("dietary_info")

	var err error
	if cmd.PrepTime, err = optionalInt(c.PostForm("prep_time"), "prep_time"); err != nil {
		return cmd, noop, err
	}
	if cmd.CookTime, err = optionalInt(c.PostForm("cook_time"), "cook_time"); err != nil {
		return cmd, noop, err
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		_ = form.RemoveAll()
	}

	for _, fh := range form.File["images"] {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			return cmd, cleanup, apperrors.NewBadRequestError(
				fmt.Sprintf("image %s exceeds the maximum size of %d bytes", fh.Filename, h.maxFileSize))
		}

		file, err := fh.Open()
		if err != nil {
			return cmd, cleanup, apperrors.NewBadRequestError("Invalid image upload").WithCause(err)
		}
		opened = append(opened, file)

		cmd.Images = append(cmd.Images, inbound.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     file,
		})
	}

	return cmd, cleanup, nil
}

func optionalInt(value, field string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperrors.NewValidationError(field + " must be a number")
	}
	return &n, nil
}
