package recipe_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	recipeapp "github.com/zerowastechef/server/internal/application/recipe"
	"github.com/zerowastechef/server/internal/domain/pantry"
	gormrepo "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
	"github.com/zerowastechef/server/internal/infrastructure/persistence/memory"
	"github.com/zerowastechef/server/internal/infrastructure/storage"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
	"github.com/zerowastechef/server/internal/testutil"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// RecipeServiceTestSuite runs the recipe use cases against sqlite
type RecipeServiceTestSuite struct {
	suite.Suite
	service     *recipeapp.RecipeService
	cache       *memory.CacheRepository
	ingredients outbound.IngredientRepository
	uploadDir   string
	factory     *testutil.Factory
	ctx         context.Context
}

func (s *RecipeServiceTestSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.ctx = context.Background()
	s.factory = testutil.NewFactory(21)
	s.uploadDir = s.T().TempDir()

	local, err := storage.NewLocalStore(s.uploadDir, "/uploads")
	require.NoError(s.T(), err)

	s.cache = memory.NewCacheRepository()
	s.T().Cleanup(func() { _ = s.cache.Close() })

	s.ingredients = gormrepo.NewIngredientRepository(db)
	s.service = recipeapp.NewRecipeService(
		recipeapp.Repositories{
			Recipes:     gormrepo.NewRecipeRepository(db),
			Comments:    gormrepo.NewCommentRepository(db),
			Votes:       gormrepo.NewVoteRepository(db),
			Ingredients: s.ingredients,
		},
		storage.Restrict(local, imageTypes),
		recipeapp.NewListCache(s.cache, time.Minute, zap.NewNop()),
		testutil.NopMetrics{},
		recipeapp.DefaultMaxImages,
		zap.NewNop(),
	)
}

func (s *RecipeServiceTestSuite) command(userID int64, ingredients string, images ...inbound.ImageUpload) inbound.RecipeCommand {
	d := s.factory.Details(ingredients)
	return inbound.RecipeCommand{
		UserID:       userID,
		Name:         d.Name,
		Category:     d.Category,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		DietaryInfo:  d.DietaryInfo,
		PrepTime:     d.PrepTime,
		CookTime:     d.CookTime,
		Images:       images,
	}
}

func png(name string) inbound.ImageUpload {
	return inbound.ImageUpload{Filename: name, ContentType: "image/png", Content: strings.NewReader("\x89PNG")}
}

func (s *RecipeServiceTestSuite) uploadedFiles() []string {
	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(s.T(), err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (s *RecipeServiceTestSuite) TestCreateRecipe() {
	s.Run("CreateRecipe_WithImages_ShouldExposeUploadURLs", func() {
		// Arrange
		s.SetupTest()
		cmd := s.command(1, "eggs, flour", png("Cake.PNG"), png("slice.png"))

		// Act
		id, err := s.service.CreateRecipe(s.ctx, cmd)

		// Assert
		require.NoError(s.T(), err)
		assert.NotZero(s.T(), id)

		recipes, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)
		require.Len(s.T(), recipes, 1)
		require.Len(s.T(), recipes[0].Images, 2)
		assert.True(s.T(), strings.HasPrefix(recipes[0].Images[0], "/uploads/"))
		assert.True(s.T(), strings.HasSuffix(recipes[0].Images[0], ".png"))
		assert.NotEmpty(s.T(), recipes[0].CreatedAt)
		assert.Len(s.T(), s.uploadedFiles(), 2)
	})

	s.Run("CreateRecipe_TooManyImages_ShouldReturn400", func() {
		s.SetupTest()
		uploads := make([]inbound.ImageUpload, 0, recipeapp.DefaultMaxImages+1)
		for i := 0; i <= recipeapp.DefaultMaxImages; i++ {
			uploads = append(uploads, png("p.png"))
		}

		_, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", uploads...))

		status, body := apperrors.ToResponse(err)
		assert.Equal(s.T(), 400, status)
		assert.Equal(s.T(), "at most 5 images are allowed", body.Message)
		assert.Empty(s.T(), s.uploadedFiles())
	})

	s.Run("CreateRecipe_NonImageUpload_ShouldRejectAndCleanUp", func() {
		s.SetupTest()
		text := inbound.ImageUpload{Filename: "notes.txt", ContentType: "text/plain", Content: strings.NewReader("hi")}

		_, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", png("ok.png"), text))

		_, body := apperrors.ToResponse(err)
		assert.Equal(s.T(), "Only image files are allowed", body.Message)
		assert.Empty(s.T(), s.uploadedFiles())

		recipes, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)
		assert.Empty(s.T(), recipes)
	})

	s.Run("CreateRecipe_MissingName_ShouldNameTheField", func() {
		s.SetupTest()
		cmd := s.command(1, "eggs")
		cmd.Name = ""

		_, err := s.service.CreateRecipe(s.ctx, cmd)

		_, body := apperrors.ToResponse(err)
		assert.Equal(s.T(), "name is required", body.Message)
	})
}

func (s *RecipeServiceTestSuite) TestListingCache() {
	s.Run("ListRecipes_ShouldCacheAndInvalidateOnWrite", func() {
		// Arrange
		s.SetupTest()
		_, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs"))
		require.NoError(s.T(), err)

		// Act
		first, err := s.service.ListRecipes(s.ctx, "Dessert")
		require.NoError(s.T(), err)

		// Assert
		_, err = s.cache.Get(s.ctx, recipeapp.ListKey("Dessert"))
		require.NoError(s.T(), err)
		members, err := s.cache.SMembers(s.ctx, recipeapp.KeysSet)
		require.NoError(s.T(), err)
		assert.Contains(s.T(), members, recipeapp.ListKey("Dessert"))

		_, err = s.service.CreateRecipe(s.ctx, s.command(1, "milk"))
		require.NoError(s.T(), err)
		_, err = s.cache.Get(s.ctx, recipeapp.ListKey("Dessert"))
		assert.ErrorIs(s.T(), err, outbound.ErrCacheMiss)

		second, err := s.service.ListRecipes(s.ctx, "Dessert")
		require.NoError(s.T(), err)
		assert.Len(s.T(), first, 1)
		assert.Len(s.T(), second, 2)
	})

	s.Run("ListRecipes_UnknownCategory_ShouldReturnEmptyList", func() {
		s.SetupTest()
		_, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs"))
		require.NoError(s.T(), err)

		recipes, err := s.service.ListRecipes(s.ctx, "Soup")

		require.NoError(s.T(), err)
		assert.NotNil(s.T(), recipes)
		assert.Empty(s.T(), recipes)
	})
}

func (s *RecipeServiceTestSuite) TestUpdateAndDelete() {
	s.Run("UpdateRecipe_NewImages_ShouldReplaceOldFiles", func() {
		// Arrange
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", png("old.png")))
		require.NoError(s.T(), err)
		oldFiles := s.uploadedFiles()
		require.Len(s.T(), oldFiles, 1)

		cmd := s.command(1, "eggs, milk", png("new.png"))
		cmd.RecipeID = id
		cmd.Name = "Updated"

		// Act
		err = s.service.UpdateRecipe(s.ctx, cmd)

		// Assert
		require.NoError(s.T(), err)
		files := s.uploadedFiles()
		require.Len(s.T(), files, 1)
		assert.NotEqual(s.T(), oldFiles[0], files[0])

		recipes, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "Updated", recipes[0].Name)
		assert.Equal(s.T(), []string{"/uploads/" + files[0]}, recipes[0].Images)
	})

	s.Run("UpdateRecipe_WithoutImages_ShouldKeepImages", func() {
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", png("keep.png")))
		require.NoError(s.T(), err)

		cmd := s.command(1, "eggs")
		cmd.RecipeID = id
		require.NoError(s.T(), s.service.UpdateRecipe(s.ctx, cmd))

		recipes, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)
		assert.Len(s.T(), recipes[0].Images, 1)
		assert.Len(s.T(), s.uploadedFiles(), 1)
	})

	s.Run("UpdateRecipe_NonImageUpload_ShouldLeaveRecipeUnchanged", func() {
		// Arrange
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", png("keep.png")))
		require.NoError(s.T(), err)
		before, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)

		text := inbound.ImageUpload{Filename: "notes.txt", ContentType: "text/plain", Content: strings.NewReader("hi")}
		cmd := s.command(1, "milk", png("new.png"), text)
		cmd.RecipeID = id
		cmd.Name = "Rejected"

		// Act
		err = s.service.UpdateRecipe(s.ctx, cmd)

		// Assert
		status, body := apperrors.ToResponse(err)
		assert.Equal(s.T(), 400, status)
		assert.Equal(s.T(), "Only image files are allowed", body.Message)
		assert.Len(s.T(), s.uploadedFiles(), 1)

		require.NoError(s.T(), s.cache.Delete(s.ctx, recipeapp.ListKey("")))
		after, err := s.service.ListRecipes(s.ctx, "")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), before, after)
	})

	s.Run("UpdateRecipe_Missing_ShouldReturn404", func() {
		s.SetupTest()
		cmd := s.command(1, "eggs")
		cmd.RecipeID = 404

		err := s.service.UpdateRecipe(s.ctx, cmd)

		assert.True(s.T(), apperrors.Is(err, apperrors.CodeNotFound))
	})

	s.Run("DeleteRecipe_ShouldRemoveFilesAndComments", func() {
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs", png("gone.png")))
		require.NoError(s.T(), err)
		_, err = s.service.AddComment(s.ctx, inbound.CommentCommand{UserID: 2, RecipeID: id, Text: "nice"})
		require.NoError(s.T(), err)

		require.NoError(s.T(), s.service.DeleteRecipe(s.ctx, id))

		assert.Empty(s.T(), s.uploadedFiles())
		comments, err := s.service.ListComments(s.ctx, id)
		require.NoError(s.T(), err)
		assert.Empty(s.T(), comments)

		err = s.service.DeleteRecipe(s.ctx, id)
		status, body := apperrors.ToResponse(err)
		assert.Equal(s.T(), 404, status)
		assert.Equal(s.T(), "Recipe not found", body.Message)
	})
}

func (s *RecipeServiceTestSuite) TestVotes() {
	yes, no := true, false

	s.Run("Vote_RepeatedAndToggled_ShouldKeepOneVotePerUser", func() {
		// Arrange
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs"))
		require.NoError(s.T(), err)
		like := inbound.VoteCommand{UserID: 2, RecipeID: id, IsLike: &yes}

		// Act
		require.NoError(s.T(), s.service.Vote(s.ctx, like))
		require.NoError(s.T(), s.service.Vote(s.ctx, like))
		counts, err := s.service.CountVotes(s.ctx, id)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), &inbound.VoteCountsDTO{Likes: 1, Dislikes: 0}, counts)

		require.NoError(s.T(), s.service.Vote(s.ctx, inbound.VoteCommand{UserID: 2, RecipeID: id, IsLike: &no}))
		counts, err = s.service.CountVotes(s.ctx, id)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), &inbound.VoteCountsDTO{Likes: 0, Dislikes: 1}, counts)

		require.NoError(s.T(), s.service.Vote(s.ctx, like))
		counts, err = s.service.CountVotes(s.ctx, id)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), &inbound.VoteCountsDTO{Likes: 1, Dislikes: 0}, counts)

		status, err := s.service.GetVote(s.ctx, 2, id)
		require.NoError(s.T(), err)
		require.NotNil(s.T(), status.Liked)
		assert.False(s.T(), *status.Liked)
	})

	s.Run("GetVote_NoVote_ShouldReturnNullLiked", func() {
		s.SetupTest()

		status, err := s.service.GetVote(s.ctx, 2, 99)

		require.NoError(s.T(), err)
		assert.Nil(s.T(), status.Liked)
	})

	s.Run("Vote_UnknownRecipe_ShouldReturn404", func() {
		s.SetupTest()

		err := s.service.Vote(s.ctx, inbound.VoteCommand{UserID: 2, RecipeID: 99, IsLike: &yes})

		assert.True(s.T(), apperrors.Is(err, apperrors.CodeNotFound))
	})

	s.Run("Vote_MissingIsLike_ShouldReturn400", func() {
		s.SetupTest()

		err := s.service.Vote(s.ctx, inbound.VoteCommand{UserID: 2, RecipeID: 1})

		status, _ := apperrors.ToResponse(err)
		assert.Equal(s.T(), 400, status)
	})
}

func (s *RecipeServiceTestSuite) TestComments() {
	s.Run("AddComment_ShouldListOldestFirst", func() {
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs"))
		require.NoError(s.T(), err)

		for _, text := range []string{"first", "second"} {
			_, err := s.service.AddComment(s.ctx, inbound.CommentCommand{UserID: 2, RecipeID: id, Text: text})
			require.NoError(s.T(), err)
		}

		comments, err := s.service.ListComments(s.ctx, id)

		require.NoError(s.T(), err)
		require.Len(s.T(), comments, 2)
		assert.Equal(s.T(), "first", comments[0].Text)
		assert.Len(s.T(), comments[0].CreatedAt, len(inbound.TimestampLayout))
	})

	s.Run("AddComment_UnknownRecipe_ShouldReturn404", func() {
		s.SetupTest()

		_, err := s.service.AddComment(s.ctx, inbound.CommentCommand{UserID: 2, RecipeID: 77, Text: "hello"})

		assert.True(s.T(), apperrors.Is(err, apperrors.CodeNotFound))
	})

	s.Run("ListComments_UnknownRecipe_ShouldReturnEmptyList", func() {
		s.SetupTest()

		comments, err := s.service.ListComments(s.ctx, 77)

		require.NoError(s.T(), err)
		assert.NotNil(s.T(), comments)
		assert.Empty(s.T(), comments)
	})
}

func (s *RecipeServiceTestSuite) TestSuggestRecipes() {
	addIngredient := func(userID int64, name, expires string) {
		item, err := pantry.NewIngredient(userID, name, expires)
		require.NoError(s.T(), err)
		require.NoError(s.T(), s.ingredients.Create(s.ctx, item))
	}

	s.Run("SuggestRecipes_ShouldMatchExactTokensOnly", func() {
		// Arrange
		s.SetupTest()
		addIngredient(5, "Butter", "")
		listed, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs, butter"))
		require.NoError(s.T(), err)
		joined, err := s.service.CreateRecipe(s.ctx, s.command(1, "flour,butter"))
		require.NoError(s.T(), err)
		_, err = s.service.CreateRecipe(s.ctx, s.command(1, "peanut butter, jam"))
		require.NoError(s.T(), err)

		// Act
		suggestions, err := s.service.SuggestRecipes(s.ctx, 5, "")

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), suggestions, 1)
		assert.Equal(s.T(), listed, suggestions[0].ID)
		assert.NotEqual(s.T(), joined, suggestions[0].ID)
	})

	s.Run("SuggestRecipes_SearchTerm_ShouldMatchSubstring", func() {
		s.SetupTest()
		id, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs, tomatoes"))
		require.NoError(s.T(), err)

		suggestions, err := s.service.SuggestRecipes(s.ctx, 5, "TOMATO")

		require.NoError(s.T(), err)
		require.Len(s.T(), suggestions, 1)
		assert.Equal(s.T(), id, suggestions[0].ID)
	})

	s.Run("SuggestRecipes_EmptyPantryNoSearch_ShouldReturnEmptyList", func() {
		s.SetupTest()
		_, err := s.service.CreateRecipe(s.ctx, s.command(1, "eggs"))
		require.NoError(s.T(), err)

		suggestions, err := s.service.SuggestRecipes(s.ctx, 5, "")

		require.NoError(s.T(), err)
		assert.NotNil(s.T(), suggestions)
		assert.Empty(s.T(), suggestions)
	})
}

func (s *RecipeServiceTestSuite) TestCreateRecipe_InvalidFields_ShouldNotStoreUploads() {
	cmd := s.command(1, "", png("early.png"))

	_, err := s.service.CreateRecipe(s.ctx, cmd)

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.Empty(s.T(), s.uploadedFiles())
}

func TestRecipeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceTestSuite))
}
