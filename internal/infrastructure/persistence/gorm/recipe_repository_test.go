package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/zerowastechef/server/internal/domain/recipe"
	gormrepo "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
	"github.com/zerowastechef/server/internal/ports/outbound"
	"github.com/zerowastechef/server/internal/testutil"
)

type RecipeRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	recipes outbound.RecipeRepository
	factory *testutil.Factory
	ctx     context.Context
}

func (s *RecipeRepositoryTestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.recipes = gormrepo.NewRecipeRepository(s.db)
	s.factory = testutil.NewFactory(7)
	s.ctx = context.Background()
}

func (s *RecipeRepositoryTestSuite) createAt(category string, createdAt time.Time) *recipe.Recipe {
	rec := s.factory.Recipe(1, "eggs, butter")
	rec.Category = category
	rec.CreatedAt = createdAt
	require.NoError(s.T(), s.recipes.Create(s.ctx, rec))
	return rec
}

func (s *RecipeRepositoryTestSuite) TestCreate() {
	s.Run("Create_WithImages_ShouldAssignIDs", func() {
		// Arrange
		rec := s.factory.Recipe(1, "eggs, butter")
		rec.Images = []recipe.Image{{Key: "one.png"}, {Key: "two.jpg"}}

		// Act
		err := s.recipes.Create(s.ctx, rec)

		// Assert
		require.NoError(s.T(), err)
		assert.NotZero(s.T(), rec.ID)
		for _, img := range rec.Images {
			assert.NotZero(s.T(), img.ID)
			assert.Equal(s.T(), rec.ID, img.RecipeID)
		}

		stored, err := s.recipes.FindByID(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), rec.Name, stored.Name)
		assert.Equal(s.T(), []string{"one.png", "two.jpg"}, stored.ImageKeys())
		assert.Equal(s.T(), *rec.PrepTime, *stored.PrepTime)
	})

	s.Run("FindByID_Unknown_ShouldReturnNotFound", func() {
		_, err := s.recipes.FindByID(s.ctx, 9999)

		assert.ErrorIs(s.T(), err, recipe.ErrRecipeNotFound)
	})
}

func (s *RecipeRepositoryTestSuite) TestUpdate() {
	s.Run("Update_ExistingRecipe_ShouldPersistFields", func() {
		// Arrange
		rec := s.factory.Recipe(1, "eggs")
		require.NoError(s.T(), s.recipes.Create(s.ctx, rec))
		details := s.factory.Details("flour, sugar")
		details.Name = "Updated Cake"
		require.NoError(s.T(), rec.Update(details))

		// Act
		old, err := s.recipes.Update(s.ctx, rec, nil)

		// Assert
		require.NoError(s.T(), err)
		assert.Empty(s.T(), old)
		stored, err := s.recipes.FindByID(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "Updated Cake", stored.Name)
		assert.Equal(s.T(), "flour, sugar", stored.Ingredients)
	})

	s.Run("Update_UnknownRecipe_ShouldReturnNotFound", func() {
		rec := s.factory.Recipe(1, "eggs")
		rec.ID = 9999

		_, err := s.recipes.Update(s.ctx, rec, []recipe.Image{{Key: "orphan.png"}})

		assert.ErrorIs(s.T(), err, recipe.ErrRecipeNotFound)
		var images int64
		require.NoError(s.T(), s.db.Model(&gormrepo.RecipeImageModel{}).Where("recipe_id = ?", 9999).Count(&images).Error)
		assert.Zero(s.T(), images)
	})
}

func (s *RecipeRepositoryTestSuite) TestUpdateWithImages() {
	s.Run("Update_WithImages_ShouldReplaceImagesAndReturnOldKeys", func() {
		// Arrange
		rec := s.factory.Recipe(1, "eggs")
		rec.Images = []recipe.Image{{Key: "old.png"}}
		require.NoError(s.T(), s.recipes.Create(s.ctx, rec))
		images := []recipe.Image{{Key: "new-1.png"}, {Key: "new-2.png"}}

		// Act
		old, err := s.recipes.Update(s.ctx, rec, images)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), []string{"old.png"}, old)
		assert.NotZero(s.T(), images[0].ID)

		stored, err := s.recipes.FindByID(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), []string{"new-1.png", "new-2.png"}, stored.ImageKeys())
	})

	s.Run("Update_NilImages_ShouldKeepImages", func() {
		// Arrange
		rec := s.factory.Recipe(1, "eggs")
		rec.Images = []recipe.Image{{Key: "kept.png"}}
		require.NoError(s.T(), s.recipes.Create(s.ctx, rec))

		// Act
		old, err := s.recipes.Update(s.ctx, rec, nil)

		// Assert
		require.NoError(s.T(), err)
		assert.Empty(s.T(), old)
		stored, err := s.recipes.FindByID(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), []string{"kept.png"}, stored.ImageKeys())
	})
}

func (s *RecipeRepositoryTestSuite) TestDelete() {
	s.Run("Delete_Existing_ShouldReturnImageKeys", func() {
		// Arrange
		rec := s.factory.Recipe(1, "eggs")
		rec.Images = []recipe.Image{{Key: "gone.png"}}
		require.NoError(s.T(), s.recipes.Create(s.ctx, rec))

		// Act
		paths, err := s.recipes.Delete(s.ctx, rec.ID)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), []string{"gone.png"}, paths)
		exists, err := s.recipes.Exists(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.False(s.T(), exists)
	})

	s.Run("Delete_Unknown_ShouldReturnNotFound", func() {
		_, err := s.recipes.Delete(s.ctx, 9999)

		assert.ErrorIs(s.T(), err, recipe.ErrRecipeNotFound)
	})
}

func (s *RecipeRepositoryTestSuite) TestList() {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := s.createAt("Dessert", base)
	newest := s.createAt("Dessert", base.Add(2*time.Hour))
	lunch := s.createAt("Lunch", base.Add(time.Hour))

	s.Run("List_NoCategory_ShouldReturnNewestFirst", func() {
		recipes, err := s.recipes.List(s.ctx, "")

		require.NoError(s.T(), err)
		require.Len(s.T(), recipes, 3)
		assert.Equal(s.T(), []int64{newest.ID, lunch.ID, oldest.ID},
			[]int64{recipes[0].ID, recipes[1].ID, recipes[2].ID})
	})

	s.Run("List_Category_ShouldFilterExactly", func() {
		recipes, err := s.recipes.List(s.ctx, "Dessert")

		require.NoError(s.T(), err)
		require.Len(s.T(), recipes, 2)
		assert.Equal(s.T(), newest.ID, recipes[0].ID)
		assert.Equal(s.T(), oldest.ID, recipes[1].ID)
	})

	s.Run("List_UnknownCategory_ShouldReturnEmpty", func() {
		recipes, err := s.recipes.List(s.ctx, "dessert")

		require.NoError(s.T(), err)
		assert.Empty(s.T(), recipes)
	})

	s.Run("Count_ShouldReturnTotal", func() {
		count, err := s.recipes.Count(s.ctx)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), int64(3), count)
	})
}

func (s *RecipeRepositoryTestSuite) TestSeedRecipes() {
	s.Run("SeedRecipes_EmptyTable_ShouldInsertDefaults", func() {
		// Act
		inserted, err := gormrepo.SeedRecipes(s.ctx, s.db, 5)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), 9, inserted)

		recipes, err := s.recipes.List(s.ctx, "")
		require.NoError(s.T(), err)
		require.Len(s.T(), recipes, 9)
		assert.Equal(s.T(), "Fruit Salad", recipes[0].Name)
		assert.Equal(s.T(), "Fried Eggs", recipes[8].Name)
		assert.Equal(s.T(), int64(5), recipes[0].UserID)
	})

	s.Run("SeedRecipes_NonEmptyTable_ShouldSkip", func() {
		inserted, err := gormrepo.SeedRecipes(s.ctx, s.db, 5)

		require.NoError(s.T(), err)
		assert.Zero(s.T(), inserted)
	})
}

func TestRecipeRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeRepositoryTestSuite))
}
