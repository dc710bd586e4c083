package recipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/zerowastechef/server/internal/domain/pantry"
)

type SuggestTestSuite struct {
	suite.Suite
	now time.Time
}

func (s *SuggestTestSuite) SetupTest() {
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *SuggestTestSuite) recipe(id int64, ingredients string, created time.Time) Recipe {
	return Recipe{ID: id, Name: "r", Ingredients: ingredients, CreatedAt: created}
}

func ids(recipes []Recipe) []int64 {
	out := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func (s *SuggestTestSuite) TestMatching() {
	s.Run("Suggest_PluralToken_ShouldNotMatchSingularPantryItem", func() {
		// Arrange
		candidates := []Recipe{
			s.recipe(1, "1-2 eggs, butter", s.now),
			s.recipe(2, "flour, sugar", s.now),
		}
		items := []pantry.Ingredient{{Name: "egg"}}

		// Act
		got := Suggest(candidates, items, "", s.now)

		// Assert
		assert.Empty(s.T(), got)
	})

	s.Run("Suggest_ExactTokenCaseInsensitive_ShouldMatch", func() {
		candidates := []Recipe{
			s.recipe(1, "1-2 eggs, Butter", s.now),
			s.recipe(2, "flour, sugar", s.now),
		}
		items := []pantry.Ingredient{{Name: "BUTTER"}}

		got := Suggest(candidates, items, "", s.now)

		assert.Equal(s.T(), []int64{1}, ids(got))
	})

	s.Run("Suggest_SearchTerm_ShouldMatchSubstring", func() {
		candidates := []Recipe{
			s.recipe(1, "1-2 eggs, butter", s.now),
			s.recipe(2, "flour, sugar", s.now),
		}

		got := Suggest(candidates, nil, "EGG", s.now)

		assert.Equal(s.T(), []int64{1}, ids(got))
	})

	s.Run("Suggest_EmptySearchAndEmptyPantry_ShouldReturnNothing", func() {
		candidates := []Recipe{s.recipe(1, "flour, sugar", s.now)}

		got := Suggest(candidates, nil, "", s.now)

		assert.Empty(s.T(), got)
	})

	s.Run("Suggest_TokensAreNotTrimmed_ShouldRequireCommaSpace", func() {
		candidates := []Recipe{s.recipe(1, "flour,sugar", s.now)}
		items := []pantry.Ingredient{{Name: "sugar"}}

		got := Suggest(candidates, items, "", s.now)

		assert.Empty(s.T(), got)
	})
}

func (s *SuggestTestSuite) TestOrdering() {
	s.Run("Suggest_NoExpiringItems_ShouldOrderNewestFirst", func() {
		// Arrange
		candidates := []Recipe{
			s.recipe(1, "rice", s.now.Add(-72*time.Hour)),
			s.recipe(2, "rice", s.now.Add(-1*time.Hour)),
			s.recipe(3, "rice", s.now.Add(-24*time.Hour)),
		}
		items := []pantry.Ingredient{{Name: "rice"}}

		// Act
		got := Suggest(candidates, items, "", s.now)

		// Assert
		assert.Equal(s.T(), []int64{2, 3, 1}, ids(got))
	})

	s.Run("Suggest_ExpiringItemInPantry_ShouldNotChangeRelativeOrder", func() {
		soon := s.now.Add(48 * time.Hour)
		candidates := []Recipe{
			s.recipe(1, "milk", s.now.Add(-72*time.Hour)),
			s.recipe(2, "rice", s.now.Add(-1*time.Hour)),
		}
		items := []pantry.Ingredient{
			{Name: "milk", ExpirationDate: &soon},
			{Name: "rice"},
		}

		got := Suggest(candidates, items, "", s.now)

		// the recipe using the expiring milk is not promoted
		assert.Equal(s.T(), []int64{2, 1}, ids(got))
	})

	s.Run("Suggest_MissingCreationTime_ShouldSortAsOldest", func() {
		candidates := []Recipe{
			s.recipe(1, "rice", time.Time{}),
			s.recipe(2, "rice", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)),
		}
		items := []pantry.Ingredient{{Name: "rice"}}

		got := Suggest(candidates, items, "", s.now)

		assert.Equal(s.T(), []int64{2, 1}, ids(got))
	})

	s.Run("Suggest_EqualTimestamps_ShouldKeepInputOrder", func() {
		candidates := []Recipe{
			s.recipe(5, "rice", s.now),
			s.recipe(4, "rice", s.now),
		}
		items := []pantry.Ingredient{{Name: "rice"}}

		got := Suggest(candidates, items, "", s.now)

		assert.Equal(s.T(), []int64{5, 4}, ids(got))
	})
}

func TestSuggestTestSuite(t *testing.T) {
	suite.Run(t, new(SuggestTestSuite))
}
