// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/zerowastechef/server/internal/domain/pantry"
	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	profile := u.Profile()
	return &UserModel{
		ID:          u.ID(),
		Username:    u.Username(),
		Email:       u.Email(),
		Password:    u.PasswordHash(),
		Name:        profile.Name,
		FamilyName:  profile.FamilyName,
		PhoneNumber: optional(profile.PhoneNumber),
		Profession:  optional(profile.Profession),
		Age:         profile.Age,
		Role:        string(u.Role()),
		CreatedAt:   u.CreatedAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(m *UserModel) *user.User {
	profile := user.Profile{
		Name:        m.Name,
		FamilyName:  m.FamilyName,
		PhoneNumber: deref(m.PhoneNumber),
		Profession:  deref(m.Profession),
		Age:         m.Age,
	}
	role := user.Role(m.Role)
	if role == "" {
		role = user.RoleStandard
	}
	return user.Reconstitute(m.ID, m.Username, m.Email, m.Password, profile, role, m.CreatedAt)
}

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	model := &RecipeModel{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Category:     r.Category,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		DietaryInfo:  optional(r.DietaryInfo),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		CreatedAt:    r.CreatedAt,
	}
	for _, img := range r.Images {
		model.Images = append(model.Images, RecipeImageModel{ID: img.ID, RecipeID: r.ID, Path: img.Key})
	}
	return model
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) recipe.Recipe {
	r := recipe.Recipe{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Category:     m.Category,
		Ingredients:  m.Ingredients,
		Instructions: m.Instructions,
		DietaryInfo:  deref(m.DietaryInfo),
		PrepTime:     m.PrepTime,
		CookTime:     m.CookTime,
		CreatedAt:    m.CreatedAt,
		Images:       make([]recipe.Image, 0, len(m.Images)),
	}
	for _, img := range m.Images {
		r.Images = append(r.Images, recipe.Image{ID: img.ID, RecipeID: img.RecipeID, Key: img.Path})
	}
	return r
}

// ModelToIngredient converts a GORM model to a pantry entry
func ModelToIngredient(m *IngredientModel) pantry.Ingredient {
	return pantry.Ingredient{
		ID:             m.ID,
		UserID:         m.UserID,
		Name:           m.Name,
		ExpirationDate: m.ExpirationDate,
	}
}

// ModelToComment converts a GORM model to a domain comment
func ModelToComment(m *CommentModel) recipe.Comment {
	return recipe.Comment{
		ID:        m.ID,
		UserID:    m.UserID,
		RecipeID:  m.RecipeID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
