// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Username    string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email       string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string  `gorm:"type:varchar(255);not null"`
	Name        string  `gorm:"type:varchar(255);not null"`
	FamilyName  string  `gorm:"type:varchar(255);not null"`
	PhoneNumber *string `gorm:"type:varchar(50)"`
	Profession  *string `gorm:"type:varchar(255)"`
	Age         *int
	Role        string `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt   time.Time
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	UserID       int64   `gorm:"not null;index"`
	Name         string  `gorm:"type:varchar(255);not null"`
	Category     string  `gorm:"type:varchar(255);not null;index"`
	Ingredients  string  `gorm:"type:text;not null"`
	Instructions string  `gorm:"type:text;not null"`
	DietaryInfo  *string `gorm:"type:text"`
	PrepTime     *int
	CookTime     *int
	CreatedAt    time.Time `gorm:"index"`

	// Relationships
	Images []RecipeImageModel `gorm:"foreignKey:RecipeID"`
}

// TableName specifies the table name for RecipeModel
func (RecipeModel) TableName() string {
	return "recipes"
}

// RecipeImageModel stores the storage key of an uploaded recipe image
type RecipeImageModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	RecipeID int64  `gorm:"not null;index"`
	Path     string `gorm:"type:text;not null"`
}

// TableName specifies the table name for RecipeImageModel
func (RecipeImageModel) TableName() string {
	return "recipe_images"
}

// IngredientModel represents a pantry entry
type IngredientModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         int64  `gorm:"not null;index"`
	Name           string `gorm:"type:varchar(255);not null"`
	ExpirationDate *time.Time
}

// TableName specifies the table name for IngredientModel
func (IngredientModel) TableName() string {
	return "ingredients"
}

// CommentModel represents recipe comments
type CommentModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null;index"`
	RecipeID  int64  `gorm:"not null;index"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for CommentModel
func (CommentModel) TableName() string {
	return "comments"
}

// LikeModel represents a like or dislike. There is one row per user and
// recipe.
type LikeModel struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"not null;uniqueIndex:idx_likes_user_recipe"`
	RecipeID int64 `gorm:"not null;uniqueIndex:idx_likes_user_recipe;index"`
	IsLike   bool  `gorm:"not null"`
}

// TableName specifies the table name for LikeModel
func (LikeModel) TableName() string {
	return "likes"
}

// AllModels lists every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&RecipeModel{},
		&RecipeImageModel{},
		&IngredientModel{},
		&CommentModel{},
		&LikeModel{},
	}
}
