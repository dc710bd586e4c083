// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"io"
)

// IdentityService defines the account use cases
type IdentityService interface {
	// Commands
	Register(ctx context.Context, cmd RegisterCommand) (*AuthToken, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthToken, error)
	ForgotPassword(ctx context.Context, cmd ForgotPasswordCommand) (*ResetTicket, error)
	ResetPassword(ctx context.Context, cmd ResetPasswordCommand) error
	DeleteUser(ctx context.Context, userID int64) error

	// Queries
	CheckDuplicates(ctx context.Context, query DuplicateQuery) (*DuplicateCheck, error)
	GetProfile(ctx context.Context, userID int64) (*UserDTO, error)
	GetActivities(ctx context.Context, userID int64) (*ActivityDTO, error)
	GetAllActivities(ctx context.Context) (*ActivityDTO, error)
	ListUsers(ctx context.Context) ([]UserDTO, error)
}

// RecipeService defines the recipe, comment and vote use cases
type RecipeService interface {
	// Recipes
	ListRecipes(ctx context.Context, category string) ([]RecipeDTO, error)
	CreateRecipe(ctx context.Context, cmd RecipeCommand) (int64, error)
	UpdateRecipe(ctx context.Context, cmd RecipeCommand) error
	DeleteRecipe(ctx context.Context, recipeID int64) error
	SuggestRecipes(ctx context.Context, userID int64, search string) ([]RecipeDTO, error)

	// Comments
	AddComment(ctx context.Context, cmd CommentCommand) (int64, error)
	ListComments(ctx context.Context, recipeID int64) ([]CommentDTO, error)

	// Votes
	Vote(ctx context.Context, cmd VoteCommand) error
	GetVote(ctx context.Context, userID, recipeID int64) (*VoteStatusDTO, error)
	CountVotes(ctx context.Context, recipeID int64) (*VoteCountsDTO, error)
}

// PantryService defines the ingredient inventory use cases
type PantryService interface {
	AddIngredient(ctx context.Context, cmd IngredientCommand) (int64, error)
	ListIngredients(ctx context.Context, userID int64) ([]IngredientDTO, error)
}

// Command objects for operations

// RegisterCommand contains user registration data
type RegisterCommand struct {
	Username    string `json:"username" validate:"required,min=4"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
	Name        string `json:"name" validate:"required"`
	FamilyName  string `json:"family_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Profession  string `json:"profession"`
	Age         *int   `json:"age" validate:"omitempty,min=0"`
}

// LoginCommand accepts either a username or an email as identifier
type LoginCommand struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// ForgotPasswordCommand requests a reset token
type ForgotPasswordCommand struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordCommand replaces a password using a reset token
type ResetPasswordCommand struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// DuplicateQuery checks identity availability
type DuplicateQuery struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RecipeCommand contains the fields of a created or updated recipe.
// RecipeID is only used for updates.
type RecipeCommand struct {
	RecipeID     int64         `json:"-" form:"-"`
	UserID       int64         `json:"-" form:"-"`
	Name         string        `json:"name" form:"name" validate:"required"`
	Category     string        `json:"category" form:"category" validate:"required"`
	Ingredients  string        `json:"ingredients" form:"ingredients" validate:"required"`
	Instructions string        `json:"instructions" form:"instructions" validate:"required"`
	DietaryInfo  string        `json:"dietary_info" form:"dietary_info"`
	PrepTime     *int          `json:"prep_time" form:"prep_time" validate:"omitempty,min=0"`
	CookTime     *int          `json:"cook_time" form:"cook_time" validate:"omitempty,min=0"`
	Images       []ImageUpload `json:"-" form:"-"`
}

// ImageUpload is one uploaded recipe picture
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// CommentCommand adds a comment to a recipe
type CommentCommand struct {
	UserID   int64  `json:"-"`
	RecipeID int64  `json:"recipe_id" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// VoteCommand records a like (true) or dislike (false)
type VoteCommand struct {
	UserID   int64 `json:"-"`
	RecipeID int64 `json:"recipe_id" validate:"required"`
	IsLike   *bool `json:"is_like" validate:"required"`
}

// IngredientCommand adds a pantry entry
type IngredientCommand struct {
	UserID         int64  `json:"-"`
	Name           string `json:"name" validate:"required"`
	ExpirationDate string `json:"expiration_date"`
}

// DTOs for responses

// AuthToken carries a session token
type AuthToken struct {
	Token string `json:"token"`
}

// ResetTicket carries a password reset token
type ResetTicket struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

// DuplicateCheck reports which identifiers are taken
type DuplicateCheck struct {
	UsernameExists bool `json:"usernameExists"`
	EmailExists    bool `json:"emailExists"`
}

// UserDTO represents a user profile. The password hash is never exposed.
type UserDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	FamilyName  string `json:"family_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Profession  string `json:"profession,omitempty"`
	Age         *int   `json:"age"`
	Role        string `json:"role"`
}

// RecipeDTO represents a recipe with the public URLs of its images
type RecipeDTO struct {
	ID           int64    `json:"id"`
	UserID       int64    `json:"user_id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Ingredients  string   `json:"ingredients"`
	Instructions string   `json:"instructions"`
	DietaryInfo  string   `json:"dietary_info"`
	PrepTime     *int     `json:"prep_time"`
	CookTime     *int     `json:"cook_time"`
	CreatedAt    string   `json:"created_at"`
	Images       []string `json:"images"`
}

// CommentDTO represents a comment
type CommentDTO struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	RecipeID  int64  `json:"recipe_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// VoteStatusDTO holds the caller's vote; Liked is null when there is none
type VoteStatusDTO struct {
	Liked *bool `json:"liked"`
}

// VoteCountsDTO aggregates the votes of a recipe
type VoteCountsDTO struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// IngredientDTO represents a pantry entry
type IngredientDTO struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Name           string  `json:"name"`
	ExpirationDate *string `json:"expiration_date"`
}

// ActivityDTO lists votes, comments and recipes
type ActivityDTO struct {
	Likes    []LikeActivity    `json:"likes"`
	Comments []CommentActivity `json:"comments"`
	Recipes  []RecipeActivity  `json:"recipes"`
}

// LikeActivity is a recorded vote
type LikeActivity struct {
	UserID   int64 `json:"user_id"`
	RecipeID int64 `json:"recipe_id"`
	IsLike   bool  `json:"is_like"`
}

// CommentActivity is a written comment
type CommentActivity struct {
	UserID    int64  `json:"user_id"`
	RecipeID  int64  `json:"recipe_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// RecipeActivity is a shared recipe
type RecipeActivity struct {
	UserID int64  `json:"user_id"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
}

// TimestampLayout formats created_at values in responses
const TimestampLayout = "2006-01-02 15:04:05"
