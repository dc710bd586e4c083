// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/zerowastechef/server/internal/domain/activity"
	"github.com/zerowastechef/server/internal/domain/pantry"
	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/domain/user"
)

var (
	// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
	ErrCacheMiss = errors.New("cache miss")
	// ErrUnsupportedImageType is returned by ImageStore.Save for content
	// types that are not accepted
	ErrUnsupportedImageType = errors.New("only image files are allowed")
)

// UserRepository defines the interface for identity persistence.
// Lookups return user.ErrUserNotFound when nothing matches.
type UserRepository interface {
	// Create stores a new user and assigns its ID. A taken username or
	// email yields user.ErrDuplicateIdentity.
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	// FindByLogin matches the identifier against username or email
	FindByLogin(ctx context.Context, identifier string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	// Delete removes the user with every record that depends on it and
	// returns the storage keys of the images that were detached.
	Delete(ctx context.Context, id int64) ([]string, error)
}

// RecipeRepository defines the interface for recipe persistence.
// Lookups return recipe.ErrRecipeNotFound when nothing matches.
type RecipeRepository interface {
	// Create stores the recipe with its images and assigns IDs
	Create(ctx context.Context, r *recipe.Recipe) error
	// Update stores the editable fields of an existing recipe. A non-nil
	// images slice atomically replaces the stored images; the old keys are
	// returned.
	Update(ctx context.Context, r *recipe.Recipe, images []recipe.Image) ([]string, error)
	// Delete removes the recipe with its images, comments and votes and
	// returns the storage keys of the removed images.
	Delete(ctx context.Context, id int64) ([]string, error)
	FindByID(ctx context.Context, id int64) (*recipe.Recipe, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// List returns recipes newest first, optionally limited to one category
	List(ctx context.Context, category string) ([]recipe.Recipe, error)
	// Count returns the number of stored recipes
	Count(ctx context.Context) (int64, error)
}

// IngredientRepository defines the interface for pantry persistence
type IngredientRepository interface {
	Create(ctx context.Context, ing *pantry.Ingredient) error
	ListByUser(ctx context.Context, userID int64) ([]pantry.Ingredient, error)
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	Create(ctx context.Context, c *recipe.Comment) error
	ListByRecipe(ctx context.Context, recipeID int64) ([]recipe.Comment, error)
}

// VoteRepository defines the interface for like/dislike persistence
type VoteRepository interface {
	// Upsert records the vote, replacing an earlier vote of the same user
	Upsert(ctx context.Context, v recipe.Vote) error
	// Find returns nil when the user has not voted on the recipe
	Find(ctx context.Context, userID, recipeID int64) (*recipe.Vote, error)
	Count(ctx context.Context, recipeID int64) (recipe.VoteCounts, error)
}

// ActivityRepository reads activity logs
type ActivityRepository interface {
	ForUser(ctx context.Context, userID int64) (*activity.Log, error)
	All(ctx context.Context) (*activity.Log, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Set operations
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// ImageStore defines the interface for recipe image storage
type ImageStore interface {
	// Save stores the content under a generated key derived from filename
	Save(ctx context.Context, filename, contentType string, content io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of a stored image
	URL(key string) string
}

// MetricsRecorder records business events
type MetricsRecorder interface {
	RecordRegistration(ctx context.Context)
	RecordLogin(ctx context.Context, success bool)
	RecordVote(ctx context.Context, isLike bool)
	RecordRecipeCreated(ctx context.Context)
}

// TokenIssuer signs and checks identity tokens
type TokenIssuer interface {
	// Issue signs a session token for the identity
	Issue(userID int64, username string) (string, error)
	// IssueReset signs a password reset token carrying only the identity id
	IssueReset(userID int64) (string, error)
	// VerifyReset returns the identity id of a valid reset token
	VerifyReset(token string) (int64, error)
}

// PasswordHasher hashes and compares passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
