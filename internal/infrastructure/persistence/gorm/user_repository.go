// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/zerowastechef/server/internal/domain/user"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

const pgUniqueViolation = "23505"

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateIdentity
		}
		return err
	}

	u.AssignID(model.ID)
	return nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", u.ID()).Updates(map[string]interface{}{
		"password":     model.Password,
		"name":         model.Name,
		"family_name":  model.FamilyName,
		"phone_number": model.PhoneNumber,
		"profession":   model.Profession,
		"age":          model.Age,
		"role":         model.Role,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// Delete deletes a user together with the recipes, images, comments, votes
// and ingredients that depend on it
func (r *UserRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return user.ErrUserNotFound
		}

		var recipeIDs []int64
		if err := tx.Model(&RecipeModel{}).Where("user_id = ?", id).Pluck("id", &recipeIDs).Error; err != nil {
			return err
		}

		if len(recipeIDs) > 0 {
			if err := tx.Model(&RecipeImageModel{}).Where("recipe_id IN ?", recipeIDs).Pluck("path", &paths).Error; err != nil {
				return err
			}
			if err := tx.Where("recipe_id IN ?", recipeIDs).Delete(&RecipeImageModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("recipe_id IN ?", recipeIDs).Delete(&CommentModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("recipe_id IN ?", recipeIDs).Delete(&LikeModel{}).Error; err != nil {
				return err
			}
		}

		steps := []struct {
			model interface{}
			query string
		}{
			{&CommentModel{}, "user_id = ?"},
			{&LikeModel{}, "user_id = ?"},
			{&IngredientModel{}, "user_id = ?"},
			{&RecipeModel{}, "user_id = ?"},
			{&UserModel{}, "id = ?"},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, id).Delete(step.model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByLogin finds a user whose username or email equals identifier
func (r *UserRepository) FindByLogin(ctx context.Context, identifier string) (*user.User, error) {
	return r.findOne(ctx, "username = ? OR email = ?", identifier, identifier)
}

// List returns all users ordered by ID
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var models []UserModel

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, ModelToUser(&models[i]))
	}

	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// isUniqueViolation recognises unique constraint failures of SQLite and
// PostgreSQL
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
