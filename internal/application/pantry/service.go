// Package pantry provides the application layer for the ingredient inventory
package pantry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/domain/pantry"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
	apperrors "github.com/zerowastechef/server/pkg/errors"
	"github.com/zerowastechef/server/pkg/validation"
)

// PantryService implements the pantry use cases
type PantryService struct {
	ingredients outbound.IngredientRepository
	logger      *zap.Logger
}

var _ inbound.PantryService = (*PantryService)(nil)

// NewPantryService creates a new pantry service
func NewPantryService(ingredients outbound.IngredientRepository, logger *zap.Logger) *PantryService {
	return &PantryService{
		ingredients: ingredients,
		logger:      logger.Named("pantry-service"),
	}
}

// AddIngredient stores a pantry entry for the caller
func (s *PantryService) AddIngredient(ctx context.Context, cmd inbound.IngredientCommand) (int64, error) {
	if err := validation.Struct(cmd); err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}

	ing, err := pantry.NewIngredient(cmd.UserID, cmd.Name, cmd.ExpirationDate)
	if err != nil {
		if errors.Is(err, pantry.ErrInvalidExpirationDate) || errors.Is(err, pantry.ErrEmptyName) {
			return 0, apperrors.NewValidationError(err.Error())
		}
		return 0, apperrors.Wrap(err, "create ingredient")
	}

	if err := s.ingredients.Create(ctx, ing); err != nil {
		return 0, apperrors.NewDatabaseError("create ingredient", err)
	}

	s.logger.Debug("Ingredient added", zap.Int64("user_id", ing.UserID), zap.Int64("ingredient_id", ing.ID))
	return ing.ID, nil
}

// ListIngredients returns the caller's pantry
func (s *PantryService) ListIngredients(ctx context.Context, userID int64) ([]inbound.IngredientDTO, error) {
	items, err := s.ingredients.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list ingredients", err)
	}

	dtos := make([]inbound.IngredientDTO, 0, len(items))
	for _, item := range items {
		dto := inbound.IngredientDTO{
			ID:     item.ID,
			UserID: item.UserID,
			Name:   item.Name,
		}
		if item.ExpirationDate != nil {
			date := item.ExpirationDate.Format(pantry.DateLayout)
			dto.ExpirationDate = &date
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
