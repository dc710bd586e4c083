// Package user provides the application layer for accounts: registration,
// login, password reset, profiles, activity and moderation
package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/domain/activity"
	"github.com/zerowastechef/server/internal/domain/user"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
	apperrors "github.com/zerowastechef/server/pkg/errors"
	"github.com/zerowastechef/server/pkg/validation"
)

// ResetMessage is returned together with a reset token
const ResetMessage = "Reset link generated"

// CacheInvalidator drops cached recipe listings
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Dependencies groups the collaborators of UserService
type Dependencies struct {
	Users      outbound.UserRepository
	Activities outbound.ActivityRepository
	Tokens     outbound.TokenIssuer
	Hasher     outbound.PasswordHasher
	Images     outbound.ImageStore
	Listings   CacheInvalidator
	Metrics    outbound.MetricsRecorder
}

// UserService implements account use cases
type UserService struct {
	users      outbound.UserRepository
	activities outbound.ActivityRepository
	tokens     outbound.TokenIssuer
	hasher     outbound.PasswordHasher
	images     outbound.ImageStore
	listings   CacheInvalidator
	metrics    outbound.MetricsRecorder
	logger     *zap.Logger
}

var _ inbound.IdentityService = (*UserService)(nil)

// NewUserService creates a new user service
func NewUserService(deps Dependencies, logger *zap.Logger) *UserService {
	return &UserService{
		users:      deps.Users,
		activities: deps.Activities,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		images:     deps.Images,
		listings:   deps.Listings,
		metrics:    deps.Metrics,
		logger:     logger.Named("user-service"),
	}
}

// Register creates a standard account and returns a session token for it
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.AuthToken, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("hash password").WithCause(err)
	}

	newUser, err := user.NewUser(cmd.Username, cmd.Email, hash, user.Profile{
		Name:        cmd.Name,
		FamilyName:  cmd.FamilyName,
		PhoneNumber: cmd.PhoneNumber,
		Profession:  cmd.Profession,
		Age:         cmd.Age,
	})
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrDuplicateIdentity) {
			return nil, apperrors.NewDuplicateIdentityError()
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	token, err := s.tokens.Issue(newUser.ID(), newUser.Username())
	if err != nil {
		return nil, apperrors.NewInternalError("issue token").WithCause(err)
	}

	s.metrics.RecordRegistration(ctx)
	s.logger.Info("User registered",
		zap.Int64("user_id", newUser.ID()),
		zap.String("username", newUser.Username()),
	)

	return &inbound.AuthToken{Token: token}, nil
}

// Login checks a username or email and password. Unknown accounts and
// wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthToken, error) {
	if cmd.UsernameOrEmail == "" || cmd.Password == "" {
		s.metrics.RecordLogin(ctx, false)
		return nil, apperrors.NewInvalidCredentialsError()
	}

	found, err := s.users.FindByLogin(ctx, cmd.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.metrics.RecordLogin(ctx, false)
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, apperrors.NewDatabaseError("find user", err)
	}

	if err := s.hasher.Compare(found.PasswordHash(), cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.Int64("user_id", found.ID()))
		s.metrics.RecordLogin(ctx, false)
		return nil, apperrors.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(found.ID(), found.Username())
	if err != nil {
		return nil, apperrors.NewInternalError("issue token").WithCause(err)
	}

	s.metrics.RecordLogin(ctx, true)
	return &inbound.AuthToken{Token: token}, nil
}

// ForgotPassword issues a reset token for the account with the email. The
// token is returned to the caller; there is no mail delivery.
func (s *UserService) ForgotPassword(ctx context.Context, cmd inbound.ForgotPasswordCommand) (*inbound.ResetTicket, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	found, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, s.mapError("find user", err)
	}

	token, err := s.tokens.IssueReset(found.ID())
	if err != nil {
		return nil, apperrors.NewInternalError("issue reset token").WithCause(err)
	}

	s.logger.Info("Password reset requested", zap.Int64("user_id", found.ID()))
	return &inbound.ResetTicket{Message: ResetMessage, ResetToken: token}, nil
}

// ResetPassword replaces the password of the account named by the token
func (s *UserService) ResetPassword(ctx context.Context, cmd inbound.ResetPasswordCommand) error {
	if err := validation.Struct(cmd); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	userID, err := s.tokens.VerifyReset(cmd.Token)
	if err != nil {
		return apperrors.NewInvalidResetTokenError(err)
	}

	found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return apperrors.NewInvalidResetTokenError(err)
		}
		return apperrors.NewDatabaseError("find user", err)
	}

	hash, err := s.hasher.Hash(cmd.NewPassword)
	if err != nil {
		return apperrors.NewInternalError("hash password").WithCause(err)
	}
	if err := found.ChangePassword(hash); err != nil {
		return apperrors.NewInternalError("change password").WithCause(err)
	}

	if err := s.users.Update(ctx, found); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return apperrors.NewInvalidResetTokenError(err)
		}
		return apperrors.NewDatabaseError("update user", err)
	}

	s.logger.Info("Password reset", zap.Int64("user_id", found.ID()))
	return nil
}

// DeleteUser removes a standard account with everything it owns.
// Administrator accounts cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.mapError("find user", err)
	}
	if found.IsAdmin() {
		return apperrors.NewForbiddenError("Cannot delete an admin account")
	}

	keys, err := s.users.Delete(ctx, userID)
	if err != nil {
		return s.mapError("delete user", err)
	}

	for _, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete image", zap.String("key", key), zap.Error(err))
		}
	}
	s.listings.Invalidate(ctx)

	s.logger.Info("User deleted", zap.Int64("user_id", userID), zap.Int("images", len(keys)))
	return nil
}

// CheckDuplicates reports whether the username or email is taken. Empty
// fields are not checked.
func (s *UserService) CheckDuplicates(ctx context.Context, query inbound.DuplicateQuery) (*inbound.DuplicateCheck, error) {
	result := &inbound.DuplicateCheck{}

	if query.Username != "" {
		exists, err := s.exists(s.users.FindByUsername(ctx, query.Username))
		if err != nil {
			return nil, apperrors.NewDatabaseError("find user", err)
		}
		result.UsernameExists = exists
	}

	if query.Email != "" {
		exists, err := s.exists(s.users.FindByEmail(ctx, query.Email))
		if err != nil {
			return nil, apperrors.NewDatabaseError("find user", err)
		}
		result.EmailExists = exists
	}

	return result, nil
}

// GetProfile returns the caller's profile
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*inbound.UserDTO, error) {
	found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.mapError("find user", err)
	}

	dto := toDTO(found)
	return &dto, nil
}

// GetActivities returns the caller's votes, comments and recipes
func (s *UserService) GetActivities(ctx context.Context, userID int64) (*inbound.ActivityDTO, error) {
	log, err := s.activities.ForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load activities", err)
	}
	return toActivityDTO(log), nil
}

// GetAllActivities returns the activity of every account
func (s *UserService) GetAllActivities(ctx context.Context) (*inbound.ActivityDTO, error) {
	log, err := s.activities.All(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load activities", err)
	}
	return toActivityDTO(log), nil
}

// ListUsers returns every account
func (s *UserService) ListUsers(ctx context.Context) ([]inbound.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}

	dtos := make([]inbound.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toDTO(u))
	}
	return dtos, nil
}

// BootstrapAdmin ensures an administrator account exists. An existing
// account with the username is promoted; its password is left unchanged.
func (s *UserService) BootstrapAdmin(ctx context.Context, cmd inbound.RegisterCommand) (int64, error) {
	existing, err := s.users.FindByUsername(ctx, cmd.Username)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing.ID(), nil
		}
		existing.PromoteToAdmin()
		if err := s.users.Update(ctx, existing); err != nil {
			return 0, apperrors.NewDatabaseError("promote admin", err)
		}
		s.logger.Info("Promoted existing account to admin", zap.Int64("user_id", existing.ID()))
		return existing.ID(), nil
	case !errors.Is(err, user.ErrUserNotFound):
		return 0, apperrors.NewDatabaseError("find admin", err)
	}

	if !validation.ValidPassword(cmd.Password) {
		s.logger.Warn("Configured admin password does not meet the password rule")
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return 0, apperrors.NewInternalError("hash password").WithCause(err)
	}

	admin, err := user.NewUser(cmd.Username, cmd.Email, hash, user.Profile{
		Name:       cmd.Name,
		FamilyName: cmd.FamilyName,
	})
	if err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	admin.PromoteToAdmin()

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, user.ErrDuplicateIdentity) {
			return 0, apperrors.NewDuplicateIdentityError()
		}
		return 0, apperrors.NewDatabaseError("create admin", err)
	}

	s.logger.Info("Admin account created", zap.Int64("user_id", admin.ID()))
	return admin.ID(), nil
}

func (s *UserService) exists(_ *user.User, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, user.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

func (s *UserService) mapError(operation string, err error) error {
	if errors.Is(err, user.ErrUserNotFound) {
		return apperrors.NewNotFoundError("user")
	}
	return apperrors.NewDatabaseError(operation, err)
}

func toDTO(u *user.User) inbound.UserDTO {
	profile := u.Profile()
	return inbound.UserDTO{
		ID:          u.ID(),
		Username:    u.Username(),
		Email:       u.Email(),
		Name:        profile.Name,
		FamilyName:  profile.FamilyName,
		PhoneNumber: profile.PhoneNumber,
		Profession:  profile.Profession,
		Age:         profile.Age,
		Role:        string(u.Role()),
	}
}

func toActivityDTO(log *activity.Log) *inbound.ActivityDTO {
	dto := &inbound.ActivityDTO{
		Likes:    make([]inbound.LikeActivity, 0, len(log.Likes)),
		Comments: make([]inbound.CommentActivity, 0, len(log.Comments)),
		Recipes:  make([]inbound.RecipeActivity, 0, len(log.Recipes)),
	}

	for _, l := range log.Likes {
		dto.Likes = append(dto.Likes, inbound.LikeActivity{UserID: l.UserID, RecipeID: l.RecipeID, IsLike: l.IsLike})
	}
	for _, c := range log.Comments {
		dto.Comments = append(dto.Comments, inbound.CommentActivity{
			UserID:    c.UserID,
			RecipeID:  c.RecipeID,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.UTC().Format(inbound.TimestampLayout),
		})
	}
	for _, r := range log.Recipes {
		dto.Recipes = append(dto.Recipes, inbound.RecipeActivity{UserID: r.UserID, ID: r.ID, Name: r.Name})
	}
	return dto
}
