package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zerowastechef/server/internal/application/user"
	"github.com/zerowastechef/server/internal/infrastructure/config"
	gormRepo "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
	"github.com/zerowastechef/server/internal/infrastructure/security"
	"github.com/zerowastechef/server/internal/testutil"
)

func TestModule_ShouldResolveDependencyGraph(t *testing.T) {
	err := fx.ValidateApp(Module)

	assert.NoError(t, err)
}

func TestPrepareData(t *testing.T) {
	setup := func(t *testing.T, seed bool) (*gorm.DB, *config.Config, *user.UserService) {
		db := testutil.NewTestDB(t)
		cfg := &config.Config{
			Auth: config.AuthConfig{
				Admin: config.AdminConfig{
					Username:   "chefadmin",
					Email:      "chefadmin@zerowastechef.test",
					Password:   "Admin#Pass1",
					Name:       "Chef",
					FamilyName: "Admin",
				},
			},
			Database: config.DatabaseConfig{Seed: seed},
		}
		service := user.NewUserService(user.Dependencies{
			Users:      gormRepo.NewUserRepository(db),
			Activities: gormRepo.NewActivityRepository(db),
			Tokens:     security.NewTokenService(config.AuthConfig{JWTSecret: "container-test"}),
			Hasher:     security.NewPasswordHasher(4),
			Metrics:    testutil.NopMetrics{},
		}, zap.NewNop())
		return db, cfg, service
	}

	ownedByAdmin := func(t *testing.T, db *gorm.DB) int64 {
		var count int64
		require.NoError(t, db.Model(&gormRepo.RecipeModel{}).
			Joins("JOIN users ON users.id = recipes.user_id").
			Where("users.username = ? AND users.role = ?", "chefadmin", "admin").
			Count(&count).Error)
		return count
	}

	t.Run("PrepareData_WithAdmin_ShouldSeedRecipesOwnedByAdmin", func(t *testing.T) {
		db, cfg, service := setup(t, true)

		require.NoError(t, PrepareData(cfg, zap.NewNop(), db, service))

		assert.Equal(t, int64(9), ownedByAdmin(t, db))
	})

	t.Run("PrepareData_SecondRun_ShouldNotDuplicate", func(t *testing.T) {
		db, cfg, service := setup(t, true)

		require.NoError(t, PrepareData(cfg, zap.NewNop(), db, service))
		require.NoError(t, PrepareData(cfg, zap.NewNop(), db, service))

		var total int64
		require.NoError(t, db.Model(&gormRepo.RecipeModel{}).Count(&total).Error)
		assert.Equal(t, int64(9), total)
	})

	t.Run("PrepareData_SeedDisabled_ShouldOnlyCreateAdmin", func(t *testing.T) {
		db, cfg, service := setup(t, false)

		require.NoError(t, PrepareData(cfg, zap.NewNop(), db, service))

		var users, recipes int64
		require.NoError(t, db.Model(&gormRepo.UserModel{}).Count(&users).Error)
		require.NoError(t, db.Model(&gormRepo.RecipeModel{}).Count(&recipes).Error)
		assert.Equal(t, int64(1), users)
		assert.Zero(t, recipes)
	})
}
