// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zerowastechef/server/internal/application/pantry"
	"github.com/zerowastechef/server/internal/application/recipe"
	"github.com/zerowastechef/server/internal/application/user"
	"github.com/zerowastechef/server/internal/infrastructure/config"
	"github.com/zerowastechef/server/internal/infrastructure/http/server"
	"github.com/zerowastechef/server/internal/infrastructure/monitoring"
	gormRepo "github.com/zerowastechef/server/internal/infrastructure/persistence/gorm"
	"github.com/zerowastechef/server/internal/infrastructure/persistence/memory"
	"github.com/zerowastechef/server/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/zerowastechef/server/internal/infrastructure/persistence/redis"
	"github.com/zerowastechef/server/internal/infrastructure/persistence/sqlite"
	"github.com/zerowastechef/server/internal/infrastructure/security"
	"github.com/zerowastechef/server/internal/infrastructure/storage"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
	"github.com/zerowastechef/server/pkg/healthcheck"
	"github.com/zerowastechef/server/pkg/logger"
)

// ConfigFileEnv names the environment variable holding an explicit config
// file path
const ConfigFileEnv = "ZWC_CONFIG_FILE"

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	StorageModule,
	ObservabilityModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigFileEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*logger.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
	func(log *logger.Logger) *zap.Logger {
		return log.Logger
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		switch cfg.Database.Driver {
		case "postgres":
			return postgres.Open(cfg, log)
		default:
			db, err := sqlite.SetupDatabase(cfg.Database, log)
			if err != nil {
				return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
			}
			return db, nil
		}
	},
	func(db *gorm.DB) (*sql.DB, error) {
		return db.DB()
	},
	NewQueryMonitor,
)

// NewQueryMonitor installs the query monitor plugin on db and exports the
// connection pool statistics
func NewQueryMonitor(cfg *config.Config, log *zap.Logger, db *gorm.DB, sqlDB *sql.DB, metrics *monitoring.Metrics) (*gormRepo.QueryMonitor, error) {
	monitor, err := gormRepo.NewQueryMonitor(log, metrics.Registry(), cfg.Database.SlowQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create query monitor: %w", err)
	}
	if err := db.Use(monitor); err != nil {
		return nil, fmt.Errorf("failed to install query monitor: %w", err)
	}
	if err := metrics.Registry().Register(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Driver)); err != nil {
		return nil, fmt.Errorf("failed to register db stats collector: %w", err)
	}
	return monitor, nil
}

// CacheModule provides caching. The Redis client is nil when Redis is
// disabled.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
		if !cfg.Redis.Enable {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		defer cancel()
		client, err := redisRepo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to Redis", zap.String("address", cfg.RedisAddr()))
		return client, nil
	},
	func(client *redis.Client, log *zap.Logger) outbound.CacheRepository {
		if client == nil {
			log.Info("Using in-memory cache")
			return memory.NewCacheRepository()
		}
		return redisRepo.NewCacheRepository(client, log)
	},
	func(cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) *recipe.ListCache {
		return recipe.NewListCache(cache, cfg.Cache.RecipeTTL, log)
	},
)

// StorageModule provides image storage
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.ImageStore, error) {
		return storage.New(context.Background(), cfg.Storage, log)
	},
)

// ObservabilityModule provides metrics, tracing and health checks
var ObservabilityModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*monitoring.Metrics, error) {
		return monitoring.NewMetrics(cfg.App, log)
	},
	func(m *monitoring.Metrics) outbound.MetricsRecorder {
		return m
	},
	func(cfg *config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
		return monitoring.NewTracerProvider(context.Background(), cfg, log)
	},
	NewHealthCheck,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewRecipeRepository,
	gormRepo.NewCommentRepository,
	gormRepo.NewVoteRepository,
	gormRepo.NewIngredientRepository,
	gormRepo.NewActivityRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config) *security.TokenService {
		return security.NewTokenService(cfg.Auth)
	},
	func(cfg *config.Config) outbound.PasswordHasher {
		return security.NewPasswordHasher(cfg.Auth.BCryptCost)
	},

	// User service
	func(p userServiceParams) *user.UserService {
		return user.NewUserService(user.Dependencies{
			Users:      p.Users,
			Activities: p.Activities,
			Tokens:     p.Tokens,
			Hasher:     p.Hasher,
			Images:     p.Images,
			Listings:   p.Listings,
			Metrics:    p.Metrics,
		}, p.Logger)
	},
	func(s *user.UserService) inbound.IdentityService {
		return s
	},

	// Recipe service
	func(p recipeServiceParams) inbound.RecipeService {
		return recipe.NewRecipeService(
			recipe.Repositories{
				Recipes:     p.Recipes,
				Comments:    p.Comments,
				Votes:       p.Votes,
				Ingredients: p.Ingredients,
			},
			p.Images,
			p.Listings,
			p.Metrics,
			p.Config.Storage.MaxFiles,
			p.Logger,
		)
	},

	// Pantry service
	fx.Annotate(
		pantry.NewPantryService,
		fx.As(new(inbound.PantryService)),
	),
)

type userServiceParams struct {
	fx.In

	Users      outbound.UserRepository
	Activities outbound.ActivityRepository
	Tokens     *security.TokenService
	Hasher     outbound.PasswordHasher
	Images     outbound.ImageStore
	Listings   *recipe.ListCache
	Metrics    outbound.MetricsRecorder
	Logger     *zap.Logger
}

type recipeServiceParams struct {
	fx.In

	Config      *config.Config
	Recipes     outbound.RecipeRepository
	Comments    outbound.CommentRepository
	Votes       outbound.VoteRepository
	Ingredients outbound.IngredientRepository
	Images      outbound.ImageStore
	Listings    *recipe.ListCache
	Metrics     outbound.MetricsRecorder
	Logger      *zap.Logger
}

type serverParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Users   inbound.IdentityService
	Recipes inbound.RecipeService
	Pantry  inbound.PantryService
	Tokens  *security.TokenService
	Roles   outbound.UserRepository
	Health  *healthcheck.HealthCheck
	Metrics *monitoring.Metrics
}

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(p serverParams) *server.Server {
		return server.NewServer(p.Config, p.Logger, server.Dependencies{
			Users:   p.Users,
			Recipes: p.Recipes,
			Pantry:  p.Pantry,
			Tokens:  p.Tokens,
			Roles:   p.Roles,
			Health:  p.Health,
			Metrics: p.Metrics,
		})
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	func(*gormRepo.QueryMonitor) {},
	PrepareData,
	WatchConfig,
	RegisterLifecycleHooks,
)

// NewHealthCheck registers the database, cache and upload checks
func NewHealthCheck(cfg *config.Config, log *zap.Logger, db *sql.DB, client *redis.Client) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.Register("database", healthcheck.NewDatabaseChecker(db))
	if client != nil {
		health.Register("redis", healthcheck.NewRedisChecker(client))
	}
	if cfg.Storage.Provider == "local" {
		health.Register("uploads", healthcheck.NewDirectoryChecker(cfg.Storage.LocalPath))
	}
	return health
}

// PrepareData ensures the configured administrator exists and seeds the
// default recipes into an empty database
func PrepareData(cfg *config.Config, log *zap.Logger, db *gorm.DB, users *user.UserService) error {
	ctx := context.Background()

	ownerID := int64(1)
	if admin := cfg.Auth.Admin; admin.Enabled() {
		id, err := users.BootstrapAdmin(ctx, inbound.RegisterCommand{
			Username:   admin.Username,
			Email:      admin.Email,
			Password:   admin.Password,
			Name:       admin.Name,
			FamilyName: admin.FamilyName,
		})
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		ownerID = id
	}

	if !cfg.Database.Seed {
		return nil
	}
	inserted, err := gormRepo.SeedRecipes(ctx, db, ownerID)
	if err != nil {
		log.Warn("Failed to seed database", zap.Error(err))
		return nil
	}
	if inserted > 0 {
		log.Info("Seeded default recipes", zap.Int("count", inserted), zap.Int64("owner_id", ownerID))
	}
	return nil
}

// WatchConfig applies log level changes from the config file at runtime
func WatchConfig(log *logger.Logger) error {
	return config.Watch(os.Getenv(ConfigFileEnv),
		func(cfg *config.Config) {
			level := logger.ParseLevel(cfg.App.LogLevel)
			if level != log.Level.Level() {
				log.Level.SetLevel(level)
				log.Info("Log level changed", zap.Stringer("level", level))
			}
		},
		func(err error) {
			log.Warn("Ignoring invalid configuration change", zap.Error(err))
		},
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
	DB        *sql.DB
	Cache     outbound.CacheRepository
	Redis     *redis.Client
	Tracer    *sdktrace.TracerProvider
	Metrics   *monitoring.Metrics
	Server    *server.Server
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(p lifecycleParams) {
	log := p.Logger

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Zero Waste Chef",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
				zap.String("database", p.Config.Database.Driver),
				zap.String("storage", p.Config.Storage.Provider),
			)

			return p.Server.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Zero Waste Chef")

			// Shutdown HTTP server
			if err := p.Server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := p.Tracer.Shutdown(ctx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}
			if err := p.Metrics.Shutdown(ctx); err != nil {
				log.Error("Failed to stop metrics provider", zap.Error(err))
			}

			if closer, ok := p.Cache.(io.Closer); ok {
				_ = closer.Close()
			}
			if p.Redis != nil {
				if err := p.Redis.Close(); err != nil {
					log.Error("Failed to close Redis client", zap.Error(err))
				}
			}

			// Close database connections
			if err := p.DB.Close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
