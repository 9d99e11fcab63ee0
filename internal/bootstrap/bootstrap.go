package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/config"
	"github.com/mioNacs/BLManagementSystem/internal/database"
	"github.com/mioNacs/BLManagementSystem/internal/handlers"
	"github.com/mioNacs/BLManagementSystem/internal/mailer"
	"github.com/mioNacs/BLManagementSystem/internal/middlewares"
	"github.com/mioNacs/BLManagementSystem/internal/repository"
	"github.com/mioNacs/BLManagementSystem/internal/routes"
	"github.com/mioNacs/BLManagementSystem/internal/services"
	"github.com/mioNacs/BLManagementSystem/internal/utils"
)

type AppContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sugar    *zap.SugaredLogger
	Mongo    *mongo.Client
	Redis    *redis.Client
	Auth     *handlers.AuthHandler
	Events   *handlers.EventHandler
	Guard    fiber.Handler
	Limiters routes.Limiters
}

type CleanupFn func(context.Context)

// Init builds every dependency from config and returns the wired app
// context plus a cleanup function for shutdown.
func Init(configPath string) (*AppContext, CleanupFn, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(cfg.IsProduction())
	sugar := logger.Sugar()
	sugar.Infof("Starting service in %s environment", cfg.App.Env)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout(), sugar)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ConnectTimeout(), sugar)
	if err != nil {
		sugar.Warnf("Redis unavailable, rate limiting disabled: %v", err)
		rdb = nil
	}

	userRepo := repository.NewMongoUserRepo(db, cfg.Collections.Users)
	eventRepo := repository.NewMongoEventRepo(db, cfg.Collections.Events)

	hasher := utils.NewPasswordHasher(cfg.Security.PasswordHashCost)
	tokens := utils.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTTLMinutes,
		cfg.JWT.RefreshTTLDays,
		cfg.JWT.ResetTTLMinutes,
	)
	mail := mailer.NewClient(cfg.Mailer.APIURL, cfg.Mailer.APIKey, cfg.Mailer.FromEmail, cfg.Mailer.FromName)
	if !mail.IsConfigured() {
		sugar.Warn("Mailer not configured. Password reset links will only be logged.")
	}

	authSvc := services.NewAuthService(userRepo, hasher, tokens, mail, cfg.App.FrontendURL, sugar)
	eventSvc := services.NewEventService(eventRepo)

	app := &AppContext{
		Config: cfg,
		Logger: logger,
		Sugar:  sugar,
		Mongo:  mongoClient,
		Redis:  rdb,
		Auth: handlers.NewAuthHandler(
			authSvc,
			sugar,
			cfg.IsProduction(),
			tokens.AccessTTL(),
			tokens.RefreshTTL(),
		),
		Events: handlers.NewEventHandler(eventSvc, sugar),
	}
	app.Guard = middlewares.RequireAuth(tokens, userRepo)

	if rdb != nil {
		app.Limiters = routes.Limiters{
			Register: middlewares.NewRateLimiter(rdb, "rl:register", cfg.Security.RegisterRateLimitPerHour, time.Hour).ByIP(),
			Login:    middlewares.NewRateLimiter(rdb, "rl:login", cfg.Security.LoginRateLimitPerMinute, time.Minute).ByIP(),
			Forgot:   middlewares.NewRateLimiter(rdb, "rl:forgot", cfg.Security.ForgotRateLimitPerHour, time.Hour).ByIP(),
		}
	}

	return app, func(ctx context.Context) {
		if cerr := logger.Sync(); cerr != nil {
			log.Printf("Logger sync error: %v", cerr)
		}
		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}
		if rdb != nil {
			if cerr := rdb.Close(); cerr != nil {
				sugar.Errorf("Redis client close error: %v", cerr)
			}
		}
	}, nil
}
