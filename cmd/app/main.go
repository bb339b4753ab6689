package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "rewards-mini-app-backend/docs"
	"rewards-mini-app-backend/internal/common/cache"
	"rewards-mini-app-backend/internal/common/config"
	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/common/metrics"
	"rewards-mini-app-backend/internal/common/middleware"
	raffleHttp "rewards-mini-app-backend/internal/features/raffle/delivery/http"
	raffleRedis "rewards-mini-app-backend/internal/features/raffle/repository/redis"
	raffleService "rewards-mini-app-backend/internal/features/raffle/service"
	referralHttp "rewards-mini-app-backend/internal/features/referral/delivery/http"
	referralRedis "rewards-mini-app-backend/internal/features/referral/repository/redis"
	referralService "rewards-mini-app-backend/internal/features/referral/service"
	taskHttp "rewards-mini-app-backend/internal/features/task/delivery/http"
	taskRedis "rewards-mini-app-backend/internal/features/task/repository/redis"
	taskService "rewards-mini-app-backend/internal/features/task/service"
	userHttp "rewards-mini-app-backend/internal/features/user/delivery/http"
	userRedis "rewards-mini-app-backend/internal/features/user/repository/redis"
	userService "rewards-mini-app-backend/internal/features/user/service"
	"rewards-mini-app-backend/internal/platform/redis"
)

// @title           Rewards Mini App API
// @version         1.0
// @description     API server for a Telegram Mini App points and rewards program. All endpoints require init data authentication.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name x-telegram-init-data
// @description Telegram Mini App init data string for authentication

// @tag.name users
// @tag.description Учетные записи и журнал баллов

// @tag.name points
// @tag.description Внешний контракт чтения и начисления баллов

// @tag.name referrals
// @tag.description Реферальная программа

// @tag.name raffles
// @tag.description Розыгрыши с взносом за участие

// @tag.name tasks
// @tag.description Задания с наградой за выполнение

func main() {
	cfg := config.Load()

	logger.Init("rewards-mini-app-backend", cfg.Debug)
	log := logger.With("main")

	log.Info().
		Str("version", "1.0.0").
		Bool("debug", cfg.Debug).
		Msg("starting rewards backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	cacheService := cache.NewCacheService(redisClient)

	// Репозитории
	userRepository := userRedis.NewUserRepository(redisClient)
	codeRepository := referralRedis.NewCodeRepository(redisClient)
	raffleRepository := raffleRedis.NewRaffleRepository(redisClient)
	taskRepository := taskRedis.NewTaskRepository(redisClient)

	// Сервисы
	userSvc := userService.NewUserService(userRepository)
	referralSvc := referralService.NewReferralService(codeRepository, userRepository, referralService.Rewards{
		InviterBonus: cfg.Rewards.InviterBonus,
		InviteeBonus: cfg.Rewards.InviteeBonus,
	})
	raffleSvc := raffleService.NewRaffleService(raffleRepository, cacheService, cfg.Cache.RaffleTTL)
	taskSvc := taskService.NewTaskService(taskRepository, cacheService, cfg.Cache.TaskTTL)

	// Фоновое закрытие просроченных розыгрышей
	expiration := raffleService.NewExpirationService(raffleRepository, raffleSvc, cfg.Raffle.SweepInterval)
	expiration.Start()
	defer expiration.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger.With("http")))
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.HeaderInitData}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, redisClient,
		userHttp.NewUserHandler(userSvc),
		referralHttp.NewReferralHandler(referralSvc),
		raffleHttp.NewRaffleHandler(raffleSvc),
		taskHttp.NewTaskHandler(taskSvc),
		middleware.AutoCreateUser(userSvc))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	redisClient *redis.Client,
	userHandler *userHttp.UserHandler,
	referralHandler *referralHttp.ReferralHandler,
	raffleHandler *raffleHttp.RaffleHandler,
	taskHandler *taskHttp.TaskHandler,
	autoCreateUser gin.HandlerFunc,
) {
	auth := middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Debug)
	requireAdmin := middleware.RequireAdmin(cfg.Telegram.AdminIDs)

	// Внешний контракт баллов
	api := router.Group("/api")
	api.Use(auth, middleware.RequireAuth(), autoCreateUser)
	{
		userHandler.RegisterPointsRoutes(api)
	}

	v1 := router.Group("/api/v1")
	v1.Use(auth, middleware.RequireAuth(), autoCreateUser)
	{
		userHandler.RegisterRoutes(v1)
		referralHandler.RegisterRoutes(v1)
		raffleHandler.RegisterRoutes(v1, requireAdmin)
		taskHandler.RegisterRoutes(v1, requireAdmin)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "rewards-mini-app-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "rewards-mini-app-backend",
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
