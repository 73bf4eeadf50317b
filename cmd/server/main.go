package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/cache"
	"lakbay.com/lakbaypoints/internal/config"
	"lakbay.com/lakbaypoints/internal/event"
	"lakbay.com/lakbaypoints/internal/handler"
	"lakbay.com/lakbaypoints/internal/middleware"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, running without cache and rate limiting")
	}

	uow := repository.NewUnitOfWork(db)
	userRepo := repository.NewUserRepository(db)
	destinationRepo := repository.NewDestinationRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	var publisher event.Publisher = event.NopPublisher{}
	if rdb != nil {
		publisher = cache.NewInvalidator(rdb)
	}

	ledgerService := service.NewLedgerService(uow, publisher)
	evaluator := service.NewEvaluator(uow)
	awardService := service.NewAwardService(uow, evaluator, ledgerService, publisher)
	checkInService := service.NewCheckInService(uow, ledgerService, awardService, publisher,
		rdb, cfg.CheckInRateLimit, cfg.DefaultVisitRadiusM)
	leaderboardService := service.NewLeaderboardService(uow, rdb)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)

	authHandler := handler.NewAuthHandler(authService)
	checkInHandler := handler.NewCheckInHandler(checkInService)
	profileHandler := handler.NewProfileHandler(userRepo, awardService, ledgerService)
	destinationHandler := handler.NewDestinationHandler(destinationRepo, leaderboardService)
	adminHandler := handler.NewAdminHandler(destinationRepo, badgeRepo, ledgerService, awardService)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
	}

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/checkins", checkInHandler.CheckIn)
		api.GET("/checkins", checkInHandler.History)

		api.GET("/destinations", destinationHandler.GetAll)
		api.GET("/categories", destinationHandler.GetCategories)
		api.GET("/leaderboard", destinationHandler.Leaderboard)

		profile := api.Group("/profile")
		{
			profile.GET("/me", profileHandler.Me)
			profile.GET("/me/badges", profileHandler.Badges)
			profile.GET("/me/ledger", profileHandler.Ledger)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/destinations", adminHandler.CreateDestination)
			admin.POST("/badges", adminHandler.CreateBadge)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.POST("/adjustments", adminHandler.Adjust)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Destination{},
		&model.CheckIn{},
		&model.PointsLedgerEntry{},
		&model.Badge{},
		&model.UserBadgeProgress{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Platform administrator"},
		{Name: "traveler", Description: "Regular traveler"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@lakbaypoints.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@lakbaypoints.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
		Level:        1,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded: admin@lakbaypoints.local / admin123")
	return nil
}
