package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "bookswap/docs" // swagger docs

	"bookswap/internal/auth"
	"bookswap/internal/cache"
	"bookswap/internal/config"
	"bookswap/internal/db"
	"bookswap/internal/handler"
	"bookswap/internal/model"
	"bookswap/internal/repository"
	"bookswap/internal/router"
	"bookswap/internal/service"
)

// @title Bookswap API
// @version 1.0
// @description Book-swapping marketplace API with listing management and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Book{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	bookRepo := repository.NewBookRepository(gormDB)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userService, jwtService)
	bookService := service.NewBookService(bookRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(bookService, userService)

	// Register routes
	router.Register(e, cfg, jwtService, authHandler, bookHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
