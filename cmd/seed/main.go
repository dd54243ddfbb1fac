package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookswap/internal/config"
	"bookswap/internal/db"
	"bookswap/internal/model"
	"bookswap/internal/repository"
)

// seedUser bundles a sample user with its listings.
type seedUser struct {
	email    string
	password string
	name     string
	books    []model.Book
}

var seedData = []seedUser{
	{
		email:    "ann@example.com",
		password: "secret1",
		name:     "Ann",
		books: []model.Book{
			{Title: "Go Basics", Author: "R. Pike", Subject: "CS", Description: "Introductory Go.", ContactEmail: "ann@example.com"},
			{Title: "The Art of Computer Programming", Author: "D. Knuth", Subject: "CS", ContactEmail: "ann@example.com"},
		},
	},
	{
		email:    "bob@example.com",
		password: "secret2",
		name:     "Bob",
		books: []model.Book{
			{Title: "History 101", Author: "J. Green", Subject: "History", Description: "A survey course companion.", ContactEmail: "bob@example.com"},
		},
	},
}

func main() {
	_ = godotenv.Load()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Book{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	bookRepo := repository.NewBookRepository(gormDB)

	created := 0
	for _, seed := range seedData {
		user, err := userRepo.FindByEmail(ctx, seed.email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Fatalf("Failed to look up %s: %v", seed.email, err)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("Failed to hash password: %v", err)
			}
			user = &model.User{
				Email:        seed.email,
				PasswordHash: string(hash),
				Name:         seed.name,
			}
			if err := userRepo.Create(ctx, user); err != nil {
				log.Fatalf("Failed to create user %s: %v", seed.email, err)
			}
			log.Printf("Created user %s", seed.email)
		}

		for _, book := range seed.books {
			book.OwnerID = user.ID
			book.Status = model.StatusAvailable
			if err := bookRepo.Create(ctx, &book); err != nil {
				log.Fatalf("Failed to create book %q: %v", book.Title, err)
			}
			created++
		}
	}

	log.Printf("Seed complete: %d books created", created)
}
