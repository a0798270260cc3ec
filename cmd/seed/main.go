package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"mediavault/internal/config"
	"mediavault/internal/database"
	"mediavault/internal/domain"
	"mediavault/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	seed := []struct {
		name     string
		email    string
		phone    string
		password string
		role     domain.UserRole
	}{
		{"Administrator", "admin@mediavault.local", "77000000001", "admin123", domain.RoleAdmin},
		{"Regular User", "user@mediavault.local", "77000000002", "user123", domain.RoleUser},
	}

	for _, s := range seed {
		exists, err := users.ExistsByEmail(ctx, s.email)
		if err != nil {
			log.Fatal("email lookup failed:", err)
		}
		if exists {
			log.Printf("%s already exists, skipping", s.email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("hash failed:", err)
		}

		u := &domain.User{
			Name:         s.name,
			Email:        s.email,
			PasswordHash: string(hash),
			Phone:        s.phone,
			Role:         s.role,
			Status:       domain.StatusActive,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("create failed:", err)
		}
		log.Printf("Created %s: %s / %s", s.role, s.email, s.password)
	}
}
